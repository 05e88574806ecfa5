package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestParseSingleCost(t *testing.T) {
	res, err := Parse("Продукты 100")
	require.NoError(t, err)
	require.NotNil(t, res)

	require.Len(t, res.Valid, 1)
	assert.Equal(t, "Продукты", res.Valid[0].Name)
	assert.True(t, res.Valid[0].Amount.Equal(dec("100")))
	assert.Empty(t, res.Invalid)
}

func TestParseMixedValidAndInvalid(t *testing.T) {
	res, err := Parse("Продукты 100\ninvalid line\nВода 50")
	require.NoError(t, err)
	require.NotNil(t, res)

	require.Len(t, res.Valid, 2)
	assert.Equal(t, "Продукты", res.Valid[0].Name)
	assert.True(t, res.Valid[0].Amount.Equal(dec("100")))
	assert.Equal(t, "Вода", res.Valid[1].Name)
	assert.True(t, res.Valid[1].Amount.Equal(dec("50")))

	assert.Equal(t, []string{"invalid line"}, res.Invalid)
}

func TestParseNegativeAmount(t *testing.T) {
	res, err := Parse("корректировка -500.24")
	require.NoError(t, err)
	require.NotNil(t, res)

	require.Len(t, res.Valid, 1)
	assert.Equal(t, "корректировка", res.Valid[0].Name)
	assert.True(t, res.Valid[0].Amount.Equal(dec("-500.24")))
	assert.Equal(t, "корректировка -500.24", res.Valid[0].Text())
}

func TestParseCommaSeparator(t *testing.T) {
	res, err := Parse("морковь 123,00")
	require.NoError(t, err)
	require.NotNil(t, res)

	require.Len(t, res.Valid, 1)
	assert.True(t, res.Valid[0].Amount.Equal(dec("123.00")))
	// в базе запятая становится точкой, хвостовые нули сохраняются
	assert.Equal(t, "морковь 123.00", res.Valid[0].Text())
}

func TestParseEmptyMessage(t *testing.T) {
	for _, msg := range []string{"", "\n\n", "   \n  \t "} {
		res, err := Parse(msg)
		assert.NoError(t, err, "message %q", msg)
		assert.Nil(t, res, "message %q", msg)
	}
}

func TestParseAllInvalidCollapsesToNoResult(t *testing.T) {
	res, err := Parse("просто текст без суммы\nещё одна строка")
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestParseGrammarEdgeCases(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		valid bool
	}{
		{"integer", "Продукты 100", true},
		{"dot decimal", "вода из Лавки 123.56", true},
		{"comma decimal", "морковь 123,00", true},
		{"negative", "корректировка -500.24", true},
		{"explicit plus", "возврат +200", true},
		{"name with digits", "заказ из Озона №12345 234", true},
		{"extra inner spaces", "хлеб   и   молоко   75", true},
		{"leading dot", "вода .5", false},
		{"trailing dot", "вода 5.", false},
		{"double dot", "вода 1.2.3", false},
		{"dot and comma", "вода 1.2,3", false},
		{"exponent", "вода 1e5", false},
		{"amount only", "100", false},
		{"no amount", "просто текст", false},
		{"sign only", "вода -", false},
		{"comma no fraction", "вода 5,", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost, ok := ParseLine(tt.line)
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.NotEmpty(t, cost.Name)
			}
		})
	}
}

func TestParseAmountIsTrailingToken(t *testing.T) {
	res, err := Parse("заказ 123 456")
	require.NoError(t, err)
	require.NotNil(t, res)

	require.Len(t, res.Valid, 1)
	assert.Equal(t, "заказ 123", res.Valid[0].Name)
	assert.True(t, res.Valid[0].Amount.Equal(dec("456")))
}

func TestParseMixedLineEndings(t *testing.T) {
	res, err := Parse("Продукты 100\r\nВода 50\rХлеб 30\nМолоко 80")
	require.NoError(t, err)
	require.NotNil(t, res)

	require.Len(t, res.Valid, 4)
	names := make([]string, 0, 4)
	for _, c := range res.Valid {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Продукты", "Вода", "Хлеб", "Молоко"}, names)
}

func TestParseInvalidLinesKeepRawForm(t *testing.T) {
	res, err := Parse("Продукты 100\n  невалидная строка с отступом  ")
	require.NoError(t, err)
	require.NotNil(t, res)

	// отклонённая строка возвращается как была, без trim
	assert.Equal(t, []string{"  невалидная строка с отступом  "}, res.Invalid)
}

// Каждая непустая строка попадает ровно в одну из групп: Valid или Invalid.
func TestParsePartition(t *testing.T) {
	input := "Продукты 100\n\nмусор\nВода 50\n   \nещё мусор тут\nХлеб 30"
	res, err := Parse(input)
	require.NoError(t, err)
	require.NotNil(t, res)

	nonBlank := 0
	for _, line := range strings.Split(input, "\n") {
		if strings.TrimSpace(line) != "" {
			nonBlank++
		}
	}
	assert.Equal(t, nonBlank, len(res.Valid)+len(res.Invalid))
	assert.Len(t, res.Valid, 3)
	assert.Len(t, res.Invalid, 2)
}

// Сохранённый текст разбирается обратно в эквивалентный расход.
func TestCostTextPreservesScale(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"123.00", "123.00"},
		{"50.5", "50.5"},
		{"100", "100"},
		{"-0.010", "-0.010"},
	}
	for _, tt := range tests {
		c := Cost{Name: "чай", Amount: dec(tt.amount)}
		assert.Equal(t, "чай "+tt.want, c.Text(), "amount %s", tt.amount)
	}
}

func TestParseRoundTrip(t *testing.T) {
	amounts := []string{"100", "0", "-500.24", "123.00", "0.01", "-0.01", "1000000", "999999.99"}
	for _, a := range amounts {
		cost := Cost{Name: "тестовый расход", Amount: dec(a)}
		back, ok := ParseLine(cost.Text())
		require.True(t, ok, "text %q", cost.Text())
		assert.Equal(t, cost.Name, back.Name)
		assert.True(t, cost.Amount.Equal(back.Amount), "amount %s", a)
	}
}

func TestParseMessageTooLong(t *testing.T) {
	lim := Limits{MaxMessageLength: 20, MaxMessageLines: 100, MaxLineLength: 500}

	exact := strings.Repeat("а", 20)
	res, err := ParseWithLimits(exact, lim)
	assert.NoError(t, err)
	assert.Nil(t, res) // в лимит уложилось, но не распозналось

	over := strings.Repeat("а", 21)
	_, err = ParseWithLimits(over, lim)
	assert.ErrorIs(t, err, ErrMessageTooLong)
}

func TestParseTooManyLines(t *testing.T) {
	lim := Limits{MaxMessageLength: 4096, MaxMessageLines: 100, MaxLineLength: 500}

	exact := strings.TrimSuffix(strings.Repeat("хлеб 1\n", 100), "\n")
	res, err := ParseWithLimits(exact, lim)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Len(t, res.Valid, 100)

	over := strings.TrimSuffix(strings.Repeat("хлеб 1\n", 101), "\n")
	res, err = ParseWithLimits(over, lim)
	assert.ErrorIs(t, err, ErrTooManyLines)
	assert.Nil(t, res)
}

func TestParseLineTooLong(t *testing.T) {
	lim := Limits{MaxMessageLength: 4096, MaxMessageLines: 100, MaxLineLength: 10}

	res, err := ParseWithLimits("хлебушек 5", lim) // ровно 10 рун
	require.NoError(t, err)
	require.NotNil(t, res)

	long := "длинная строка 55"
	_, err = ParseWithLimits("хлеб 5\n"+long, lim)
	var lineErr *LineTooLongError
	require.True(t, errors.As(err, &lineErr))
	assert.Equal(t, long, lineErr.Line)
}

func TestParseTrailingNewlineDoesNotCountAsLine(t *testing.T) {
	lim := Limits{MaxMessageLength: 4096, MaxMessageLines: 2, MaxLineLength: 500}

	res, err := ParseWithLimits("хлеб 1\nвода 2\n", lim)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Len(t, res.Valid, 2)
}
