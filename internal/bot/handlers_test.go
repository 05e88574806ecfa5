package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/family-costs-bot/internal/parser"
)

func mustCosts(t *testing.T, lines ...string) []parser.Cost {
	t.Helper()
	var out []parser.Cost
	for _, l := range lines {
		c, ok := parser.ParseLine(l)
		require.True(t, ok, "line %q", l)
		out = append(out, c)
	}
	return out
}

func TestSaveReportTextAllSaved(t *testing.T) {
	text := saveReportText(mustCosts(t, "Продукты 1000", "Вода 50"), nil)
	assert.Contains(t, text, "Записано 2 расхода")
	assert.Contains(t, text, "1 050")
	assert.NotContains(t, text, "Не удалось записать")
}

func TestSaveReportTextPartial(t *testing.T) {
	saved := mustCosts(t, "Продукты 100")
	failed := mustCosts(t, "Вода 50")
	text := saveReportText(saved, failed)
	assert.Contains(t, text, "Записано 1 расход")
	assert.Contains(t, text, "Не удалось записать")
	assert.Contains(t, text, "Вода — 50")
}

func TestSaveReportTextEscapesHTML(t *testing.T) {
	text := saveReportText(nil, mustCosts(t, "сыр <и> хлеб 10"))
	assert.Contains(t, text, "&lt;и&gt;")
}

func TestLimitErrorText(t *testing.T) {
	assert.Equal(t, msgMessageTooLong, limitErrorText(parser.ErrMessageTooLong))
	assert.Equal(t, msgTooManyLines, limitErrorText(parser.ErrTooManyLines))

	lineErr := &parser.LineTooLongError{Line: "очень <длинная> строка"}
	text := limitErrorText(lineErr)
	assert.Contains(t, text, "Слишком длинная строка")
	assert.Contains(t, text, "&lt;длинная&gt;")
}
