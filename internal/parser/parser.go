package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Cost — одна распознанная строка расхода. Сумма хранится как точное
// десятичное число: расходы суммируются в отчётах, и ошибки округления
// float недопустимы.
type Cost struct {
	Name   string
	Amount decimal.Decimal
}

// Text возвращает расход в том виде, в котором он хранится в базе:
// "<название> <сумма>" с точкой в качестве разделителя. Масштаб суммы
// сохраняется: "123,00" хранится как "123.00", а не "123". Такая строка
// разбирается этим же парсером обратно в эквивалентный Cost.
func (c Cost) Text() string {
	if e := c.Amount.Exponent(); e < 0 {
		return c.Name + " " + c.Amount.StringFixed(-e)
	}
	return c.Name + " " + c.Amount.String()
}

// Result — результат разбора сообщения. Valid никогда не пуст: если ни одна
// строка не распозналась, Parse возвращает nil вместо пустого результата.
type Result struct {
	Valid   []Cost
	Invalid []string
}

// Limits — защитные ограничения на размер входящего сообщения.
type Limits struct {
	MaxMessageLength int
	MaxMessageLines  int
	MaxLineLength    int
}

// DefaultLimits повторяет ограничения Telegram на длину сообщения.
var DefaultLimits = Limits{
	MaxMessageLength: 4096,
	MaxMessageLines:  100,
	MaxLineLength:    500,
}

var (
	ErrMessageTooLong = errors.New("сообщение слишком длинное")
	ErrTooManyLines   = errors.New("слишком много строк в сообщении")
)

// LineTooLongError прерывает разбор целиком и несёт исходную строку,
// превысившую лимит.
type LineTooLongError struct {
	Line string
}

func (e *LineTooLongError) Error() string {
	return fmt.Sprintf("слишком длинная строка: %q", truncate(e.Line, 100))
}

// Сумма — всегда последний токен строки, всё до неё (после trim) — название.
// Одна точка или запятая, цифры с обеих сторон; ".5", "5.", "1e5" не проходят.
var lineRe = regexp.MustCompile(`^(?P<name>.+?)\s+(?P<amount>[+-]?\d+(?:[.,]\d+)?)$`)

// Parse разбирает сообщение с лимитами по умолчанию.
func Parse(message string) (*Result, error) {
	return ParseWithLimits(message, DefaultLimits)
}

// ParseWithLimits разбирает многострочное сообщение в набор расходов.
//
// Возвращает (nil, nil), когда разбирать нечего: пустое сообщение либо ни
// одной распознанной строки. Нарушение лимитов — ошибка всего разбора, а не
// пропуск строки; несовпадение с грамматикой — наоборот, накапливается в
// Invalid и разбор продолжается.
func ParseWithLimits(message string, lim Limits) (*Result, error) {
	if message == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(message) > lim.MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	lines := splitLines(message)
	if len(lines) > lim.MaxMessageLines {
		return nil, ErrTooManyLines
	}

	res := &Result{}
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) > lim.MaxLineLength {
			return nil, &LineTooLongError{Line: raw}
		}

		cost, ok := ParseLine(line)
		if !ok {
			res.Invalid = append(res.Invalid, raw)
			continue
		}
		res.Valid = append(res.Valid, cost)
	}

	if len(res.Valid) == 0 {
		return nil, nil
	}
	return res, nil
}

// ParseLine разбирает одну строку "<название> <сумма>". Строка должна быть
// уже обрезана по краям. Используется и парсером, и админкой для обратного
// разбора сохранённого текста.
func ParseLine(line string) (Cost, bool) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return Cost{}, false
	}

	amount, err := decimal.NewFromString(strings.Replace(m[2], ",", ".", 1))
	if err != nil {
		// при текущей грамматике недостижимо, но сумма обязана быть
		// числом даже если грамматика разойдётся с разбором
		return Cost{}, false
	}

	return Cost{Name: strings.TrimSpace(m[1]), Amount: amount}, true
}

// splitLines режет текст по любым переводам строк: \n, \r\n, \r и их смеси.
// Завершающий перевод строки не порождает лишнюю пустую строку.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
