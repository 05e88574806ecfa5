package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NBSP — неразрывный пробел, стандартный разделитель тысяч в тексте
// сообщений. В подписях inline-кнопок Telegram его лучше заменять на "_".
const NBSP = " "

// Amount форматирует сумму для показа пользователю: целые значения без
// дробной части, остальные ровно с двумя знаками, разряды у модуля числа
// разделяются sep, знак остаётся впереди.
func Amount(d decimal.Decimal, sep string) string {
	sign := ""
	abs := d
	if d.IsNegative() {
		sign = "-"
		abs = d.Neg()
	}

	var intPart, fracPart string
	if abs.IsInteger() {
		intPart = abs.Truncate(0).String()
	} else {
		fixed := abs.StringFixed(2)
		dot := strings.IndexByte(fixed, '.')
		intPart, fracPart = fixed[:dot], fixed[dot:]
	}

	return sign + groupThousands(intPart, sep) + fracPart
}

func groupThousands(digits, sep string) string {
	n := len(digits)
	if n <= 3 || sep == "" {
		return digits
	}

	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Pluralize выбирает форму слова для числительного: 1 расход, 2 расхода,
// 5 расходов. Работает по модулю числа.
func Pluralize(n int, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	if n%10 == 1 && n%100 != 11 {
		return one
	}
	if n%10 >= 2 && n%10 <= 4 && !(n%100 >= 12 && n%100 <= 14) {
		return few
	}
	return many
}
