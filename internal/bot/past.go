package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const pastMonthsShown = 12

// handlePastCommand показывает выбор месяца для записи задним числом.
// Если режим уже включён, команда его выключает.
func (b *Bot) handlePastCommand(m *tgbotapi.Message) {
	if _, ok := b.svc.PastMode(m.Chat.ID); ok {
		b.svc.DisablePastMode(m.Chat.ID)
		b.send(m.Chat.ID, msgPastDisabled)
		return
	}

	now := time.Now().UTC()
	// якорь на первом числе, чтобы вычитание месяцев не перескакивало
	// через короткие месяцы
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i := 1; i <= pastMonthsShown; i++ {
		t := anchor.AddDate(0, -i, 0)
		label := fmt.Sprintf("%s %d", monthNames[int(t.Month())], t.Year())
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, pastMonthCallback(t.Year(), t.Month())))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🚫 Не включать", actionDisablePast),
	))

	b.sendWithKeyboard(m.Chat.ID, msgChooseMonth, tgbotapi.NewInlineKeyboardMarkup(rows...))
}
