package bot

import (
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/avolkov/family-costs-bot/internal/chatstate"
	"github.com/avolkov/family-costs-bot/internal/format"
	"github.com/avolkov/family-costs-bot/internal/logger"
	"github.com/avolkov/family-costs-bot/internal/parser"
)

func (b *Bot) handleMessage(m *tgbotapi.Message) {
	if !b.allowed(m.From.ID) {
		logger.Warn("Rejected message from unknown user", "user_id", m.From.ID)
		b.send(m.Chat.ID, msgAccessDenied)
		return
	}
	if m.Text == "" {
		return
	}

	if m.IsCommand() {
		switch m.Command() {
		case "start", "help":
			b.send(m.Chat.ID, startGreeting+helpText)
		case "menu":
			b.handleMenuCommand(m)
		case "past":
			b.handlePastCommand(m)
		case "report":
			b.handleReportCommand(m)
		case "import":
			b.handleImportCommand(m)
		default:
			b.send(m.Chat.ID, msgParseError+"\n\n"+helpText)
		}
		return
	}

	b.handleCostMessage(m)
}

// handleCostMessage разбирает сообщение с расходами. Полностью корректное
// сообщение записывается сразу, частично корректное требует подтверждения.
func (b *Bot) handleCostMessage(m *tgbotapi.Message) {
	limits := parser.Limits{
		MaxMessageLength: b.cfg.MaxMessageLength,
		MaxMessageLines:  b.cfg.MaxMessageLines,
		MaxLineLength:    b.cfg.MaxLineLength,
	}

	result, err := parser.ParseWithLimits(m.Text, limits)
	if err != nil {
		b.send(m.Chat.ID, limitErrorText(err))
		return
	}
	if result == nil {
		b.send(m.Chat.ID, msgParseError+"\n\n"+helpText)
		return
	}

	if len(result.Invalid) == 0 {
		b.commitCosts(m.Chat.ID, m.From.ID, result.Valid, 0)
		return
	}

	conf := chatstate.NewConfirmation(m.From.ID, result.Valid)
	b.state.SetConfirmation(m.Chat.ID, conf)

	var sb strings.Builder
	sb.WriteString("⚠️ Не удалось распознать строки:\n<pre>")
	sb.WriteString(html.EscapeString(strings.Join(result.Invalid, "\n")))
	sb.WriteString("</pre>\n\n")
	fmt.Fprintf(&sb, "Записать остальные %d %s на сумму %s ₽?",
		len(result.Valid),
		format.Pluralize(len(result.Valid), "расход", "расхода", "расходов"),
		format.Amount(sumCosts(result.Valid), format.NBSP))

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Записать", confirmCallback(conf.SessionID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", cancelCallback(conf.SessionID)),
		),
	)
	b.sendWithKeyboard(m.Chat.ID, sb.String(), kb)
}

// commitCosts записывает расходы и отвечает итогом. При editMessageID != 0
// итог заменяет сообщение с кнопками подтверждения.
func (b *Bot) commitCosts(chatID, userID int64, costs []parser.Cost, editMessageID int) {
	report, err := b.svc.SaveBatch(chatID, userID, costs)
	if err != nil {
		logger.Error("Failed to save costs", "chat_id", chatID, "user_id", userID, "error", err)
		if editMessageID != 0 {
			b.editMessage(chatID, editMessageID, msgDBError, nil)
		} else {
			b.send(chatID, msgDBError)
		}
		return
	}

	text := saveReportText(report.SavedCosts(), report.Failed)
	if pm, ok := b.svc.PastMode(chatID); ok {
		text += fmt.Sprintf("\n\n📅 Записано в %s %d.", monthNames[int(pm.Month)], pm.Year)
	}

	var kb *tgbotapi.InlineKeyboardMarkup
	if len(report.Saved) > 0 {
		if data, ok := undoCallback(report.IDs()); ok {
			markup := tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData("↩️ Отменить запись", data),
				),
			)
			kb = &markup
		}
	}

	if editMessageID != 0 {
		b.editMessage(chatID, editMessageID, text, kb)
		return
	}
	if kb != nil {
		b.sendWithKeyboard(chatID, text, *kb)
	} else {
		b.send(chatID, text)
	}
}

func (b *Bot) handleCallback(q *tgbotapi.CallbackQuery) {
	if q.Message == nil {
		b.answerCallback(q.ID, "")
		return
	}
	if !b.allowed(q.From.ID) {
		b.answerCallback(q.ID, msgAccessDenied)
		return
	}

	chatID := q.Message.Chat.ID
	cb := parseCallback(q.Data)

	switch cb.Action {
	case actionConfirm:
		if len(cb.Args) != 1 {
			break
		}
		conf, ok := b.state.TakeConfirmation(chatID, cb.Args[0], q.From.ID)
		if !ok {
			// устаревшая, чужая или уже использованная сессия
			b.answerCallback(q.ID, "")
			return
		}
		b.commitCosts(chatID, q.From.ID, conf.Costs, q.Message.MessageID)

	case actionCancel:
		if len(cb.Args) != 1 {
			break
		}
		if _, ok := b.state.TakeConfirmation(chatID, cb.Args[0], q.From.ID); !ok {
			b.answerCallback(q.ID, "")
			return
		}
		b.editMessage(chatID, q.Message.MessageID, msgCancelled, nil)

	case actionUndo:
		if len(cb.Args) != 1 {
			break
		}
		ids, err := parseUndoIDs(cb.Args[0])
		if err != nil {
			logger.Warn("Bad undo payload", "data", q.Data, "error", err)
			break
		}
		n, err := b.svc.Undo(ids, q.From.ID)
		if err != nil {
			logger.Error("Failed to undo costs", "user_id", q.From.ID, "error", err)
			b.answerCallback(q.ID, msgDBError)
			return
		}
		if n == 0 {
			b.answerCallback(q.ID, msgNothingToUndo)
			return
		}
		b.editMessage(chatID, q.Message.MessageID,
			fmt.Sprintf("🗑 Удалено %d %s.", n,
				format.Pluralize(int(n), "запись", "записи", "записей")), nil)

	case actionPastMonth:
		year, month, err := parsePastMonth(cb.Args)
		if err != nil {
			logger.Warn("Bad past month payload", "data", q.Data, "error", err)
			break
		}
		b.svc.EnablePastMode(chatID, year, month)
		b.editMessage(chatID, q.Message.MessageID,
			fmt.Sprintf("📅 Включён режим прошедшего месяца: <b>%s %d</b>.\nНовые расходы запишутся первым числом этого месяца. Отключить: /past", monthNames[int(month)], year), nil)

	case actionDisablePast:
		b.svc.DisablePastMode(chatID)
		b.editMessage(chatID, q.Message.MessageID, msgPastDisabled, nil)

	case actionMyCosts:
		b.sendUserStats(chatID, q.From.ID, true)

	case actionUserCosts:
		if len(cb.Args) != 1 {
			break
		}
		ids, err := parseUndoIDs(cb.Args[0])
		if err != nil || len(ids) != 1 {
			break
		}
		b.sendUserStats(chatID, ids[0], ids[0] == q.From.ID)

	default:
		logger.Warn("Unknown callback action", "data", q.Data)
	}

	b.answerCallback(q.ID, "")
}

func limitErrorText(err error) string {
	var lineErr *parser.LineTooLongError
	switch {
	case errors.Is(err, parser.ErrMessageTooLong):
		return msgMessageTooLong
	case errors.Is(err, parser.ErrTooManyLines):
		return msgTooManyLines
	case errors.As(err, &lineErr):
		return fmt.Sprintf("⚠️ Слишком длинная строка:\n<pre>%s</pre>\nСократите её и отправьте сообщение снова.",
			html.EscapeString(lineErr.Line))
	default:
		return msgParseError
	}
}

// saveReportText — итог записи: число и сумма записанных строк, плюс
// поимённый список незаписанных в построчном режиме.
func saveReportText(saved, failed []parser.Cost) string {
	var sb strings.Builder
	if len(saved) > 0 {
		fmt.Fprintf(&sb, "✅ Записано %d %s на сумму %s ₽:\n",
			len(saved),
			format.Pluralize(len(saved), "расход", "расхода", "расходов"),
			format.Amount(sumCosts(saved), format.NBSP))
		for _, c := range saved {
			fmt.Fprintf(&sb, "• %s: %s ₽\n", html.EscapeString(c.Name), format.Amount(c.Amount, format.NBSP))
		}
	}
	if len(failed) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("⚠️ Не удалось записать:\n")
		for _, c := range failed {
			fmt.Fprintf(&sb, "• %s — %s ₽\n", html.EscapeString(c.Name), format.Amount(c.Amount, format.NBSP))
		}
		sb.WriteString("Отправьте эти строки ещё раз.")
	}
	if sb.Len() == 0 {
		return msgDBError
	}
	return strings.TrimRight(sb.String(), "\n")
}

func sumCosts(costs []parser.Cost) decimal.Decimal {
	total := decimal.Zero
	for _, c := range costs {
		total = total.Add(c.Amount)
	}
	return total
}
