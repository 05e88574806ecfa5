package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/avolkov/family-costs-bot/internal/format"
	"github.com/avolkov/family-costs-bot/internal/logger"
)

const recentCostsInMenu = 5

func (b *Bot) handleMenuCommand(m *tgbotapi.Message) {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Мои расходы", actionMyCosts),
		),
	}

	ids, err := b.svc.KnownUserIDs()
	if err != nil {
		logger.Error("Failed to list users for menu", "error", err)
		b.send(m.Chat.ID, msgDBError)
		return
	}
	for _, id := range ids {
		if id == m.From.ID {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 Расходы: "+b.userLabel(id), userCostsCallback(id)),
		))
	}

	b.sendWithKeyboard(m.Chat.ID, "Чьи расходы показать?", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// sendUserStats — сводка по расходам пользователя: количество, сумма,
// период и последние записи.
func (b *Bot) sendUserStats(chatID, userID int64, own bool) {
	stats, err := b.svc.Stats(userID, recentCostsInMenu)
	if err != nil {
		logger.Error("Failed to build user stats", "user_id", userID, "error", err)
		b.send(chatID, msgDBError)
		return
	}
	if stats.Count == 0 {
		if own {
			b.send(chatID, msgNoCostsOwn)
		} else {
			b.send(chatID, fmt.Sprintf("📭 У пользователя %s пока нет расходов.", b.userLabel(userID)))
		}
		return
	}

	var sb strings.Builder
	if own {
		sb.WriteString("📊 <b>Ваши расходы</b>\n\n")
	} else {
		fmt.Fprintf(&sb, "📊 <b>Расходы: %s</b>\n\n", b.userLabel(userID))
	}
	fmt.Fprintf(&sb, "Записей: %d\n", stats.Count)
	fmt.Fprintf(&sb, "Сумма: %s ₽\n", format.Amount(stats.Total, format.NBSP))
	fmt.Fprintf(&sb, "Период: %s — %s\n",
		stats.First.Format("02.01.2006"), stats.Last.Format("02.01.2006"))

	if len(stats.Recent) > 0 {
		sb.WriteString("\nПоследние записи:\n")
		for _, c := range stats.Recent {
			fmt.Fprintf(&sb, "• %s  %s\n", c.CreatedAt.Format("02.01"), html.EscapeString(c.Text))
		}
	}

	b.send(chatID, sb.String())
}

// userLabel — имя пользователя из админки, если он там заведён,
// иначе телеграм-id.
func (b *Bot) userLabel(telegramID int64) string {
	u, err := b.repo.GetUserByTelegramID(telegramID)
	if err == nil && u != nil && u.Name != "" {
		return u.Name
	}
	return "id " + strconv.FormatInt(telegramID, 10)
}
