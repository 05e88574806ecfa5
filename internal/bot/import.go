package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/avolkov/family-costs-bot/internal/logger"
)

// handleImportCommand выдаёт одноразовую ссылку на веб-форму загрузки
// чека. Токен живёт в базе, пока админка его не погасит.
func (b *Bot) handleImportCommand(m *tgbotapi.Message) {
	token := uuid.NewString()
	if err := b.repo.CreateImportToken(token, m.From.ID); err != nil {
		logger.Error("Failed to create import token", "user_id", m.From.ID, "error", err)
		b.send(m.Chat.ID, msgDBError)
		return
	}

	url := b.cfg.WebBaseURL + "/import/" + token
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📥 Загрузить чек", url),
		),
	)
	b.sendWithKeyboard(m.Chat.ID, msgImportIntro, kb)
}
