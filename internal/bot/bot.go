// Package bot — телеграм-слой: приём сообщений, разбор расходов,
// подтверждение и отмена записи.
package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/avolkov/family-costs-bot/internal/chatstate"
	"github.com/avolkov/family-costs-bot/internal/config"
	"github.com/avolkov/family-costs-bot/internal/logger"
	"github.com/avolkov/family-costs-bot/internal/repository"
	"github.com/avolkov/family-costs-bot/internal/service"
)

type Bot struct {
	api   *tgbotapi.BotAPI
	svc   *service.CostService
	repo  *repository.SQLiteRepository
	state *chatstate.Store
	cfg   *config.Config
}

func NewBot(cfg *config.Config, svc *service.CostService, repo *repository.SQLiteRepository, state *chatstate.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	logger.Info("Bot authorized", "username", api.Self.UserName)
	return &Bot{api: api, svc: svc, repo: repo, state: state, cfg: cfg}, nil
}

func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	logger.Info("Bot started, waiting for updates")

	for update := range updates {
		switch {
		case update.Message != nil:
			b.handleMessage(update.Message)
		case update.CallbackQuery != nil:
			b.handleCallback(update.CallbackQuery)
		}
	}
}

func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

// allowed проверяет пользователя по белому списку. Пустой список
// означает, что бот открыт для всех.
func (b *Bot) allowed(userID int64) bool {
	if len(b.cfg.AllowedUserIDs) == 0 {
		return true
	}
	for _, id := range b.cfg.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		logger.Error("Failed to send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		logger.Error("Failed to send message", "chat_id", chatID, "error", err)
	}
}

// editMessage переписывает текст сообщения с кнопками (и убирает кнопки,
// если новая клавиатура не передана).
func (b *Bot) editMessage(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	var c tgbotapi.Chattable
	if kb != nil {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *kb)
		edit.ParseMode = tgbotapi.ModeHTML
		c = edit
	} else {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
		edit.ParseMode = tgbotapi.ModeHTML
		c = edit
	}
	if _, err := b.api.Send(c); err != nil {
		logger.Error("Failed to edit message", "chat_id", chatID, "message_id", messageID, "error", err)
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		logger.Error("Failed to answer callback", "error", err)
	}
}
