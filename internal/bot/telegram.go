package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	handler *Handler
	chatID  int64
}

func NewTelegramBot(token string, chatID int64, handler *Handler) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}

	return &TelegramBot{
		bot:     bot,
		handler: handler,
		chatID:  chatID,
	}, nil
}

func (t *TelegramBot) Start(ctx context.Context) error {
	slog.Info("Authorized on account", "username", t.bot.Self.UserName)
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	defer t.bot.StopReceivingUpdates()

	for {
		select {
		case update := <-updates:
			if update.Message == nil {
				continue
			}

			var msg tgbotapi.MessageConfig
			switch {
			case update.Message.IsCommand():
				msg = t.handler.HandleCommand(ctx, update)
			case t.addressed(update.Message):
				msg = t.handler.HandleText(ctx, update)
			default:
				continue
			}

			if _, err := t.bot.Send(msg); err != nil {
				slog.Error("Error sending message", "error", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// addressed reports whether a plain message is meant for the bot: any
// private message, or a group message mentioning it.
func (t *TelegramBot) addressed(m *tgbotapi.Message) bool {
	if strings.TrimSpace(m.Text) == "" {
		return false
	}
	if m.Chat.IsPrivate() {
		return true
	}
	return t.bot.Self.UserName != "" && strings.Contains(m.Text, "@"+t.bot.Self.UserName)
}

func (t *TelegramBot) SendMessage(text string) error {
	if t.chatID == 0 {
		slog.Error("Chat ID not set")
		return fmt.Errorf("chat ID not set")
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "Markdown"
	_, err := t.bot.Send(msg)
	if err != nil {
		slog.Error("Error sending message", "error", err)
	}
	return err
}
