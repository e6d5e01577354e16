package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier is a send-only Telegram client used for guardian
// attendance notices. It never polls for updates.
type Notifier struct {
	api *tgbotapi.BotAPI
}

func NewNotifier(token string) (*Notifier, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}

	api, err := tgbotapi.NewBotAPI(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}

	return &Notifier{api: api}, nil
}

func (n *Notifier) SendText(ctx context.Context, chatID int64, text string) error {
	if n == nil || n.api == nil {
		return fmt.Errorf("telegram notifier is not initialized")
	}
	if chatID == 0 {
		return fmt.Errorf("chat id is required")
	}

	// The bot API client has no context plumbing, so honor cancellation
	// before handing the message off.
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
