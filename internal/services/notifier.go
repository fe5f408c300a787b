package services

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"dashboard/internal/models"
)

// Notifier is told about task completions. Implementations must be safe for concurrent use.
type Notifier interface {
	TaskCompleted(ctx context.Context, task models.Task) error
}

type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier connects to the Bot API (checking the token with getMe). An empty
// endpoint means the public Telegram API.
func NewTelegramNotifier(token string, chatID int64, endpoint string) (*TelegramNotifier, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: 15 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) TaskCompleted(ctx context.Context, task models.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, completionText(task))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func completionText(task models.Task) string {
	text := fmt.Sprintf("✅ <b>Task completed</b>\n%s", html.EscapeString(task.Title))
	if task.Category != nil && *task.Category != "" {
		text += fmt.Sprintf("\nCategory: %s", html.EscapeString(*task.Category))
	}
	if task.CompletedAt != nil {
		text += "\nAt: " + task.CompletedAt.Format("2006-01-02 15:04")
	}
	return text
}
