package alert

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"bn9-backend/internal/line"
)

// Policy decides which classification categories wake up a human operator.
// An empty category list disables alerting entirely.
type Policy struct {
	categories []string
}

func NewPolicy(categories []string) *Policy {
	p := &Policy{}
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			p.categories = append(p.categories, c)
		}
	}
	return p
}

// ShouldAlert reports whether the category is one of the configured alert
// categories. Matching is exact and case-sensitive.
func (p *Policy) ShouldAlert(category string) bool {
	for _, c := range p.categories {
		if c == category {
			return true
		}
	}
	return false
}

// Notifier delivers an alert message to an operator destination.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// LineNotifier pushes alerts to an operator user or group via the LINE
// Messaging API.
type LineNotifier struct {
	messenger line.Messenger
	to        string
}

func NewLineNotifier(messenger line.Messenger, to string) *LineNotifier {
	return &LineNotifier{messenger: messenger, to: to}
}

func (n *LineNotifier) Notify(ctx context.Context, message string) error {
	return n.messenger.Push(ctx, n.to, message)
}

// TelegramNotifier posts alerts to an admin chat, for operators who live in
// Telegram rather than LINE.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(botToken string, chatID int64) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

func (n *TelegramNotifier) Notify(_ context.Context, message string) error {
	if _, err := n.api.Send(tgbotapi.NewMessage(n.chatID, message)); err != nil {
		return fmt.Errorf("telegram alert failed: %w", err)
	}
	return nil
}

// LogNotifier is the mock destination used when no operator channel is
// configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, message string) error {
	log.Printf("[Alert MOCK] %s", message)
	return nil
}

type multiNotifier []Notifier

func (m multiNotifier) Notify(ctx context.Context, message string) error {
	var firstErr error
	for _, n := range m {
		if err := n.Notify(ctx, message); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Combine fans an alert out to every configured destination. With no
// destinations it falls back to the logging mock.
func Combine(notifiers ...Notifier) Notifier {
	if len(notifiers) == 0 {
		return LogNotifier{}
	}
	if len(notifiers) == 1 {
		return notifiers[0]
	}
	return multiNotifier(notifiers)
}
