// Package notify delivers human-readable progress messages to the
// operator channel. Delivery is strictly observability: failures are
// logged and swallowed, never surfaced to the pipeline.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/bankfeeds/branchsync/pkg/telegram"
)

// Notifier sends a short status message to the operator channel.
type Notifier interface {
	Send(ctx context.Context, text string)
}

// Telegram delivers messages via the Telegram Bot API.
type Telegram struct {
	client telegram.Client
}

// NewTelegram creates a Telegram-backed notifier.
func NewTelegram(client telegram.Client) *Telegram {
	return &Telegram{client: client}
}

func (t *Telegram) Send(ctx context.Context, text string) {
	if err := t.client.SendMessage(ctx, text); err != nil {
		zap.L().Error("telegram notification failed", zap.String("text", text), zap.Error(err))
		return
	}
	zap.L().Info("telegram notification sent", zap.String("text", text))
}

// Log is the fallback notifier used when no bot token is configured.
type Log struct{}

func (Log) Send(_ context.Context, text string) {
	zap.L().Info("notification", zap.String("text", text))
}
