package notify

import (
	"context"
	"log/slog"
	"time"
)

const (
	SubjectWelcome      = "account.welcome"
	SubjectCancellation = "account.cancellation"
)

// AccountEvent is published when an account is created or deleted.
type AccountEvent struct {
	EventType  string    `json:"event_type"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Sender delivers account notifications. Implementations are fire-and-forget:
// they log failures and never report them to the caller.
type Sender interface {
	SendWelcome(ctx context.Context, email, name string)
	SendCancellation(ctx context.Context, email, name string)
}

// LogSender only logs. It is used when no message broker is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) SendWelcome(ctx context.Context, email, name string) {
	s.logger.InfoContext(ctx, "welcome notification skipped, no broker", "email", email, "name", name)
}

func (s *LogSender) SendCancellation(ctx context.Context, email, name string) {
	s.logger.InfoContext(ctx, "cancellation notification skipped, no broker", "email", email, "name", name)
}
