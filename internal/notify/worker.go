package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// Mailer renders and delivers a message to one recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.InfoContext(ctx, "mail sent (mock)", "to", to, "subject", subject, "body", body)
	return nil
}

// Worker turns account events into mail.
type Worker struct {
	mailer Mailer
	logger *slog.Logger
}

// NewWorker creates a Worker.
func NewWorker(mailer Mailer, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{mailer: mailer, logger: logger}
}

// Subscribe registers the worker for every account subject on nc.
func (w *Worker) Subscribe(nc *nats.Conn) ([]*nats.Subscription, error) {
	subs := make([]*nats.Subscription, 0, 2)
	for _, subject := range []string{SubjectWelcome, SubjectCancellation} {
		sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
			if err := w.Handle(context.Background(), msg.Data); err != nil {
				w.logger.Error("handle account event", "subject", msg.Subject, "error", err)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("subscribe %s: %w", subject, err)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// Handle decodes one event and mails the account holder.
func (w *Worker) Handle(ctx context.Context, data []byte) error {
	var event AccountEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}
	if event.Email == "" {
		return fmt.Errorf("event %q has no recipient", event.EventType)
	}

	var subject, body string
	switch event.EventType {
	case SubjectWelcome:
		subject = "Thanks for joining in!"
		body = fmt.Sprintf("Welcome to the app, %s. Let me know how you get along with the app.", event.Name)
	case SubjectCancellation:
		subject = "Sorry to see you go!"
		body = fmt.Sprintf("Goodbye, %s. Is there anything we could have done to have kept you on board?", event.Name)
	default:
		return fmt.Errorf("unknown event type %q", event.EventType)
	}
	return w.mailer.Send(ctx, event.Email, subject, body)
}
