package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher is the subset of *nats.Conn the sender needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NatsSender publishes account events to NATS.
type NatsSender struct {
	pub    Publisher
	logger *slog.Logger
	now    func() time.Time
}

// Connect dials NATS and returns a sender bound to the connection.
func Connect(natsURL string, logger *slog.Logger) (*NatsSender, *nats.Conn, error) {
	nc, err := nats.Connect(natsURL, nats.Name("taskapi"))
	if err != nil {
		return nil, nil, err
	}
	return NewNatsSender(nc, logger), nc, nil
}

// NewNatsSender creates a sender over pub.
func NewNatsSender(pub Publisher, logger *slog.Logger) *NatsSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &NatsSender{pub: pub, logger: logger, now: time.Now}
}

func (s *NatsSender) SendWelcome(ctx context.Context, email, name string) {
	s.publish(ctx, SubjectWelcome, email, name)
}

func (s *NatsSender) SendCancellation(ctx context.Context, email, name string) {
	s.publish(ctx, SubjectCancellation, email, name)
}

func (s *NatsSender) publish(ctx context.Context, subject, email, name string) {
	event := AccountEvent{
		EventType:  subject,
		Email:      email,
		Name:       name,
		OccurredAt: s.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.ErrorContext(ctx, "marshal account event", "subject", subject, "error", err)
		return
	}
	if err := s.pub.Publish(subject, payload); err != nil {
		s.logger.ErrorContext(ctx, "publish account event", "subject", subject, "error", err)
		return
	}
	s.logger.DebugContext(ctx, "published account event", "subject", subject)
}
