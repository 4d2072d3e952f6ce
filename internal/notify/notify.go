// Package notify delivers account emails and booking notices.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Kind names a notification template.
type Kind string

const (
	KindVerifyEmail      Kind = "verify_email"
	KindPasswordReset    Kind = "password_reset"
	KindPasswordChanged  Kind = "password_changed"
	KindBookingCreated   Kind = "booking_created"
	KindBookingCancelled Kind = "booking_cancelled"
	KindApplication      Kind = "application_decision"
)

// Message is one outgoing notification.
type Message struct {
	Kind   Kind
	To     string
	Lang   string
	Fields map[string]string
}

// Notifier sends messages. Implementations must be safe for concurrent use.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier writes notifications to the log instead of a mail provider.
// One-time codes are included so a development setup can complete sign-up.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier builds a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "notifier")}
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	attrs := []any{"kind", msg.Kind, "to", msg.To, "lang", msg.Lang}
	for k, v := range msg.Fields {
		attrs = append(attrs, k, v)
	}
	n.logger.InfoContext(ctx, "notification sent", attrs...)
	return nil
}

// Recorder keeps sent messages in memory for tests.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
}

func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns a snapshot of recorded messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

// Last returns the most recent message of kind, if any.
func (r *Recorder) Last(kind Kind) (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].Kind == kind {
			return r.sent[i], true
		}
	}
	return Message{}, false
}
