// Package notifier delivers run completion messages. Delivery is best effort:
// the review engine never fails or retries because a notification could not
// be sent.
package notifier

import (
	"context"

	"github.com/rs/zerolog"
)

// Notifier delivers one message to address.
type Notifier interface {
	Send(ctx context.Context, address, subject, body string) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, address, subject, body string) error

func (fn Func) Send(ctx context.Context, address, subject, body string) error {
	return fn(ctx, address, subject, body)
}

// Log writes notifications to a logger.
type Log struct {
	logger zerolog.Logger
}

// NewLog creates a logging notifier.
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Send(_ context.Context, address, subject, body string) error {
	l.logger.Info().Str("address", address).Str("subject", subject).Str("body", body).Msg("notification")
	return nil
}
