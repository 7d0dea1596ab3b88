package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/natours/booking-api/internal/core/ports"
)

// LogNotifier writes messages to the log instead of delivering them. Meant for
// local development.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notifier").Logger()}
}

func (n *LogNotifier) Send(_ context.Context, msg ports.Message) error {
	n.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("notification")
	return nil
}
