// Package notify delivers user notifications over the transport selected at
// startup.
package notify

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/natours/booking-api/internal/core/ports"
	"github.com/natours/booking-api/internal/pkg/config"
)

const (
	DriverLog  = "log"
	DriverSMTP = "smtp"
	DriverAMQP = "amqp"
)

// New builds the configured notifier. The returned close function releases
// transport resources and is never nil.
func New(cfg config.NotifierConfig, log zerolog.Logger) (ports.Notifier, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(cfg.Driver) {
	case "", DriverLog:
		return NewLogNotifier(log), noop, nil
	case DriverSMTP:
		if cfg.SMTPHost == "" {
			return nil, noop, fmt.Errorf("notify: EMAIL_HOST is required for the smtp driver")
		}
		return NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.From), noop, nil
	case DriverAMQP:
		n, err := NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			return nil, noop, err
		}
		return n, n.Close, nil
	default:
		return nil, noop, fmt.Errorf("notify: unknown driver %q", cfg.Driver)
	}
}
