package ports

import "context"

// Message is an outbound notification.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Notifier delivers messages to users.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
