package mail

import (
	"context"
	"errors"
	"net/mail"
)

// ErrNoRecipients is returned when a message has nobody to deliver to.
var ErrNoRecipients = errors.New("mail: message has no recipients")

// Message is a rendered email ready for delivery.
type Message struct {
	To          []mail.Address
	Subject     string
	TextContent string
	HTMLContent string
}

// HasRecipients reports whether at least one address is set.
func (m Message) HasRecipients() bool {
	for _, to := range m.To {
		if to.Address != "" {
			return true
		}
	}
	return false
}

// Sender delivers messages synchronously. Callers own retries and queuing.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
