package mail

import (
	"context"
	"io"
)

// Message represents an email payload.
type Message struct {
	// From is an optional explicit sender; falls back to the configured default.
	From string
	// To lists required recipients.
	To []string
	// Subject is the email subject line.
	Subject string
	// TextBody is the plain-text body; used when HTMLBody is empty.
	TextBody string
	// HTMLBody is the HTML body; preferred when both are set.
	HTMLBody string
}

// Mail delivers messages to recipients.
type Mail interface {
	io.Closer

	// Send delivers a message. It returns an error when the transport refuses
	// or fails the delivery.
	Send(ctx context.Context, msg Message) error
}
