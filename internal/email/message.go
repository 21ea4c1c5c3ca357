// Package email renders verification code messages and hands them to a sender
package email

import "context"

// Message is a rendered email ready for delivery
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers rendered messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to the Sender interface
type SenderFunc func(ctx context.Context, msg Message) error

// Send calls f
func (f SenderFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
