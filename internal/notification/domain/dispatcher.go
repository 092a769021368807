// Package domain defines the notification contract. Dispatch is
// fire-and-forget: callers learn whether the message was accepted, not
// whether it was delivered.
package domain

import (
	"context"
	"errors"
)

var (
	ErrQueueFull        = errors.New("notification_queue_full")
	ErrInvalidRecipient = errors.New("invalid_recipient")
	ErrUnknownTemplate  = errors.New("unknown_template")
)

// Template identifies a rendered email body.
type Template string

const (
	TemplateInvoiceNew      Template = "invoice_new"
	TemplateInvoiceReminder Template = "invoice_reminder"
)

// Message is one queued notification. Variables feed the HTML template;
// values arrive pre-formatted (money, dates) so templates stay dumb.
type Message struct {
	Template  Template
	To        string
	ToName    string
	Variables map[string]string
}

// Dispatcher accepts messages for asynchronous delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}
