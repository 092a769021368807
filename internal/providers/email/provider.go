// Package email delivers rendered messages over SMTP.
package email

import "context"

// Provider sends one fully rendered HTML email.
type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
}

// NoOpProvider swallows every send. Used when no SMTP host is
// configured so local development never needs a mail server.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}
