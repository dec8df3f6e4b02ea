package email

import (
	"context"
	"errors"
	"fmt"
	"kondax-backend/config"
)

// ErrNotConfigured is returned when no provider has credentials.
var ErrNotConfigured = errors.New("email service is not configured")

// Message is a single fully rendered email.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Sender delivers a rendered message and returns the provider's message id
// (empty when the provider has none).
type Sender interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

// ProviderError is a rejection reported by the email provider.
type ProviderError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("email provider rejected message (%d %s): %s", e.StatusCode, e.Name, e.Message)
	}
	return fmt.Sprintf("email provider rejected message (%d): %s", e.StatusCode, e.Message)
}

// NewSender picks a provider from configuration: Resend when an API key is
// set, SMTP when a host and credentials are set, otherwise ErrNotConfigured.
func NewSender(cfg *config.Config) (Sender, error) {
	if cfg.ResendAPIKey != "" {
		return NewResendSender(cfg.ResendAPIKey, cfg.ResendBaseURL), nil
	}
	smtpSender := NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	if smtpSender.IsConfigured() {
		return smtpSender, nil
	}
	return nil, ErrNotConfigured
}

func validateMessage(msg *Message) error {
	if msg == nil {
		return errors.New("email: nil message")
	}
	if msg.From == "" {
		return errors.New("email: missing sender")
	}
	if len(msg.To) == 0 {
		return errors.New("email: no recipients")
	}
	return nil
}
