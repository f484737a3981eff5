// Package notify delivers lead notifications through a transactional
// outbox.
package notify

import (
	"context"
	"fmt"

	"github.com/dlomaxw/shinebebright-sub001/internal/logging"
	"github.com/resendlabs/resend-go"
	"github.com/rs/zerolog"
)

// Message is one outbound email
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Mailer sends a single message
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ResendMailer sends through the Resend API
type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	return &ResendMailer{client: resend.NewClient(apiKey), from: from}, nil
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		ReplyTo: msg.ReplyTo,
	}
	if _, err := m.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}
	return nil
}

// LogMailer only logs messages. It stands in when email is disabled so the
// outbox still drains.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer() *LogMailer {
	return &LogMailer{logger: logging.Component("mailer")}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Msg("email delivery disabled, message logged only")
	return nil
}
