package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/Ak2k04/Life-Tracker/internal/server/config"
)

// SMTPMailer delivers email through an SMTP relay using go-mail.
type SMTPMailer struct {
	client *gomail.Client
	from   string
}

// NewSMTPMailer builds a mailer from the server config. Authentication is
// only enabled when a username is configured, so a local relay without
// credentials still works in development.
func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.SMTPPort),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if cfg.SMTPUser != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.SMTPUser),
			gomail.WithPassword(cfg.SMTPPass),
		)
	}

	client, err := gomail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client init: %w", err)
	}

	return &SMTPMailer{client: client, from: cfg.SMTPFrom}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
