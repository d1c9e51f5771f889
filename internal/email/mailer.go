package email

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// StartTLS downgrades the policy from implicit TLS to STARTTLS.
	StartTLS bool
	FromName string
	FromAddr string
}

type Message struct {
	ToEmail  string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer delivers transactional mail over SMTP. It is safe for use from
// concurrent request handlers; go-mail dials per send.
type Mailer struct {
	cfg    SMTPConfig
	client *mail.Client
}

func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if cfg.StartTLS {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &Mailer{cfg: cfg, client: client}, nil
}

func (m *Mailer) Send(ctx context.Context, msg Message) error {
	out := mail.NewMsg()
	if m.cfg.FromName != "" {
		if err := out.FromFormat(m.cfg.FromName, m.cfg.FromAddr); err != nil {
			return fmt.Errorf("smtp from: %w", err)
		}
	} else if err := out.From(m.cfg.FromAddr); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := out.To(msg.ToEmail); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	out.Subject(msg.Subject)

	if msg.TextBody != "" {
		out.SetBodyString(mail.TypeTextPlain, msg.TextBody)
		if msg.HTMLBody != "" {
			out.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
		}
	} else {
		out.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	}

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
