package landmark

import (
	"context"

	"github.com/wneessen/go-mail"
)

// Email is the message handed to the delivery collaborator.
type Email struct {
	To      string
	Subject string
	Message string
	HTML    string
}

// Mailer delivers out-of-band notifications. Implementations return an error
// when delivery fails; callers compensate (clearing persisted token fields)
// before surfacing it.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// SMTPMailer delivers through an SMTP relay using go-mail.
type SMTPMailer struct {
	cfg    SMTPConfig
	logger Logger
}

// NewSMTPMailer creates a Mailer backed by the configured SMTP relay.
func NewSMTPMailer(cfg SMTPConfig, logger Logger) *SMTPMailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &SMTPMailer{cfg: cfg, logger: logger}
}

func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return NewDeliveryError(err)
	}
	if err := msg.To(email.To); err != nil {
		return NewDeliveryError(err)
	}

	msg.Subject(email.Subject)
	if email.HTML != "" {
		msg.SetBodyString(mail.TypeTextHTML, email.HTML)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, email.Message)
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return NewDeliveryError(err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Error("mailer delivery failed to %s: %v", email.To, err)
		return NewDeliveryError(err)
	}

	return nil
}

// LogMailer writes messages to the log instead of delivering them. Used in
// development when no SMTP relay is configured.
type LogMailer struct {
	logger Logger
}

func NewLogMailer(logger Logger) *LogMailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, email Email) error {
	m.logger.Info("====== SENDING EMAIL NOTIFICATION =======")
	m.logger.Info("to: %s", email.To)
	m.logger.Info("subject: %s", email.Subject)
	m.logger.Info("message: %s", email.Message)
	return nil
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = (*LogMailer)(nil)
)
