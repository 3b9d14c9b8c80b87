// Package mailer delivers plain text emails.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"
)

type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// TransportError reports a message the transport failed to deliver.
type TransportError struct {
	To  []string
	Err error
}

func (err TransportError) Error() string {
	return fmt.Sprintf("failed to deliver mail to %s: %v", strings.Join(err.To, ", "), err.Err)
}

func (err TransportError) Unwrap() error {
	return err.Err
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPSender sends every message over a fresh SMTP connection.
type SMTPSender struct {
	config SMTPConfig
}

var _ Sender = (*SMTPSender)(nil)

func NewSMTPSender(config SMTPConfig) *SMTPSender {
	return &SMTPSender{config: config}
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}

	if s.config.Username != "" {
		opts = append(
			opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
		)
	}

	return opts
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	m, err := newMsg(msg)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	client, err := mail.NewClient(s.config.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	err = client.DialAndSendWithContext(ctx, m)
	if err != nil {
		return TransportError{To: msg.To, Err: err}
	}

	return nil
}

func newMsg(msg *Message) (*mail.Msg, error) {
	m := mail.NewMsg()

	err := m.From(msg.From)
	if err != nil {
		return nil, fmt.Errorf("failed to set from address: %w", err)
	}

	err = m.To(msg.To...)
	if err != nil {
		return nil, fmt.Errorf("failed to set to addresses: %w", err)
	}

	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	return m, nil
}

// LogSender writes messages to the log instead of delivering them. It is
// used when no SMTP host is configured.
type LogSender struct {
	logger *slog.Logger
}

var _ Sender = (*LogSender)(nil)

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg *Message) error {
	_, err := newMsg(msg)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	s.logger.InfoContext(
		ctx,
		"mail message",
		"from", msg.From,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)

	return nil
}
