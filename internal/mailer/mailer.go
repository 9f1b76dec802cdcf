package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/railxam2004/CulT/pkg/config"
	"github.com/railxam2004/CulT/pkg/logger"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Attachment is a file sent along with a message
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is a plain text e-mail
type Message struct {
	To          []string
	ReplyTo     string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Sender delivers messages
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPSender sends mail through an SMTP relay
type SMTPSender struct {
	client *mail.Client
	from   string
}

// NewSMTPSender builds a client; no connection is made until Send
func NewSMTPSender(cfg *config.SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("smtp from address is required")
	}

	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	switch {
	case cfg.Port == 465:
		opts = append(opts, mail.WithSSLPort(false))
	case cfg.UseTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: cfg.From}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	m, err := buildMsg(s.from, msg)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

func buildMsg(from string, msg *Message) (*mail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, errors.New("message has no recipients")
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to address: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	for _, a := range msg.Attachments {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := m.AttachReader(a.Name, bytes.NewReader(a.Data),
			mail.WithFileContentType(mail.ContentType(contentType))); err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", a.Name, err)
		}
	}
	return m, nil
}

// LogSender only logs messages; used when SMTP is disabled
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	if log == nil {
		log = logger.Get()
	}
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg *Message) error {
	if len(msg.To) == 0 {
		return errors.New("message has no recipients")
	}
	s.log.WithContext(ctx).Info("mail delivery disabled, message dropped",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)),
	)
	return nil
}

// New returns an SMTP sender when enabled, otherwise a LogSender
func New(cfg *config.SMTPConfig) (Sender, error) {
	if cfg == nil || !cfg.Enabled {
		return NewLogSender(nil), nil
	}
	return NewSMTPSender(cfg)
}
