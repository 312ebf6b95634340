package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-leave-api/pkg/config"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To       []string
	Subject  string
	HTMLBody string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers mail through an SMTP relay using PLAIN auth over STARTTLS.
type SMTPSender struct {
	addr     string
	host     string
	username string
	password string
	from     string
	fromName string
	send     sendMailFunc
	now      func() time.Time
}

// NewSMTPSender builds a sender from the mail configuration.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		host:     cfg.Host,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.FromEmail,
		fromName: cfg.FromName,
		send:     smtp.SendMail,
		now:      time.Now,
	}
}

// Send writes the message to the relay. net/smtp has no context support, so ctx is
// only checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("mail has no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	if err := s.send(s.addr, auth, s.from, msg.To, s.build(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func (s *SMTPSender) build(msg Message) []byte {
	var buf bytes.Buffer
	from := s.from
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.fromName), s.from)
	}
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", s.now().UTC().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.HTMLBody)
	return buf.Bytes()
}

// LogSender records messages instead of delivering them. Used when SMTP is disabled.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender builds a logging sender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the envelope of the message.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info("mail delivery disabled, message logged",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("body_bytes", len(msg.HTMLBody)),
	)
	return nil
}

// New picks the SMTP sender when mail is enabled and the log sender otherwise.
func New(cfg config.MailConfig, logger *zap.Logger) Sender {
	if cfg.Enabled {
		return NewSMTPSender(cfg)
	}
	return NewLogSender(logger)
}
