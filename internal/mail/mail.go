package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/smtp"
	"strings"

	"github.com/UnknownOlympus/athena/internal/config"
)

var ErrNotConfigured = errors.New("smtp not configured")

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends mail through an SMTP relay. When disabled it only logs.
type SMTPMailer struct {
	cfg  config.MailConfig
	log  *slog.Logger
	send sendFunc
}

func NewSMTPMailer(cfg config.MailConfig, log *slog.Logger) *SMTPMailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}

	return &SMTPMailer{cfg: cfg, log: log, send: smtp.SendMail}
}

// Send delivers msg or, with mail disabled, logs that it would have.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !m.cfg.Enabled {
		m.log.InfoContext(ctx, "Mail disabled, message not sent", "to", msg.To, "subject", msg.Subject)
		return nil
	}

	if m.cfg.Host == "" || m.cfg.From == "" {
		return ErrNotConfigured
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.From, []string{msg.To}, m.compose(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}

	m.log.DebugContext(ctx, "Mail sent", "to", msg.To, "subject", msg.Subject)

	return nil
}

func (m *SMTPMailer) compose(msg Message) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", sanitizeHeader(msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.HTML)
	buf.WriteString("\r\n")

	return buf.Bytes()
}

func sanitizeHeader(value string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(value)
}

var resetTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body>
<p>Hello,</p>
<p>Follow this link to reset the password for your {{.Email}} account.</p>
<p><a id="reset-link" href="{{.Link}}">Reset password</a></p>
<p>If you didn't ask to reset your password, you can ignore this email.</p>
</body>
</html>`))

// PasswordReset renders the password reset email for email pointing at link.
func PasswordReset(email, link string) (Message, error) {
	var buf bytes.Buffer

	err := resetTemplate.Execute(&buf, struct {
		Email string
		Link  string
	}{Email: email, Link: link})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render reset email: %w", err)
	}

	return Message{To: email, Subject: "Reset your password", HTML: buf.String()}, nil
}
