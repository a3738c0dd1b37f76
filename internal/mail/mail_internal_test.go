package mail

import (
	"bytes"
	"context"
	"log/slog"
	"net/smtp"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/UnknownOlympus/athena/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	body string
	auth bool
}

func newCapturingMailer(cfg config.MailConfig, logBuf *bytes.Buffer) (*SMTPMailer, *[]capturedMail) {
	sent := &[]capturedMail{}
	mailer := NewSMTPMailer(cfg, slog.New(slog.NewTextHandler(logBuf, nil)))
	mailer.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		*sent = append(*sent, capturedMail{addr: addr, from: from, to: to, body: string(msg), auth: a != nil})
		return nil
	}

	return mailer, sent
}

func TestSend_Disabled(t *testing.T) {
	t.Parallel()

	var logBuf bytes.Buffer
	mailer, sent := newCapturingMailer(config.MailConfig{Enabled: false}, &logBuf)

	err := mailer.Send(context.Background(), Message{To: "a@x.com", Subject: "hi", HTML: "<p>hi</p>"})

	require.NoError(t, err)
	assert.Empty(t, *sent)
	assert.Contains(t, logBuf.String(), "Mail disabled")
}

func TestSend_NotConfigured(t *testing.T) {
	t.Parallel()

	var logBuf bytes.Buffer
	mailer, _ := newCapturingMailer(config.MailConfig{Enabled: true}, &logBuf)

	err := mailer.Send(context.Background(), Message{To: "a@x.com"})

	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestSend_Enabled(t *testing.T) {
	t.Parallel()

	var logBuf bytes.Buffer
	mailer, sent := newCapturingMailer(config.MailConfig{
		Enabled: true, Host: "smtp.example.com", Port: "587", Username: "noreply@example.com", Password: "pw",
	}, &logBuf)

	err := mailer.Send(context.Background(), Message{To: "a@x.com", Subject: "Hi\r\nBcc: evil@x.com", HTML: "<p>hi</p>"})

	require.NoError(t, err)
	require.Len(t, *sent, 1)
	msg := (*sent)[0]
	assert.Equal(t, "smtp.example.com:587", msg.addr)
	assert.Equal(t, "noreply@example.com", msg.from, "from falls back to the smtp username")
	assert.Equal(t, []string{"a@x.com"}, msg.to)
	assert.True(t, msg.auth)
	assert.Contains(t, msg.body, "Subject: HiBcc: evil@x.com\r\n")
	assert.NotContains(t, msg.body, "\r\nBcc:")
	assert.True(t, strings.HasSuffix(msg.body, "<p>hi</p>\r\n"))
}

func TestSend_SMTPError(t *testing.T) {
	t.Parallel()

	mailer := NewSMTPMailer(config.MailConfig{Enabled: true, Host: "smtp.example.com", Port: "25", From: "x@y.z"},
		slog.New(slog.DiscardHandler))
	mailer.send = func(string, smtp.Auth, string, []string, []byte) error { return assert.AnError }

	err := mailer.Send(context.Background(), Message{To: "a@x.com"})

	require.ErrorIs(t, err, assert.AnError)
}

func TestSend_CancelledContext(t *testing.T) {
	t.Parallel()

	var logBuf bytes.Buffer
	mailer, sent := newCapturingMailer(config.MailConfig{Enabled: true, Host: "h", From: "f@x.com"}, &logBuf)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := mailer.Send(ctx, Message{To: "a@x.com"})

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, *sent)
}

func TestPasswordReset(t *testing.T) {
	t.Parallel()

	link := "https://app.example.com/reset-password?oobCode=abc&mode=resetPassword"
	msg, err := PasswordReset("a@x.com", link)
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", msg.To)
	assert.Equal(t, "Reset your password", msg.Subject)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(msg.HTML))
	require.NoError(t, err)

	href, ok := doc.Find("a#reset-link").Attr("href")
	require.True(t, ok)
	assert.Equal(t, link, href)
	assert.Contains(t, doc.Find("body").Text(), "a@x.com")
}
