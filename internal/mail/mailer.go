// Package mail provides outbound email delivery for subscription notifications.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"gazette/internal/observability"

	"github.com/google/uuid"
)

// Message is one outbound email addressed to a set of recipients.
type Message struct {
	Subject  string
	BodyText string
	BodyHTML string
	To       []string
}

// Mailer delivers messages. The notification service only depends on this
// interface; the SMTP implementation below is the production transport.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type smtpMailer struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

// NewSMTPMailer returns a Mailer that delivers through the given SMTP relay.
// Empty user disables authentication (local relay / mailcatcher setups).
func NewSMTPMailer(host, port, user, password, from string) Mailer {
	return &smtpMailer{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
	}
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return nil
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}

	addr := m.host + ":" + m.port
	raw := Build(m.from, msg)

	if err := smtp.SendMail(addr, auth, m.from, msg.To, raw); err != nil {
		observability.MailDeliveries.WithLabelValues("error").Inc()
		return fmt.Errorf("smtp send to %d recipients failed: %w", len(msg.To), err)
	}

	observability.MailDeliveries.WithLabelValues("ok").Inc()
	return nil
}

// Build renders the RFC 2046 multipart/alternative wire form of msg.
func Build(from string, msg Message) []byte {
	boundary := "b-" + uuid.New().String()

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Message-ID: <%s@gazette>\r\n", uuid.New().String())
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.BodyText)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.BodyHTML)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}
