// Package mail sends the emailed action links: verification, password reset
// and guardian invitations.
package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/medtrack/internal/logging"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// sendMail is a seam for tests.
var sendMail = smtp.SendMail

type SMTPMailer struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (s *SMTPMailer) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))

	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Password, s.Host)
	}
	if err := sendMail(addr, auth, envelopeAddress(s.From), []string{m.To}, Compose(s.From, m)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// Compose renders m as a plain-text RFC 5322 message.
func Compose(from string, m Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + m.To + "\r\n")
	b.WriteString("Subject: " + m.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}

// envelopeAddress strips a display name: "MedTrack <a@b>" -> "a@b".
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return from
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	Logger logging.Logger
}

func (l LogMailer) Send(ctx context.Context, m Message) error {
	l.Logger.Info(ctx, "smtp not configured, printing mail", "to", m.To, "subject", m.Subject, "body", m.Body)
	return nil
}

func New(host string, port int, user, password, from string, logger logging.Logger) Mailer {
	if host == "" {
		return LogMailer{Logger: logger}
	}
	return &SMTPMailer{Host: host, Port: port, User: user, Password: password, From: from}
}
