// Package mailer is a write-only adapter for outbound product mail.
// Delivery failures are logged and never surfaced to API clients.
package mailer

import (
	"crypto/rand"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/aydinemrecan/scamradar-backend/internal/config"
)

type Mailer interface {
	Send(to, subject, html string) error
}

// SMTPMailer sends HTML mail over SMTP, upgrading with STARTTLS on
// submission ports and using implicit TLS on 465.
type SMTPMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// New returns an SMTP mailer when a host is configured, otherwise a
// log-only mailer so the rest of the system behaves identically in dev.
func New(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		slog.Info("SMTP not configured, outbound mail will be logged only")
		return &LogMailer{}
	}
	return &SMTPMailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.MailFrom,
	}
}

func (m *SMTPMailer) Send(to, subject, html string) error {
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))

	domain := m.host
	if parts := strings.SplitN(m.from, "@", 2); len(parts) == 2 {
		domain = parts[1]
	}
	randBytes := make([]byte, 16)
	rand.Read(randBytes)
	messageID := fmt.Sprintf("<%x.%d@%s>", randBytes, time.Now().UnixNano(), domain)

	msg := fmt.Sprintf("From: ScamRadar <%s>\r\nTo: %s\r\nSubject: %s\r\nDate: %s\r\nMessage-ID: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		m.from, to, subject, time.Now().UTC().Format(time.RFC1123Z), messageID, html)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	if m.port == 465 {
		return m.sendImplicitTLS(addr, auth, msg, to)
	}
	return m.sendSTARTTLS(addr, auth, msg, to)
}

func (m *SMTPMailer) sendImplicitTLS(addr string, auth smtp.Auth, msg, to string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.host})
	if err != nil {
		return fmt.Errorf("tls dial: %w", err)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp new client: %w", err)
	}
	defer client.Close()

	return m.sendWithClient(client, auth, msg, to)
}

func (m *SMTPMailer) sendSTARTTLS(addr string, auth smtp.Auth, msg, to string) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	return m.sendWithClient(client, auth, msg, to)
}

func (m *SMTPMailer) sendWithClient(client *smtp.Client, auth smtp.Auth, msg, to string) error {
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return client.Quit()
}

// LogMailer records outbound mail instead of delivering it.
type LogMailer struct{}

func (m *LogMailer) Send(to, subject, html string) error {
	slog.Info("mail suppressed (no SMTP configured)", "to", to, "subject", subject)
	return nil
}
