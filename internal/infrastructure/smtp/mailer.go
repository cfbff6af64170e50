package smtp

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"sync"
	"time"

	"github.com/headless-auth-relay/internal/config"
)

// Mailer sends HTML emails.
type Mailer interface {
	// Verify checks the SMTP connection and credentials without sending.
	Verify() error
	SendEmail(to, subject, html string) error
}

type mailer struct {
	host     string
	port     string
	sender   string
	username string
	password string

	verifyOnce sync.Once
	verifyErr  error
}

// NewMailer builds a mailer for an implicit-TLS SMTP endpoint (SES style,
// typically port 465). The connection is verified once before the first send.
func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		sender:   cfg.SMTPSender,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) connect() (*smtp.Client, error) {
	addr := net.JoinHostPort(m.host, m.port)
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: m.host})
	if err != nil {
		return nil, fmt.Errorf("dial smtp %s: %w", addr, err)
	}
	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("smtp handshake: %w", err)
	}
	if m.username != "" {
		if err := c.Auth(smtp.PlainAuth("", m.username, m.password, m.host)); err != nil {
			c.Close()
			return nil, fmt.Errorf("smtp auth: %w", err)
		}
	}
	return c, nil
}

func (m *mailer) Verify() error {
	c, err := m.connect()
	if err != nil {
		return err
	}
	return c.Quit()
}

func (m *mailer) SendEmail(to, subject, html string) error {
	m.verifyOnce.Do(func() { m.verifyErr = m.Verify() })
	if m.verifyErr != nil {
		return m.verifyErr
	}

	c, err := m.connect()
	if err != nil {
		return err
	}
	defer c.Quit()

	if err := c.Mail(m.sender); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		m.sender, to, subject, html)
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("smtp write body: %w", err)
	}
	return w.Close()
}
