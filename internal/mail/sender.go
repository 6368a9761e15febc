// Package mail sends plain-text notification emails over SMTP.
package mail

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// Config holds the SMTP connection settings.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	Sender   string
}

// Sender handles sending emails via SMTP
type Sender struct {
	cfg Config
}

// NewSender creates a new email sender
func NewSender(cfg Config) *Sender {
	return &Sender{cfg: cfg}
}

// Send delivers a plain-text message to a single recipient.
func (s *Sender) Send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = s.cfg.Sender
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}

	slog.Info("Email sent", "to", to, "subject", subject)
	return nil
}
