package infra

import (
	"fmt"
	"net/smtp"

	"beautypos/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending emails with PDF attachments.
// Every send goes through a circuit breaker so that a dead SMTP server
// fails fast instead of tying up workers.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
	cb       *CircuitBreaker
}

func NewMailer(cfg *config.Config, cb *CircuitBreaker) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		cb:       cb,
	}
}

// Enabled is false when no SMTP host is configured.
func (m *Mailer) Enabled() bool { return m != nil && m.host != "" }

// Send mails body to one recipient, attaching the file at attachmentPath
// when it is set.
func (m *Mailer) Send(to, subject, body, attachmentPath string) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer: SMTP is not configured")
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if attachmentPath != "" {
		if _, err := e.AttachFile(attachmentPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	send := func() error { return e.Send(m.addr, auth) }
	if m.cb == nil {
		return send()
	}
	return m.cb.Execute(send)
}
