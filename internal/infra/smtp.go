package infra

import (
	"bytes"
	"fmt"
	"net/smtp"

	"aceves/internal/config"

	"github.com/jordan-wright/email"
)

// Attachment is an in-memory file attached to an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is one transactional e-mail.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Mailer sends transactional e-mail through an SMTP relay (Resend exposes
// one at smtp.resend.com with user "resend" and the API key as password).
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Enabled reports whether SMTP credentials were configured.
func (m *Mailer) Enabled() bool { return m.password != "" }

func (m *Mailer) Send(msg Message) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	if msg.HTML != "" {
		e.HTML = []byte(msg.HTML)
	}
	if msg.Text != "" {
		e.Text = []byte(msg.Text)
	}

	for _, a := range msg.Attachments {
		if _, err := e.Attach(bytes.NewReader(a.Content), a.Filename, a.ContentType); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", a.Filename, err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	if err := e.Send(m.addr, auth); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", msg.To, err)
	}
	return nil
}
