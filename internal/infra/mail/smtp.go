package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"

	"github.com/small-engineer/go-todo-serv/internal/domain"
)

type Config struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func (c Config) Enabled() bool {
	return c.Host != "" && c.Port != "" && c.From != ""
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends the registration welcome message over SMTP.
type Mailer struct {
	cfg  Config
	send sendFunc
}

func NewMailer(cfg Config) *Mailer {
	return &Mailer{
		cfg:  cfg,
		send: smtp.SendMail,
	}
}

func (m *Mailer) Registered(ctx context.Context, u *domain.User) error {
	name := u.Name
	if name == "" {
		name = u.Email
	}
	body := fmt.Sprintf("Hi %s,\n\nyour account has been created. You can now log in with %s.\n", name, u.Email)
	return m.sendMail(ctx, u.Email, "Welcome", body)
}

func (m *Mailer) sendMail(ctx context.Context, to, subj, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}

	hdr := ""
	hdr += "From: " + m.cfg.From + "\r\n"
	hdr += "To: " + to + "\r\n"
	hdr += "Subject: " + subj + "\r\n"
	hdr += "MIME-Version: 1.0\r\n"
	hdr += "Content-Type: text/plain; charset=UTF-8\r\n"
	hdr += "\r\n"

	msg := hdr + body

	err := m.send(addr, auth, m.cfg.From, []string{to}, []byte(msg))
	if err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	return nil
}
