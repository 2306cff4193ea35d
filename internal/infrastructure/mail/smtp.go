// Package mail envío de correos por SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"

	gomail "github.com/go-mail/mail"

	"github.com/jhoicas/restaurante-api/internal/application/ports"
	"github.com/jhoicas/restaurante-api/pkg/config"
)

var _ ports.Mailer = (*SMTPSender)(nil)

// SMTPSender implementa ports.Mailer.
type SMTPSender struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewSMTPSender construye el emisor desde la configuración.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{host: cfg.Host, port: cfg.Port, user: cfg.User, pass: cfg.Password, from: cfg.From}
}

// Send envía multipart/alternative (texto + html) cuando hay ambos cuerpos.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	switch {
	case textBody != "" && htmlBody != "":
		m.SetBody("text/plain", textBody)
		m.AddAlternative("text/html", htmlBody)
	case htmlBody != "":
		m.SetBody("text/html", htmlBody)
	default:
		m.SetBody("text/plain", textBody)
	}

	d := gomail.NewDialer(s.host, s.port, s.user, s.pass)
	d.TLSConfig = &tls.Config{ServerName: s.host}
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}
