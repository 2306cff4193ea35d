package ports

import "context"

// Mailer puerto de salida para enviar correos.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}
