// Package notifier traduce eventos del broker en correos.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"html"

	"github.com/jhoicas/restaurante-api/internal/application/ports"
	"github.com/jhoicas/restaurante-api/pkg/logger"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Notifier envía el correo que corresponde a cada evento.
type Notifier struct {
	mailer     ports.Mailer
	staffInbox string
	restaurant string
	log        *logger.Logger
}

// New construye el notificador.
func New(mailer ports.Mailer, staffInbox, restaurant string, log *logger.Logger) *Notifier {
	return &Notifier{mailer: mailer, staffInbox: staffInbox, restaurant: restaurant, log: log.WithComponent("notifier")}
}

// Handle procesa el cuerpo de un mensaje. Los tipos desconocidos se ignoran sin error.
func (n *Notifier) Handle(ctx context.Context, body []byte) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	switch env.Type {
	case ports.EventOrderCompleted:
		var p ports.OrderEventPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return n.orderCompleted(ctx, p)
	case ports.EventContactReceived:
		var p ports.ContactEventPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return n.contactReceived(ctx, p)
	default:
		n.log.Debug().Str("type", env.Type).Msg("evento sin notificación")
		return nil
	}
}

func (n *Notifier) orderCompleted(ctx context.Context, p ports.OrderEventPayload) error {
	if p.CustomerEmail == "" {
		n.log.Info().Str("order_id", p.OrderID).Msg("pedido sin email, no se notifica")
		return nil
	}
	subject := fmt.Sprintf("%s: pedido #%d confirmado", n.restaurant, p.OrderNumber)
	text := fmt.Sprintf("Hola %s,\n\nRecibimos el pago de tu pedido #%d por %s %s.\nTe avisaremos cuando esté listo.\n\n%s",
		p.CustomerName, p.OrderNumber, p.Total, p.Currency, n.restaurant)
	htmlBody := fmt.Sprintf("<p>Hola %s,</p><p>Recibimos el pago de tu pedido <strong>#%d</strong> por %s %s.</p><p>%s</p>",
		html.EscapeString(p.CustomerName), p.OrderNumber, html.EscapeString(p.Total), html.EscapeString(p.Currency),
		html.EscapeString(n.restaurant))
	if err := n.mailer.Send(ctx, p.CustomerEmail, subject, htmlBody, text); err != nil {
		return err
	}
	n.log.Info().Str("order_id", p.OrderID).Msg("confirmación enviada")
	return nil
}

func (n *Notifier) contactReceived(ctx context.Context, p ports.ContactEventPayload) error {
	subject := "Nuevo mensaje de contacto"
	if p.Subject != "" {
		subject += ": " + p.Subject
	}
	text := fmt.Sprintf("De: %s <%s>\n\n%s", p.Name, p.Email, p.Message)
	return n.mailer.Send(ctx, n.staffInbox, subject, "", text)
}
