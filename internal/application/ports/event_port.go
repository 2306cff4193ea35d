package ports

import (
	"context"
	"time"
)

// Tipos de evento publicados al broker.
const (
	EventOrderCompleted  = "order.completed"
	EventOrderFailed     = "order.failed"
	EventContactReceived = "contact.received"
)

// Event sobre genérico; Payload se serializa a JSON.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// OrderEventPayload datos de un pedido que cambió de estado.
type OrderEventPayload struct {
	OrderID       string `json:"order_id"`
	OrderNumber   int64  `json:"order_number"`
	Status        string `json:"status"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	Total         string `json:"total"`
	Currency      string `json:"currency"`
	Reason        string `json:"reason,omitempty"`
}

// ContactEventPayload mensaje recibido desde el formulario de contacto.
type ContactEventPayload struct {
	MessageID string `json:"message_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

// EventPublisher puerto de salida hacia el broker. Publicar es best-effort:
// un error se registra pero no revierte la operación que lo originó.
type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}
