package ports

import (
	"context"

	"github.com/jhoicas/restaurante-api/internal/domain/checkout"
)

// Eventos de webhook que la aplicación concilia.
const (
	WebhookSessionCompleted    = "checkout.session.completed"
	WebhookSessionExpired      = "checkout.session.expired"
	WebhookAsyncPaymentSuccess = "checkout.session.async_payment_succeeded"
	WebhookAsyncPaymentFailed  = "checkout.session.async_payment_failed"
)

// CheckoutLine línea cobrada en la sesión, importe en unidades mínimas (centavos).
type CheckoutLine struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// CheckoutRequest datos para abrir una sesión de pago.
type CheckoutRequest struct {
	OrderID       string
	OrderNumber   int64
	Currency      string
	CustomerEmail string
	Lines         []CheckoutLine
}

// WebhookEvent evento verificado del proveedor.
// Session es nil para tipos que no llevan una sesión de checkout.
type WebhookEvent struct {
	ID      string
	Type    string
	Session *checkout.ProviderSession
}

// PaymentGateway puerto de salida hacia la pasarela de pago.
// Los errores del proveedor se devuelven como *domain.UpstreamError.
type PaymentGateway interface {
	// CreateSession abre una sesión de checkout. La clave de idempotencia es OrderID.
	CreateSession(ctx context.Context, req CheckoutRequest) (*checkout.ProviderSession, error)
	GetSession(ctx context.Context, sessionID string) (*checkout.ProviderSession, error)
	// ParseWebhook verifica la firma y decodifica el evento.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
