// Package checkout traduce el estado de una sesión de pago del proveedor
// al estado del pedido. Es una función pura: aplicarla dos veces sobre el
// mismo estado del proveedor produce el mismo resultado.
package checkout

import (
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
)

// Estados de sesión del proveedor.
const (
	SessionOpen     = "open"
	SessionComplete = "complete"
	SessionExpired  = "expired"
)

// Estados de pago de la sesión.
const (
	PaymentPaid              = "paid"
	PaymentUnpaid            = "unpaid"
	PaymentNoPaymentRequired = "no_payment_required"
)

// ProviderSession vista mínima de una sesión de pago del proveedor.
type ProviderSession struct {
	ID              string
	Status          string
	PaymentStatus   string
	PaymentIntentID string
	// AsyncFailed lo marca el webhook checkout.session.async_payment_failed
	// o el adaptador cuando el intento de pago quedó rechazado.
	AsyncFailed   bool
	FailureReason string
	URL           string
}

// MapSession devuelve el cambio a aplicar al pedido, o nil si la sesión sigue abierta
// o su estado es desconocido.
func MapSession(s ProviderSession) *entity.StatusChange {
	switch s.Status {
	case SessionComplete:
		if s.PaymentStatus == PaymentPaid || s.PaymentStatus == PaymentNoPaymentRequired {
			return &entity.StatusChange{
				Status:          entity.OrderStatusCompleted,
				IsPaid:          true,
				PaymentIntentID: s.PaymentIntentID,
			}
		}
		if s.AsyncFailed {
			return &entity.StatusChange{
				Status:          entity.OrderStatusFailed,
				PaymentIntentID: s.PaymentIntentID,
				FailureReason:   reasonOr(s.FailureReason, "el pago asíncrono fue rechazado"),
			}
		}
		return &entity.StatusChange{
			Status:          entity.OrderStatusProcessing,
			PaymentIntentID: s.PaymentIntentID,
		}
	case SessionExpired:
		return &entity.StatusChange{
			Status:          entity.OrderStatusFailed,
			PaymentIntentID: s.PaymentIntentID,
			FailureReason:   reasonOr(s.FailureReason, "la sesión de pago expiró"),
		}
	}
	return nil
}

func reasonOr(reason, def string) string {
	if reason != "" {
		return reason
	}
	return def
}
