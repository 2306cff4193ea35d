package ports

import "github.com/jhoicas/restaurante-api/internal/domain/entity"

// ReceiptRenderer genera el comprobante PDF de un pedido.
type ReceiptRenderer interface {
	Render(order *entity.Order) ([]byte, error)
}
