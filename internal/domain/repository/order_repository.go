package repository

import (
	"context"

	"github.com/jhoicas/restaurante-api/internal/domain/entity"
)

// OrderFilter filtros de listado para el back office.
type OrderFilter struct {
	Status     string
	CustomerID string
	Limit      int
	Offset     int
}

// OrderRepository define el puerto de persistencia para Order y sus líneas.
type OrderRepository interface {
	// Create inserta el pedido con sus líneas y asigna OrderNumber.
	// ErrConflict si IdempotencyKey ya existe.
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*entity.Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.Order, error)
	List(ctx context.Context, f OrderFilter) ([]*entity.Order, int, error)
	// AttachSession guarda el id de sesión de pago y pasa el pedido a created.
	AttachSession(ctx context.Context, orderID, sessionID string) error
	// ApplyStatus aplica el cambio solo si el estado actual puede avanzar a change.Status.
	// Devuelve false si no se aplicó (ya estaba en ese estado o en uno terminal).
	ApplyStatus(ctx context.Context, orderID string, change entity.StatusChange) (bool, error)
	// MarkStockApplied marca el descuento de stock; false si ya estaba marcado.
	MarkStockApplied(ctx context.Context, orderID string) (bool, error)
	// Override cambio manual del staff (estado y/o pago).
	Override(ctx context.Context, orderID, status string, isPaid bool) error
	Delete(ctx context.Context, id string) error
}
