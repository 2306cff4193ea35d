package repository

import (
	"context"

	"github.com/jhoicas/restaurante-api/internal/domain/entity"
)

// ProductFilter filtros de listado.
type ProductFilter struct {
	CategoryID    string
	OnlyAvailable bool
	Limit         int
	Offset        int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetByIDs devuelve los productos existentes indexados por ID (los que no existen se omiten).
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, f ProductFilter) ([]*entity.Product, error)
	// DecrementStock descuenta qty de un producto con seguimiento de stock (sin bajar de cero).
	DecrementStock(ctx context.Context, productID string, qty int) error
	Delete(ctx context.Context, id string) error
}
