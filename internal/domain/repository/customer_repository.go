package repository

import (
	"context"

	"github.com/jhoicas/restaurante-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	GetByEmail(ctx context.Context, email string) (*entity.Customer, error)
	// GetByExternalID busca por la identidad federada (proveedor, subject).
	GetByExternalID(ctx context.Context, provider, subject string) (*entity.Customer, error)
	// LinkExternalID asocia un proveedor al cliente. ErrConflict si ya está asociado a otra identidad.
	LinkExternalID(ctx context.Context, customerID, provider, subject string) error
	Update(ctx context.Context, customer *entity.Customer) error
	List(ctx context.Context, limit, offset int) ([]*entity.Customer, error)
	// Delete elimina al cliente; cascada a su sesión e identidades externas.
	Delete(ctx context.Context, id string) error
}
