package auth

import (
	"context"

	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
)

var _ IdentityResolver = (*IdentityDirectory)(nil)

// IdentityDirectory resuelve identidades de staff y clientes.
type IdentityDirectory struct {
	users     repository.UserRepository
	customers repository.CustomerRepository
}

// NewIdentityDirectory construye el directorio.
func NewIdentityDirectory(users repository.UserRepository, customers repository.CustomerRepository) *IdentityDirectory {
	return &IdentityDirectory{users: users, customers: customers}
}

// Resolve carga la identidad con su rol vigente.
func (d *IdentityDirectory) Resolve(ctx context.Context, kind, id string) (*Identity, error) {
	switch kind {
	case entity.IdentityUser:
		u, err := d.users.GetByID(ctx, id)
		if err != nil || u == nil {
			return nil, err
		}
		return userIdentity(u), nil
	case entity.IdentityCustomer:
		c, err := d.customers.GetByID(ctx, id)
		if err != nil || c == nil {
			return nil, err
		}
		return customerIdentity(c), nil
	}
	return nil, nil
}

func userIdentity(u *entity.User) *Identity {
	return &Identity{
		ID:      u.ID,
		Kind:    entity.IdentityUser,
		Role:    u.Role,
		Email:   u.Email,
		Name:    u.Name,
		Surname: u.Surname,
	}
}

func customerIdentity(c *entity.Customer) *Identity {
	return &Identity{
		ID:      c.ID,
		Kind:    entity.IdentityCustomer,
		Role:    entity.RoleCustomer,
		Email:   c.Email,
		Name:    c.Name,
		Surname: c.Surname,
	}
}
