package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

const customerColumns = `c.id, c.name, c.surname, COALESCE(c.email, ''), c.phone, COALESCE(c.password_hash, ''), c.created_at, c.updated_at,
	COALESCE((SELECT jsonb_object_agg(e.provider, e.subject) FROM customer_external_ids e WHERE e.customer_id = c.id), '{}'::jsonb)`

// CustomerRepo implementación de CustomerRepository sobre PostgreSQL.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador de clientes.
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create persiste un cliente y sus identidades externas.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	query := `
		INSERT INTO customers (id, name, surname, email, phone, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.Surname, nullIfEmpty(c.Email), c.Phone, nullIfEmpty(c.PasswordHash),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	for provider, subject := range c.ExternalIDs {
		if err := r.LinkExternalID(ctx, c.ID, provider, subject); err != nil {
			// sin identidad externa el cliente queda huérfano: se descarta
			_, _ = r.q.Exec(ctx, `DELETE FROM customers WHERE id = $1`, c.ID)
			return err
		}
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	return r.findOne(ctx, `SELECT `+customerColumns+` FROM customers c WHERE c.id = $1`, id)
}

// GetByEmail obtiene un cliente por email (normalizado).
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	return r.findOne(ctx, `SELECT `+customerColumns+` FROM customers c WHERE c.email = $1`, email)
}

// GetByExternalID obtiene un cliente por identidad federada.
func (r *CustomerRepo) GetByExternalID(ctx context.Context, provider, subject string) (*entity.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers c
		JOIN customer_external_ids x ON x.customer_id = c.id
		WHERE x.provider = $1 AND x.subject = $2`
	c, err := scanCustomer(r.q.QueryRow(ctx, query, provider, subject))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer by external id: %w", err)
	}
	return c, nil
}

func (r *CustomerRepo) findOne(ctx context.Context, query string, arg any) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// LinkExternalID asocia (provider, subject) al cliente. Repetir el mismo vínculo no falla.
func (r *CustomerRepo) LinkExternalID(ctx context.Context, customerID, provider, subject string) error {
	query := `
		INSERT INTO customer_external_ids (customer_id, provider, subject)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id, provider) DO UPDATE SET subject = EXCLUDED.subject`
	if _, err := r.q.Exec(ctx, query, customerID, provider, subject); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: la identidad de %s ya está vinculada a otra cuenta", domain.ErrConflict, provider)
		}
		return fmt.Errorf("link external id: %w", err)
	}
	return nil
}

// Update actualiza perfil y contraseña.
func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	query := `
		UPDATE customers SET name = $2, surname = $3, email = $4, phone = $5, password_hash = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.Surname, nullIfEmpty(c.Email), c.Phone, nullIfEmpty(c.PasswordHash), c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista clientes con paginación.
func (r *CustomerRepo) List(ctx context.Context, limit, offset int) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers c ORDER BY c.created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Delete elimina el cliente; external ids caen por FK y la sesión se borra aquí.
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM refresh_tokens WHERE owner_id = $1`, id); err != nil {
		return fmt.Errorf("delete customer tokens: %w", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Surname, &c.Email, &c.Phone, &c.PasswordHash,
		&c.CreatedAt, &c.UpdatedAt, &c.ExternalIDs)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
