package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, COALESCE(category_id::text, ''), name, description, price, image_url, available,
	vegetarian, vegan, gluten_free, spicy, track_stock, stock, created_at, updated_at`

// ProductRepo implementación de ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, category_id, name, description, price, image_url, available,
			vegetarian, vegan, gluten_free, spicy, track_stock, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		p.ID, nullIfEmpty(p.CategoryID), p.Name, p.Description, p.Price, p.ImageURL, p.Available,
		p.Dietary.Vegetarian, p.Dietary.Vegan, p.Dietary.GlutenFree, p.Dietary.Spicy,
		p.TrackStock, p.Stock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByIDs obtiene varios productos en una consulta.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1::uuid[])`, validUUIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// Update actualiza un producto.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET category_id = $2, name = $3, description = $4, price = $5, image_url = $6,
			available = $7, vegetarian = $8, vegan = $9, gluten_free = $10, spicy = $11,
			track_stock = $12, stock = $13, updated_at = $14
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		p.ID, nullIfEmpty(p.CategoryID), p.Name, p.Description, p.Price, p.ImageURL, p.Available,
		p.Dietary.Vegetarian, p.Dietary.Vegan, p.Dietary.GlutenFree, p.Dietary.Spicy,
		p.TrackStock, p.Stock, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos con filtros opcionales.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var (
		where []string
		args  []any
	)
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if f.OnlyAvailable {
		where = append(where, "available")
	}
	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY name`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// DecrementStock descuenta stock de productos con seguimiento; nunca baja de cero.
func (r *ProductRepo) DecrementStock(ctx context.Context, productID string, qty int) error {
	query := `
		UPDATE products SET stock = GREATEST(stock - $2, 0), updated_at = now()
		WHERE id = $1 AND track_stock`
	if _, err := r.q.Exec(ctx, query, productID, qty); err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	return nil
}

// Delete elimina un producto. Las líneas de pedidos ya creados conservan su snapshot.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Available,
		&p.Dietary.Vegetarian, &p.Dietary.Vegan, &p.Dietary.GlutenFree, &p.Dietary.Spicy,
		&p.TrackStock, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
