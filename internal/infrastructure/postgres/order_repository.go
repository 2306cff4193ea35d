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

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, order_number, COALESCE(customer_id::text, ''),
	customer_name, customer_surname, customer_email, customer_phone,
	delivery_street, delivery_city, delivery_postal_code, delivery_notes,
	total_price, currency, order_type, status, is_paid,
	COALESCE(payment_session_id, ''), payment_intent_id, payment_failure_reason,
	COALESCE(idempotency_key, ''), stock_applied, created_at, updated_at`

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de pedidos.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta cabecera y líneas. El número de pedido lo asigna la secuencia.
// Las líneas se insertan con el mismo Querier: dentro de TxRunner todo es atómico.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO orders (id, customer_id, customer_name, customer_surname, customer_email, customer_phone,
			delivery_street, delivery_city, delivery_postal_code, delivery_notes,
			total_price, currency, order_type, status, is_paid, idempotency_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING order_number`
	err := r.q.QueryRow(ctx, query,
		o.ID, nullIfEmpty(o.CustomerID), o.Customer.Name, o.Customer.Surname, o.Customer.Email, o.Customer.Phone,
		o.Delivery.Street, o.Delivery.City, o.Delivery.PostalCode, o.Delivery.Notes,
		o.TotalPrice, o.Currency, o.OrderType, o.Status, o.IsPaid, nullIfEmpty(o.IdempotencyKey),
		o.CreatedAt, o.UpdatedAt,
	).Scan(&o.OrderNumber)
	if err != nil {
		if isUniqueViolation(err) && strings.Contains(violatedConstraint(err), "idempotency") {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, position, product_id, name, unit_price, quantity, line_total,
			vegetarian, vegan, gluten_free, spicy)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	for i, it := range o.Items {
		_, err := r.q.Exec(ctx, itemQuery,
			o.ID, i, it.ProductID, it.Name, it.UnitPrice, it.Quantity, it.LineTotal,
			it.Dietary.Vegetarian, it.Dietary.Vegan, it.Dietary.GlutenFree, it.Dietary.Spicy,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un pedido con sus líneas.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetBySessionID obtiene el pedido asociado a una sesión de pago.
func (r *OrderRepo) GetBySessionID(ctx context.Context, sessionID string) (*entity.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE payment_session_id = $1`, sessionID)
}

// GetByIdempotencyKey obtiene el pedido creado con esa clave.
func (r *OrderRepo) GetByIdempotencyKey(ctx context.Context, key string) (*entity.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1`, key)
}

func (r *OrderRepo) findOne(ctx context.Context, query string, arg any) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	items, err := r.items(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *OrderRepo) items(ctx context.Context, orderID string) ([]entity.OrderItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, name, unit_price, quantity, line_total, vegetarian, vegan, gluten_free, spicy
		FROM order_items WHERE order_id = $1 ORDER BY position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()
	var items []entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity, &it.LineTotal,
			&it.Dietary.Vegetarian, &it.Dietary.Vegan, &it.Dietary.GlutenFree, &it.Dietary.Spicy); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// List lista pedidos (más recientes primero) y devuelve el total sin paginar.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.CustomerID != "" {
		args = append(args, f.CustomerID)
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	cond := ""
	if len(where) > 0 {
		cond = ` WHERE ` + strings.Join(where, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + cond + ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	// las líneas se leen después de cerrar rows: la conexión no admite dos consultas abiertas
	for _, o := range list {
		if o.Items, err = r.items(ctx, o.ID); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}

// AttachSession guarda la sesión de pago y avanza de new a created.
func (r *OrderRepo) AttachSession(ctx context.Context, orderID, sessionID string) error {
	query := `
		UPDATE orders SET payment_session_id = $2,
			status = CASE WHEN status = 'new' THEN 'created' ELSE status END,
			updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, orderID, sessionID)
	if err != nil {
		return fmt.Errorf("attach session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ApplyStatus UPDATE condicional: solo avanza si el estado actual precede al nuevo.
// Dos conciliaciones concurrentes no pueden aplicar el mismo cambio dos veces.
func (r *OrderRepo) ApplyStatus(ctx context.Context, orderID string, change entity.StatusChange) (bool, error) {
	prev := entity.PreviousStatuses(change.Status)
	if len(prev) == 0 {
		return false, nil
	}
	query := `
		UPDATE orders SET status = $2,
			is_paid = is_paid OR $3,
			payment_intent_id = CASE WHEN $4 <> '' THEN $4 ELSE payment_intent_id END,
			payment_failure_reason = CASE WHEN $5 <> '' THEN $5 ELSE payment_failure_reason END,
			updated_at = now()
		WHERE id = $1 AND status = ANY($6)`
	tag, err := r.q.Exec(ctx, query, orderID, change.Status, change.IsPaid, change.PaymentIntentID, change.FailureReason, prev)
	if err != nil {
		return false, fmt.Errorf("apply order status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkStockApplied marca el descuento de stock una sola vez.
func (r *OrderRepo) MarkStockApplied(ctx context.Context, orderID string) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE orders SET stock_applied = TRUE, updated_at = now() WHERE id = $1 AND NOT stock_applied`, orderID)
	if err != nil {
		return false, fmt.Errorf("mark stock applied: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Override cambio manual del staff; no pasa por la máquina de estados.
func (r *OrderRepo) Override(ctx context.Context, orderID, status string, isPaid bool) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE orders SET status = $2, is_paid = $3, updated_at = now() WHERE id = $1`, orderID, status, isPaid)
	if err != nil {
		return fmt.Errorf("override order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el pedido (las líneas caen por FK).
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID,
		&o.Customer.Name, &o.Customer.Surname, &o.Customer.Email, &o.Customer.Phone,
		&o.Delivery.Street, &o.Delivery.City, &o.Delivery.PostalCode, &o.Delivery.Notes,
		&o.TotalPrice, &o.Currency, &o.OrderType, &o.Status, &o.IsPaid,
		&o.PaymentSessionID, &o.PaymentIntentID, &o.PaymentFailureReason,
		&o.IdempotencyKey, &o.StockApplied, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
