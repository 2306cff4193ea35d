package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/restaurante-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// GetRevenue suma total_price de pedidos pagados en [start, end).
func (r *AnalyticsRepo) GetRevenue(ctx context.Context, start, end time.Time) (decimal.Decimal, int, error) {
	const query = `
	SELECT COALESCE(SUM(total_price), 0), COUNT(*)
	FROM orders
	WHERE is_paid
	  AND created_at >= $1 AND created_at < $2`

	var (
		revenue decimal.Decimal
		count   int
	)
	if err := r.q.QueryRow(ctx, query, start, end).Scan(&revenue, &count); err != nil {
		return decimal.Zero, 0, fmt.Errorf("analytics.GetRevenue: %w", err)
	}
	return revenue, count, nil
}

// CountByStatus cuenta pedidos por estado en [start, end).
func (r *AnalyticsRepo) CountByStatus(ctx context.Context, start, end time.Time) (map[string]int, error) {
	const query = `
	SELECT status, COUNT(*)
	FROM orders
	WHERE created_at >= $1 AND created_at < $2
	GROUP BY status`

	rows, err := r.q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("analytics.CountByStatus: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("analytics.CountByStatus scan: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

// GetTopProducts ranking por unidades vendidas en pedidos pagados.
// Usa el nombre del snapshot del pedido: un producto borrado sigue apareciendo.
func (r *AnalyticsRepo) GetTopProducts(ctx context.Context, start, end time.Time, limit int) ([]repository.TopProductResult, error) {
	const query = `
	SELECT
	    i.product_id::TEXT,
	    MAX(i.name)        AS name,
	    SUM(i.quantity)    AS units,
	    SUM(i.line_total)  AS revenue
	FROM order_items i
	JOIN orders o ON o.id = i.order_id
	WHERE o.is_paid
	  AND o.created_at >= $1 AND o.created_at < $2
	GROUP BY i.product_id
	ORDER BY units DESC, revenue DESC
	LIMIT $3`

	rows, err := r.q.Query(ctx, query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTopProducts: %w", err)
	}
	defer rows.Close()

	var results []repository.TopProductResult
	for rows.Next() {
		var row repository.TopProductResult
		if err := rows.Scan(&row.ProductID, &row.Name, &row.Units, &row.Revenue); err != nil {
			return nil, fmt.Errorf("analytics.GetTopProducts scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
