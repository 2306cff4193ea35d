package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TopProductResult fila cruda del ranking de productos.
type TopProductResult struct {
	ProductID string
	Name      string
	Units     int
	Revenue   decimal.Decimal
}

// AnalyticsRepository consultas de lectura para el dashboard.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	// GetRevenue devuelve ingresos y cantidad de pedidos pagados en el rango.
	// Usa COALESCE para devolver cero si no hay pedidos en el período.
	GetRevenue(ctx context.Context, start, end time.Time) (revenue decimal.Decimal, paidOrders int, err error)

	// CountByStatus cuenta pedidos por estado creados en el rango.
	CountByStatus(ctx context.Context, start, end time.Time) (map[string]int, error)

	// GetTopProducts devuelve los `limit` productos con más unidades vendidas en pedidos pagados.
	GetTopProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProductResult, error)
}
