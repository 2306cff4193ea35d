package dto

import "time"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// Los importes son de pedidos pagados, con dos decimales.
type DashboardSummaryDTO struct {
	// Día actual desde las 00:00
	TodayRevenue string `json:"today_revenue"`
	TodayOrders  int    `json:"today_orders"`

	// Mes en curso (día 1 hasta ahora)
	MonthRevenue      string `json:"month_revenue"`
	MonthOrders       int    `json:"month_orders"`
	AverageOrderValue string `json:"average_order_value"`

	// Pedidos del mes por estado
	OrdersByStatus map[string]int `json:"orders_by_status"`

	TopProducts []TopProductDTO `json:"top_products"`

	Currency    string    `json:"currency"`
	DateLabel   string    `json:"date_label"` // ej: "octubre 2026"
	GeneratedAt time.Time `json:"generated_at"`
}

// TopProductDTO producto del ranking mensual.
type TopProductDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Units     int    `json:"units"`
	Revenue   string `json:"revenue"`
}
