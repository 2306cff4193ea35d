package dto

import "time"

// OrderItemResponse línea del pedido (snapshot).
type OrderItemResponse struct {
	ProductID string     `json:"product_id"`
	Name      string     `json:"name"`
	UnitPrice string     `json:"unit_price"`
	Quantity  int        `json:"quantity"`
	LineTotal string     `json:"line_total"`
	Dietary   DietaryDTO `json:"dietary"`
}

// OrderResponse pedido completo.
type OrderResponse struct {
	ID                   string              `json:"id"`
	OrderNumber          int64               `json:"order_number"`
	CustomerID           string              `json:"customer_id,omitempty"`
	Customer             CustomerInfoDTO     `json:"customer"`
	Delivery             DeliveryInfoDTO     `json:"delivery"`
	Items                []OrderItemResponse `json:"items"`
	TotalPrice           string              `json:"total_price"`
	Currency             string              `json:"currency"`
	OrderType            string              `json:"order_type"`
	Status               string              `json:"status"`
	IsPaid               bool                `json:"is_paid"`
	PaymentSessionID     string              `json:"payment_session_id,omitempty"`
	PaymentFailureReason string              `json:"payment_failure_reason,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// OrderListResponse listado paginado de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// OrderListRequest filtros de GET /api/orders.
type OrderListRequest struct {
	PageRequest
	Status string `query:"status"`
}

// OrderOverrideRequest edición manual del staff. Campos nil no cambian.
type OrderOverrideRequest struct {
	Status *string `json:"status,omitempty"`
	IsPaid *bool   `json:"is_paid,omitempty"`
}
