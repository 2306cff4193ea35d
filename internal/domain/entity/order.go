package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pedido.
const (
	OrderStatusNew        = "new"
	OrderStatusCreated    = "created"
	OrderStatusProcessing = "processing"
	OrderStatusFailed     = "failed"
	OrderStatusCanceled   = "canceled"
	OrderStatusCompleted  = "completed"
)

// Tipos de pedido.
const (
	OrderTypeDelivery = "delivery"
	OrderTypePickup   = "pickup"
	OrderTypeDineIn   = "dine-in"
)

// orden del ciclo de vida: new -> created -> processing -> {completed | failed | canceled}
var statusRank = map[string]int{
	OrderStatusNew:        0,
	OrderStatusCreated:    1,
	OrderStatusProcessing: 2,
	OrderStatusCompleted:  3,
	OrderStatusFailed:     3,
	OrderStatusCanceled:   3,
}

// IsValidOrderStatus indica si s es un estado conocido.
func IsValidOrderStatus(s string) bool {
	_, ok := statusRank[s]
	return ok
}

// IsValidOrderType indica si t es un tipo de pedido conocido.
func IsValidOrderType(t string) bool {
	switch t {
	case OrderTypeDelivery, OrderTypePickup, OrderTypeDineIn:
		return true
	}
	return false
}

// IsTerminalStatus indica si el estado ya no avanza.
func IsTerminalStatus(s string) bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed || s == OrderStatusCanceled
}

// CanTransition indica si la conciliación puede mover el pedido de from a to.
// Los estados solo avanzan; un estado terminal nunca cambia.
func CanTransition(from, to string) bool {
	if IsTerminalStatus(from) || !IsValidOrderStatus(to) {
		return false
	}
	return statusRank[to] > statusRank[from]
}

// PreviousStatuses devuelve los estados desde los que se puede llegar a to.
// Lo usan los repositorios para el UPDATE condicional.
func PreviousStatuses(to string) []string {
	var out []string
	for s := range statusRank {
		if CanTransition(s, to) {
			out = append(out, s)
		}
	}
	return out
}

// CustomerSnapshot datos del cliente copiados al pedido.
type CustomerSnapshot struct {
	Name    string
	Surname string
	Email   string
	Phone   string
}

// DeliveryInfo dirección de entrega (obligatoria solo para delivery).
type DeliveryInfo struct {
	Street     string
	City       string
	PostalCode string
	Notes      string
}

// Complete indica si la dirección tiene los campos mínimos.
func (d DeliveryInfo) Complete() bool {
	return d.Street != "" && d.City != "" && d.PostalCode != ""
}

// OrderItem snapshot de una línea del pedido; no cambia si el catálogo cambia después.
type OrderItem struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	LineTotal decimal.Decimal
	Dietary   DietaryFlags
}

// Order pedido de la tienda.
type Order struct {
	ID                   string
	OrderNumber          int64
	CustomerID           string // vacío para invitados
	Customer             CustomerSnapshot
	Delivery             DeliveryInfo
	Items                []OrderItem
	TotalPrice           decimal.Decimal
	Currency             string
	OrderType            string
	Status               string
	IsPaid               bool
	PaymentSessionID     string
	PaymentIntentID      string
	PaymentFailureReason string
	IdempotencyKey       string
	StockApplied         bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ItemsTotal recalcula la suma de las líneas.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.LineTotal)
	}
	return total
}

// StatusChange cambio de estado producido por la conciliación.
type StatusChange struct {
	Status          string
	IsPaid          bool
	PaymentIntentID string
	FailureReason   string
}
