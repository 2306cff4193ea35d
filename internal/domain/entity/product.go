package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DietaryFlags marcas dietéticas que se copian al snapshot de cada línea de pedido.
type DietaryFlags struct {
	Vegetarian bool
	Vegan      bool
	GlutenFree bool
	Spicy      bool
}

// Product representa un plato o bebida de la carta.
// Si TrackStock es false el stock se ignora y solo cuenta Available.
type Product struct {
	ID          string
	CategoryID  string
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Available   bool
	Dietary     DietaryFlags
	TrackStock  bool
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanSell indica si el producto puede venderse en la cantidad pedida.
func (p *Product) CanSell(qty int) bool {
	if !p.Available {
		return false
	}
	return !p.TrackStock || p.Stock >= qty
}
