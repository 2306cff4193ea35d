// Package cart contiene las reglas del carrito: normalización, revalidación
// contra el catálogo y cálculo de precios. El carrito lo guarda el cliente;
// el servidor nunca confía en los precios que envía.
package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
)

// MaxLineQuantity unidades máximas de un producto por pedido.
const MaxLineQuantity = 99

// Line entrada del carrito tal como la envía el cliente.
type Line struct {
	ProductID string
	Quantity  int
}

// PricedLine línea con precio del catálogo vigente.
type PricedLine struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	LineTotal decimal.Decimal
	Dietary   entity.DietaryFlags
}

// Priced resultado de valorar un carrito.
type Priced struct {
	Lines   []PricedLine
	Total   decimal.Decimal
	Dropped []string // productos descartados por no existir o no estar disponibles
}

// Empty indica si no quedó ninguna línea válida.
func (p *Priced) Empty() bool {
	return len(p.Lines) == 0
}

// Normalize descarta las líneas con cantidad menor que 1 y fusiona productos
// repetidos (conserva la primera posición). ErrInvalidInput si una línea
// fusionada supera MaxLineQuantity.
func Normalize(lines []Line) ([]Line, error) {
	idx := make(map[string]int, len(lines))
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity < 1 {
			continue
		}
		if l.Quantity > MaxLineQuantity {
			return nil, quantityError(l.ProductID)
		}
		if i, ok := idx[l.ProductID]; ok {
			// ambos sumandos están acotados, la suma no desborda
			out[i].Quantity += l.Quantity
			if out[i].Quantity > MaxLineQuantity {
				return nil, quantityError(l.ProductID)
			}
			continue
		}
		idx[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out, nil
}

func quantityError(productID string) error {
	return fmt.Errorf("%w: quantity de %s supera %d", domain.ErrInvalidInput, productID, MaxLineQuantity)
}

// ProductIDs devuelve los IDs de las líneas en orden.
func ProductIDs(lines []Line) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

// Price normaliza el carrito, descarta lo que el catálogo ya no vende y
// calcula lineTotal = unitPrice * quantity y total = suma de lineTotal.
func Price(lines []Line, catalog map[string]*entity.Product) (*Priced, error) {
	normalized, err := Normalize(lines)
	if err != nil {
		return nil, err
	}
	res := &Priced{Total: decimal.Zero}
	for _, l := range normalized {
		p, ok := catalog[l.ProductID]
		if !ok || p == nil || !p.CanSell(l.Quantity) {
			res.Dropped = append(res.Dropped, l.ProductID)
			continue
		}
		unit := p.Price.Round(2)
		lineTotal := unit.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
		res.Lines = append(res.Lines, PricedLine{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: unit,
			Quantity:  l.Quantity,
			LineTotal: lineTotal,
			Dietary:   p.Dietary,
		})
		res.Total = res.Total.Add(lineTotal)
	}
	return res, nil
}

// ToOrderItems convierte las líneas valoradas en el snapshot del pedido.
func (p *Priced) ToOrderItems() []entity.OrderItem {
	items := make([]entity.OrderItem, 0, len(p.Lines))
	for _, l := range p.Lines {
		items = append(items, entity.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal,
			Dietary:   l.Dietary,
		})
	}
	return items
}
