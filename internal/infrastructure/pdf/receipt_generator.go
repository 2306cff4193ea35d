// Package pdf genera el comprobante de pedido en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Restaurante         │  Pedido N° + Fecha           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + contacto  │  ENTREGA: tipo / dirección   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Subtotal                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL + estado del pago                                     │
//	│  QR con el id del pedido (recogida en local)                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/restaurante-api/internal/application/ports"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 140, Green: 28, Blue: 19}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var orderTypeLabels = map[string]string{
	entity.OrderTypeDelivery: "A domicilio",
	entity.OrderTypePickup:   "Para recoger",
	entity.OrderTypeDineIn:   "En el local",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ ports.ReceiptRenderer = (*ReceiptGenerator)(nil)

// ReceiptGenerator implementa ports.ReceiptRenderer usando Maroto v2.
type ReceiptGenerator struct {
	restaurant string
	printer    *message.Printer
}

// NewReceiptGenerator construye el generador; lang define el formato de importes.
func NewReceiptGenerator(restaurant string, lang language.Tag) *ReceiptGenerator {
	return &ReceiptGenerator{restaurant: restaurant, printer: message.NewPrinter(lang)}
}

// Render genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) Render(order *entity.Order) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Pedido %d", order.OrderNumber), true).
		WithAuthor(g.restaurant, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.itemRows(order)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalRow(order))
	m.AddRows(line.NewRow(4))
	m.AddRows(qrRow(order))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *ReceiptGenerator) headerRow(o *entity.Order) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.restaurant, props.Text{Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1}),
			text.New("Comprobante de pedido", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(fmt.Sprintf("PEDIDO N° %d", o.OrderNumber), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+o.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func partiesRow(o *entity.Order) core.Row {
	contact := strings.TrimSpace(o.Customer.Email + "   " + o.Customer.Phone)
	delivery := nonEmpty(orderTypeLabels[o.OrderType], o.OrderType)
	if o.OrderType == entity.OrderTypeDelivery {
		delivery = fmt.Sprintf("%s: %s, %s %s", delivery, o.Delivery.Street, o.Delivery.PostalCode, o.Delivery.City)
	}
	return row.New(16).Add(
		col.New(6).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(strings.TrimSpace(o.Customer.Name+" "+o.Customer.Surname), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(nonEmpty(contact, "-"), props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
		col.New(6).Add(
			text.New("ENTREGA", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(delivery, props.Text{Size: 9, Top: 6}),
			text.New(o.Delivery.Notes, props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 6, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

func (g *ReceiptGenerator) itemRows(o *entity.Order) []core.Row {
	rows := make([]core.Row, 0, len(o.Items))
	for _, it := range o.Items {
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprint(it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(it.Name+dietaryTags(it.Dietary), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(g.money(it.UnitPrice, o.Currency), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(g.money(it.LineTotal, o.Currency), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func (g *ReceiptGenerator) totalRow(o *entity.Order) core.Row {
	status := "PENDIENTE DE PAGO"
	if o.IsPaid {
		status = "PAGADO"
	}
	return row.New(14).Add(
		col.New(6).Add(text.New(status, props.Text{Style: fontstyle.Bold, Size: 9, Color: colorGray, Top: 2})),
		col.New(3).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(3).Add(text.New(g.money(o.TotalPrice, o.Currency), props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

func qrRow(o *entity.Order) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(o.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Presenta este código al recoger tu pedido.", props.Text{Size: 8, Top: 6, Left: 3, Color: colorGray}),
			text.New("Gracias por tu compra.", props.Text{Style: fontstyle.Bold, Size: 10, Top: 16, Left: 3, Color: colorPrimary}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// money formatea con separadores del idioma y el código ISO de la moneda: "1.234,50 EUR".
func (g *ReceiptGenerator) money(d decimal.Decimal, code string) string {
	iso := strings.ToUpper(code)
	if unit, err := currency.ParseISO(code); err == nil {
		iso = unit.String()
	}
	f, _ := d.Round(2).Float64()
	return g.printer.Sprintf("%.2f %s", f, iso)
}

func dietaryTags(d entity.DietaryFlags) string {
	var tags []string
	if d.Vegan {
		tags = append(tags, "vegano")
	} else if d.Vegetarian {
		tags = append(tags, "vegetariano")
	}
	if d.GlutenFree {
		tags = append(tags, "sin gluten")
	}
	if d.Spicy {
		tags = append(tags, "picante")
	}
	if len(tags) == 0 {
		return ""
	}
	return " (" + strings.Join(tags, ", ") + ")"
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
