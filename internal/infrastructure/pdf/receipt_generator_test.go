package pdf_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/infrastructure/pdf"
)

func sampleOrder() *entity.Order {
	price := decimal.RequireFromString("5.00")
	return &entity.Order{
		ID:          "8f14e45f-ceea-467e-a1b0-000000000001",
		OrderNumber: 1001,
		Customer:    entity.CustomerSnapshot{Name: "Ana", Surname: "Pérez", Email: "ana@example.com"},
		Delivery:    entity.DeliveryInfo{Street: "Calle 1", City: "Madrid", PostalCode: "28001"},
		Items: []entity.OrderItem{{
			ProductID: "p1", Name: "Pizza Margarita", UnitPrice: price, Quantity: 2,
			LineTotal: decimal.RequireFromString("10.00"), Dietary: entity.DietaryFlags{Vegetarian: true},
		}},
		TotalPrice: decimal.RequireFromString("10.00"),
		Currency:   "eur",
		OrderType:  entity.OrderTypeDelivery,
		Status:     entity.OrderStatusCompleted,
		IsPaid:     true,
		CreatedAt:  time.Date(2026, 3, 1, 20, 30, 0, 0, time.UTC),
	}
}

func TestRender_GeneraPDF(t *testing.T) {
	g := pdf.NewReceiptGenerator("La Trattoria", language.Spanish)

	b, err := g.Render(sampleOrder())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")), "debe ser un documento PDF")
}

func TestRender_PedidoParaRecogerSinDireccion(t *testing.T) {
	g := pdf.NewReceiptGenerator("La Trattoria", language.English)
	o := sampleOrder()
	o.OrderType = entity.OrderTypePickup
	o.Delivery = entity.DeliveryInfo{}
	o.IsPaid = false

	b, err := g.Render(o)
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}
