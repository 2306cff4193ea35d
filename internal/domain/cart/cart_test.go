package cart_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/cart"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
)

func product(id, price string, available bool) *entity.Product {
	return &entity.Product{ID: id, Name: "Plato " + id, Price: decimal.RequireFromString(price), Available: available}
}

func TestNormalize_FusionaDuplicadosYEliminaCeros(t *testing.T) {
	got, err := cart.Normalize([]cart.Line{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 0},
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p3", Quantity: -1},
		{ProductID: "p4", Quantity: 1},
	})

	require.NoError(t, err)
	assert.Equal(t, []cart.Line{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p4", Quantity: 1},
	}, got)
}

// Una línea negativa repetida se descarta; no resta de la anterior.
func TestNormalize_NegativoDuplicadoNoResta(t *testing.T) {
	got, err := cart.Normalize([]cart.Line{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p1", Quantity: -2},
		{ProductID: "p2", Quantity: -1},
	})
	require.NoError(t, err)
	assert.Equal(t, []cart.Line{{ProductID: "p1", Quantity: 3}}, got)
}

func TestNormalize_CantidadMaxima(t *testing.T) {
	got, err := cart.Normalize([]cart.Line{
		{ProductID: "p1", Quantity: 50},
		{ProductID: "p1", Quantity: cart.MaxLineQuantity - 50},
	})
	require.NoError(t, err)
	assert.Equal(t, []cart.Line{{ProductID: "p1", Quantity: cart.MaxLineQuantity}}, got)

	_, err = cart.Normalize([]cart.Line{{ProductID: "p1", Quantity: 3_000_000_000}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = cart.Normalize([]cart.Line{
		{ProductID: "p1", Quantity: 60},
		{ProductID: "p1", Quantity: 60},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = cart.Normalize([]cart.Line{
		{ProductID: "p1", Quantity: math.MaxInt},
		{ProductID: "p1", Quantity: 2},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPrice_CantidadExcesivaEsErrorDeValidacion(t *testing.T) {
	catalog := map[string]*entity.Product{"P1": product("P1", "20.00", true)}

	res, err := cart.Price([]cart.Line{{ProductID: "P1", Quantity: 3_000_000_000}}, catalog)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, res)
}

// Precio del catálogo manda: 2 x 5.00 = 10.00 aunque el cliente diga 1.00.
func TestPrice_RevaloraConPrecioDelCatalogo(t *testing.T) {
	catalog := map[string]*entity.Product{"P1": product("P1", "5.00", true)}

	res, err := cart.Price([]cart.Line{{ProductID: "P1", Quantity: 2}}, catalog)
	require.NoError(t, err)

	require.Len(t, res.Lines, 1)
	assert.True(t, res.Total.Equal(decimal.RequireFromString("10.00")), "total = %s", res.Total)
	assert.True(t, res.Lines[0].UnitPrice.Equal(decimal.RequireFromString("5.00")))
}

func TestPrice_DescartaInexistentesYNoDisponibles(t *testing.T) {
	catalog := map[string]*entity.Product{
		"P1": product("P1", "3.50", true),
		"P2": product("P2", "4.00", false),
	}

	res, err := cart.Price([]cart.Line{
		{ProductID: "P1", Quantity: 1},
		{ProductID: "P2", Quantity: 1},
		{ProductID: "BORRADO", Quantity: 3},
	}, catalog)
	require.NoError(t, err)

	require.Len(t, res.Lines, 1)
	assert.ElementsMatch(t, []string{"P2", "BORRADO"}, res.Dropped)
	assert.True(t, res.Total.Equal(decimal.RequireFromString("3.50")))
}

func TestPrice_StockInsuficienteSeDescarta(t *testing.T) {
	p := product("P1", "2.00", true)
	p.TrackStock = true
	p.Stock = 1

	res, err := cart.Price([]cart.Line{{ProductID: "P1", Quantity: 2}}, map[string]*entity.Product{"P1": p})
	require.NoError(t, err)

	assert.True(t, res.Empty())
	assert.Equal(t, []string{"P1"}, res.Dropped)
}

func TestPrice_TotalIgualSumaDeLineas(t *testing.T) {
	catalog := map[string]*entity.Product{
		"A": product("A", "1.10", true),
		"B": product("B", "2.35", true),
		"C": product("C", "0.99", true),
	}
	res, err := cart.Price([]cart.Line{
		{ProductID: "A", Quantity: 3},
		{ProductID: "B", Quantity: 7},
		{ProductID: "C", Quantity: 11},
	}, catalog)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, l := range res.Lines {
		assert.True(t, l.LineTotal.Equal(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))))
		sum = sum.Add(l.LineTotal)
	}
	assert.True(t, res.Total.Equal(sum))
	assert.True(t, res.Total.Equal(decimal.RequireFromString("30.64")), "total = %s", res.Total)

	order := entity.Order{Items: res.ToOrderItems(), TotalPrice: res.Total}
	assert.True(t, order.ItemsTotal().Equal(order.TotalPrice))
}
