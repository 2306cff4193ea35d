package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/application/usecase"
	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
	"github.com/jhoicas/restaurante-api/internal/testutil"
)

func newCatalog() (*usecase.CatalogUseCase, *testutil.Products, *testutil.Categories) {
	products := testutil.NewProducts()
	categories := testutil.NewCategories()
	return usecase.NewCatalogUseCase(products, categories, 0), products, categories
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "platos-tipicos", usecase.Slugify("  Platos Típicos "))
	assert.Equal(t, "cafe-te", usecase.Slugify("Café & Té"))
	assert.Equal(t, "", usecase.Slugify("¡¿!"))
}

func TestCatalog_CreateProduct(t *testing.T) {
	uc, _, _ := newCatalog()
	ctx := context.Background()
	cat, err := uc.CreateCategory(ctx, dto.CategoryRequest{Name: "Pizzas"})
	require.NoError(t, err)
	assert.Equal(t, "pizzas", cat.Slug)

	p, err := uc.CreateProduct(ctx, dto.CreateProductRequest{
		CategoryID: cat.ID,
		Name:       " Margarita ",
		Price:      decimal.RequireFromString("8.499"),
		Dietary:    dto.DietaryDTO{Vegetarian: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "Margarita", p.Name)
	assert.Equal(t, "8.50", p.Price)
	assert.True(t, p.Available)
	assert.True(t, p.Dietary.Vegetarian)

	_, err = uc.CreateProduct(ctx, dto.CreateProductRequest{Name: "x", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.CreateProduct(ctx, dto.CreateProductRequest{Name: "x", CategoryID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.CreateProduct(ctx, dto.CreateProductRequest{Name: " "})
	assert.ErrorIs(t, err, domain.ErrMissingFields)
}

func TestCatalog_SlugDuplicado(t *testing.T) {
	uc, _, _ := newCatalog()
	_, err := uc.CreateCategory(context.Background(), dto.CategoryRequest{Name: "Postres"})
	require.NoError(t, err)
	_, err = uc.CreateCategory(context.Background(), dto.CategoryRequest{Name: "postres"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCatalog_MenuAgrupaYSeInvalida(t *testing.T) {
	uc, products, _ := newCatalog()
	ctx := context.Background()
	second, err := uc.CreateCategory(ctx, dto.CategoryRequest{Name: "Postres", Position: 2})
	require.NoError(t, err)
	first, err := uc.CreateCategory(ctx, dto.CategoryRequest{Name: "Entrantes", Position: 1})
	require.NoError(t, err)
	off := false
	_, err = uc.CreateProduct(ctx, dto.CreateProductRequest{CategoryID: first.ID, Name: "Bravas", Price: decimal.NewFromInt(4)})
	require.NoError(t, err)
	_, err = uc.CreateProduct(ctx, dto.CreateProductRequest{CategoryID: second.ID, Name: "Flan", Price: decimal.NewFromInt(3), Available: &off})
	require.NoError(t, err)
	_, err = uc.CreateProduct(ctx, dto.CreateProductRequest{Name: "Agua", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)

	menu, err := uc.Menu(ctx)
	require.NoError(t, err)
	require.Len(t, menu.Sections, 2)
	assert.Equal(t, "entrantes", menu.Sections[0].Slug)
	require.Len(t, menu.Sections[0].Products, 1)
	assert.Empty(t, menu.Sections[1].Products, "no disponibles fuera de la carta")
	require.Len(t, menu.Uncategorized, 1)

	// una escritura directa al repositorio no se ve hasta invalidar
	require.NoError(t, products.Create(ctx, &entity.Product{ID: "p-x", CategoryID: second.ID, Name: "Tarta", Available: true}))
	cached, err := uc.Menu(ctx)
	require.NoError(t, err)
	assert.Empty(t, cached.Sections[1].Products)

	on := true
	list, err := uc.ListProducts(ctx, dto.ProductListRequest{CategoryID: second.ID})
	require.NoError(t, err)
	var flanID string
	for _, p := range list.Items {
		if p.Name == "Flan" {
			flanID = p.ID
		}
	}
	require.NotEmpty(t, flanID)
	_, err = uc.UpdateProduct(ctx, flanID, dto.UpdateProductRequest{Available: &on})
	require.NoError(t, err)

	fresh, err := uc.Menu(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh.Sections[1].Products, 2)
}

func TestCatalog_UpdateYDelete(t *testing.T) {
	uc, _, _ := newCatalog()
	ctx := context.Background()
	p, err := uc.CreateProduct(ctx, dto.CreateProductRequest{Name: "Caña", Price: decimal.NewFromInt(2), TrackStock: true, Stock: 5})
	require.NoError(t, err)

	price := decimal.RequireFromString("2.5")
	neg := -3
	_, err = uc.UpdateProduct(ctx, p.ID, dto.UpdateProductRequest{Stock: &neg})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	out, err := uc.UpdateProduct(ctx, p.ID, dto.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "2.50", out.Price)
	assert.Equal(t, 5, out.Stock)

	require.NoError(t, uc.DeleteProduct(ctx, p.ID))
	_, err = uc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, uc.DeleteProduct(ctx, p.ID), domain.ErrNotFound)
}

func TestCatalog_ImportMenu(t *testing.T) {
	uc, products, categories := newCatalog()
	ctx := context.Background()
	_, err := uc.CreateCategory(ctx, dto.CategoryRequest{Name: "Pizzas"})
	require.NoError(t, err)

	csv := "category,name,description,price,vegetarian\n" +
		"Pizzas,Margarita,Tomate y mozzarella,\"8,50\",x\n" +
		"Postres,Tiramisú,,4.00,\n" +
		"Postres,,sin nombre,3.00,\n" +
		"Bebidas,Agua,,gratis,\n"

	res, err := uc.ImportMenu(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Products)
	assert.Equal(t, 1, res.Categories, "Pizzas ya existía")
	assert.Len(t, res.Skipped, 2)

	all, err := products.List(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	cats, err := categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 2)

	menu, err := uc.Menu(ctx)
	require.NoError(t, err)
	var names []string
	for _, s := range menu.Sections {
		for _, p := range s.Products {
			names = append(names, p.Name)
			if p.Name == "Margarita" {
				assert.Equal(t, "8.50", p.Price)
				assert.True(t, p.Dietary.Vegetarian)
			}
		}
	}
	assert.ElementsMatch(t, []string{"Margarita", "Tiramisú"}, names)
}

func TestCatalog_ImportMenuSinColumnas(t *testing.T) {
	uc, _, _ := newCatalog()

	_, err := uc.ImportMenu(context.Background(), strings.NewReader("nombre,precio\nA,1\n"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
