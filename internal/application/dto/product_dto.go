package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un plato o bebida.
type CreateProductRequest struct {
	CategoryID  string          `json:"category_id"`
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Available   *bool           `json:"available"`
	Dietary     DietaryDTO      `json:"dietary"`
	TrackStock  bool            `json:"track_stock"`
	Stock       int             `json:"stock"`
}

// UpdateProductRequest campos nil no cambian.
type UpdateProductRequest struct {
	CategoryID  *string          `json:"category_id"`
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"image_url"`
	Available   *bool            `json:"available"`
	Dietary     *DietaryDTO      `json:"dietary"`
	TrackStock  *bool            `json:"track_stock"`
	Stock       *int             `json:"stock"`
}

// ProductResponse salida de un producto. Price con dos decimales.
type ProductResponse struct {
	ID          string     `json:"id"`
	CategoryID  string     `json:"category_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       string     `json:"price"`
	ImageURL    string     `json:"image_url,omitempty"`
	Available   bool       `json:"available"`
	Dietary     DietaryDTO `json:"dietary"`
	TrackStock  bool       `json:"track_stock"`
	Stock       int        `json:"stock"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ProductListRequest filtros de GET /api/products.
type ProductListRequest struct {
	PageRequest
	CategoryID string `query:"category_id"`
}

// ProductListResponse listado paginado.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// MenuSection categoría con sus productos disponibles.
type MenuSection struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Slug     string            `json:"slug"`
	Products []ProductResponse `json:"products"`
}

// MenuResponse carta pública. Los productos sin categoría van en Uncategorized.
type MenuResponse struct {
	Sections      []MenuSection     `json:"sections"`
	Uncategorized []ProductResponse `json:"uncategorized,omitempty"`
}

// CategoryRequest entrada para crear una categoría. Slug se deriva del nombre si viene vacío.
type CategoryRequest struct {
	Name     string `json:"name" validate:"required"`
	Slug     string `json:"slug"`
	Position int    `json:"position"`
}

// UpdateCategoryRequest campos nil no cambian.
type UpdateCategoryRequest struct {
	Name     *string `json:"name"`
	Slug     *string `json:"slug"`
	Position *int    `json:"position"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
