package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
)

// CreateProduct crea un producto. Available es true si no se indica.
func (uc *CatalogUseCase) CreateProduct(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrMissingFields
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price", domain.ErrInvalidInput)
	}
	if in.Stock < 0 {
		return nil, fmt.Errorf("%w: stock", domain.ErrInvalidInput)
	}
	if err := uc.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	available := true
	if in.Available != nil {
		available = *in.Available
	}
	now := time.Now()
	p := &entity.Product{
		ID:          uuid.New().String(),
		CategoryID:  in.CategoryID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price.Round(2),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Available:   available,
		Dietary:     fromDietaryDTO(in.Dietary),
		TrackStock:  in.TrackStock,
		Stock:       in.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.products.Create(ctx, p); err != nil {
		return nil, err
	}
	uc.invalidateMenu()
	out := toProductResponse(p)
	return &out, nil
}

// GetProduct obtiene un producto por ID.
func (uc *CatalogUseCase) GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toProductResponse(p)
	return &out, nil
}

// UpdateProduct actualiza los campos presentes.
func (uc *CatalogUseCase) UpdateProduct(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := uc.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		if err := uc.checkCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = *in.CategoryID
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrMissingFields
		}
		p.Name = name
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price", domain.ErrInvalidInput)
		}
		p.Price = in.Price.Round(2)
	}
	if in.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.Available != nil {
		p.Available = *in.Available
	}
	if in.Dietary != nil {
		p.Dietary = fromDietaryDTO(*in.Dietary)
	}
	if in.TrackStock != nil {
		p.TrackStock = *in.TrackStock
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, fmt.Errorf("%w: stock", domain.ErrInvalidInput)
		}
		p.Stock = *in.Stock
	}
	p.UpdatedAt = time.Now()
	if err := uc.products.Update(ctx, p); err != nil {
		return nil, err
	}
	uc.invalidateMenu()
	out := toProductResponse(p)
	return &out, nil
}

// ListProducts listado del back office, incluye no disponibles.
func (uc *CatalogUseCase) ListProducts(ctx context.Context, in dto.ProductListRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	list, err := uc.products.List(ctx, repository.ProductFilter{
		CategoryID: in.CategoryID,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// DeleteProduct elimina un producto. Los pedidos conservan su snapshot.
func (uc *CatalogUseCase) DeleteProduct(ctx context.Context, id string) error {
	if err := uc.products.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidateMenu()
	return nil
}

func (uc *CatalogUseCase) loadProduct(ctx context.Context, id string) (*entity.Product, error) {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (uc *CatalogUseCase) checkCategory(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: category_id", domain.ErrInvalidInput)
	}
	return nil
}

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		ImageURL:    p.ImageURL,
		Available:   p.Available,
		Dietary:     toDietaryDTO(p.Dietary),
		TrackStock:  p.TrackStock,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
