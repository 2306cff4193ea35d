package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
)

// CreateCategory crea una categoría. ErrConflict si el slug ya existe.
func (uc *CatalogUseCase) CreateCategory(ctx context.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrMissingFields
	}
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	c := &entity.Category{
		ID:        uuid.New().String(),
		Name:      name,
		Slug:      slug,
		Position:  in.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	uc.invalidateMenu()
	out := toCategoryResponse(c)
	return &out, nil
}

// GetCategory obtiene una categoría por ID.
func (uc *CatalogUseCase) GetCategory(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	out := toCategoryResponse(c)
	return &out, nil
}

// UpdateCategory actualiza los campos presentes.
func (uc *CatalogUseCase) UpdateCategory(ctx context.Context, id string, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrMissingFields
		}
		c.Name = name
	}
	if in.Slug != nil {
		slug := Slugify(*in.Slug)
		if slug == "" {
			return nil, domain.ErrInvalidInput
		}
		c.Slug = slug
	}
	if in.Position != nil {
		c.Position = *in.Position
	}
	c.UpdatedAt = time.Now()
	if err := uc.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	uc.invalidateMenu()
	out := toCategoryResponse(c)
	return &out, nil
}

// ListCategories categorías en orden de la carta.
func (uc *CatalogUseCase) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCategoryResponse(c))
	}
	return out, nil
}

// DeleteCategory elimina la categoría; sus productos quedan sin categoría.
func (uc *CatalogUseCase) DeleteCategory(ctx context.Context, id string) error {
	if err := uc.categories.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidateMenu()
	return nil
}

func toCategoryResponse(c *entity.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		Position:  c.Position,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
