package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/domain"
)

// columnas del CSV de carta; las dietéticas son opcionales
var menuColumns = []string{"category", "name", "description", "price", "vegetarian", "vegan", "gluten_free", "spicy"}

// ImportResult resumen de una importación de carta.
type ImportResult struct {
	Categories int
	Products   int
	Skipped    []string // "línea N: motivo"
}

// ImportMenu carga productos desde un CSV con cabecera (category,name,description,price[,vegetarian,vegan,gluten_free,spicy]).
// Las categorías se reutilizan por slug o se crean. Una fila inválida se omite y se informa.
// El lector ya debe entregar UTF-8.
func (uc *CatalogUseCase) ImportMenu(ctx context.Context, r io.Reader) (*ImportResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: cabecera del CSV: %v", domain.ErrInvalidInput, err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range menuColumns[:4] {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: falta la columna %q", domain.ErrInvalidInput, col)
		}
	}

	res := &ImportResult{}
	categoryBySlug := map[string]string{}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("línea %d: %v", line, err))
			continue
		}
		field := func(col string) string {
			if i, ok := idx[col]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}

		price, err := decimal.NewFromString(strings.ReplaceAll(field("price"), ",", "."))
		if err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("línea %d: precio %q", line, field("price")))
			continue
		}

		categoryID := ""
		if name := field("category"); name != "" {
			categoryID, err = uc.ensureCategory(ctx, name, categoryBySlug, res)
			if err != nil {
				return res, err
			}
		}

		_, err = uc.CreateProduct(ctx, dto.CreateProductRequest{
			CategoryID:  categoryID,
			Name:        field("name"),
			Description: field("description"),
			Price:       price,
			Dietary: dto.DietaryDTO{
				Vegetarian: flag(field("vegetarian")),
				Vegan:      flag(field("vegan")),
				GlutenFree: flag(field("gluten_free")),
				Spicy:      flag(field("spicy")),
			},
		})
		if err != nil {
			if errors.Is(err, domain.ErrMissingFields) || errors.Is(err, domain.ErrInvalidInput) {
				res.Skipped = append(res.Skipped, fmt.Sprintf("línea %d: %v", line, err))
				continue
			}
			return res, err
		}
		res.Products++
	}
	return res, nil
}

func (uc *CatalogUseCase) ensureCategory(ctx context.Context, name string, cache map[string]string, res *ImportResult) (string, error) {
	slug := Slugify(name)
	if slug == "" {
		return "", nil
	}
	if id, ok := cache[slug]; ok {
		return id, nil
	}
	existing, err := uc.categories.GetBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	if existing != nil {
		cache[slug] = existing.ID
		return existing.ID, nil
	}
	created, err := uc.CreateCategory(ctx, dto.CategoryRequest{Name: name, Position: len(cache)})
	if err != nil {
		return "", err
	}
	res.Categories++
	cache[slug] = created.ID
	return created.ID, nil
}

func flag(s string) bool {
	switch strings.ToLower(s) {
	case "x", "si", "sí", "yes", "y":
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}
