package usecase

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
)

const menuCacheKey = "menu"

// CatalogUseCase CRUD de productos y categorías, y la carta pública cacheada.
// Toda escritura invalida la carta.
type CatalogUseCase struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	menu       *gocache.Cache
}

// NewCatalogUseCase construye el caso de uso. menuTTL <= 0 usa 5 minutos.
func NewCatalogUseCase(products repository.ProductRepository, categories repository.CategoryRepository, menuTTL time.Duration) *CatalogUseCase {
	if menuTTL <= 0 {
		menuTTL = 5 * time.Minute
	}
	return &CatalogUseCase{
		products:   products,
		categories: categories,
		menu:       gocache.New(menuTTL, 2*menuTTL),
	}
}

// Menu productos disponibles agrupados por categoría, en el orden de Position.
func (uc *CatalogUseCase) Menu(ctx context.Context) (*dto.MenuResponse, error) {
	if v, ok := uc.menu.Get(menuCacheKey); ok {
		return v.(*dto.MenuResponse), nil
	}
	cats, err := uc.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	products, err := uc.products.List(ctx, repository.ProductFilter{OnlyAvailable: true})
	if err != nil {
		return nil, err
	}
	out := &dto.MenuResponse{Sections: make([]dto.MenuSection, 0, len(cats))}
	idx := make(map[string]int, len(cats))
	for _, c := range cats {
		idx[c.ID] = len(out.Sections)
		out.Sections = append(out.Sections, dto.MenuSection{
			ID: c.ID, Name: c.Name, Slug: c.Slug, Products: []dto.ProductResponse{},
		})
	}
	for _, p := range products {
		if i, ok := idx[p.CategoryID]; ok {
			out.Sections[i].Products = append(out.Sections[i].Products, toProductResponse(p))
			continue
		}
		out.Uncategorized = append(out.Uncategorized, toProductResponse(p))
	}
	uc.menu.SetDefault(menuCacheKey, out)
	return out, nil
}

func (uc *CatalogUseCase) invalidateMenu() {
	uc.menu.Delete(menuCacheKey)
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify "Platos Típicos" -> "platos-tipicos".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		plain = strings.ToLower(s)
	}
	return strings.Trim(slugSeparators.ReplaceAllString(plain, "-"), "-")
}

func toDietaryDTO(d entity.DietaryFlags) dto.DietaryDTO {
	return dto.DietaryDTO{Vegetarian: d.Vegetarian, Vegan: d.Vegan, GlutenFree: d.GlutenFree, Spicy: d.Spicy}
}

func fromDietaryDTO(d dto.DietaryDTO) entity.DietaryFlags {
	return entity.DietaryFlags{Vegetarian: d.Vegetarian, Vegan: d.Vegan, GlutenFree: d.GlutenFree, Spicy: d.Spicy}
}
