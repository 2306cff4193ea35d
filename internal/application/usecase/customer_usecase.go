package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/restaurante-api/internal/application/auth"
	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
)

// CustomerUseCase gestión de clientes (back office) y autoservicio del perfil.
type CustomerUseCase struct {
	repo       repository.CustomerRepository
	tokens     SessionRevoker
	bcryptCost int
}

// SessionRevoker cierra las sesiones de una identidad (lo implementa auth.TokenService).
type SessionRevoker interface {
	RevokeSessions(ctx context.Context, ownerID string) error
}

// NewCustomerUseCase construye el caso de uso. tokens puede ser nil.
func NewCustomerUseCase(repo repository.CustomerRepository, tokens SessionRevoker, bcryptCost int) *CustomerUseCase {
	return &CustomerUseCase{repo: repo, tokens: tokens, bcryptCost: bcryptCost}
}

// List clientes paginados.
func (uc *CustomerUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.CustomerListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		items = append(items, toCustomerResponse(c))
	}
	return &dto.CustomerListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Get cliente por ID.
func (uc *CustomerUseCase) Get(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toCustomerResponse(c)
	return &out, nil
}

// Update edición desde el back office. Un email nuevo debe estar libre.
func (uc *CustomerUseCase) Update(ctx context.Context, id string, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyNames(&c.Name, &c.Surname, in.Name, in.Surname); err != nil {
		return nil, err
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		email := auth.NormalizeEmail(*in.Email)
		if email != c.Email {
			if err := uc.checkEmailFree(ctx, email, c.ID); err != nil {
				return nil, err
			}
			c.Email = email
		}
	}
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	out := toCustomerResponse(c)
	return &out, nil
}

// Delete elimina al cliente; su sesión y sus identidades externas caen en cascada.
func (uc *CustomerUseCase) Delete(ctx context.Context, id string) error {
	if uc.tokens != nil {
		if err := uc.tokens.RevokeSessions(ctx, id); err != nil {
			return err
		}
	}
	return uc.repo.Delete(ctx, id)
}

// UpdateProfile PUT /api/me. El cambio de contraseña exige la actual si existía.
func (uc *CustomerUseCase) UpdateProfile(ctx context.Context, id string, in dto.UpdateProfileRequest) (*dto.CustomerResponse, error) {
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyNames(&c.Name, &c.Surname, in.Name, in.Surname); err != nil {
		return nil, err
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.NewPassword != "" {
		if c.HasPassword() && !auth.CheckPassword(c.PasswordHash, in.CurrentPassword) {
			return nil, domain.ErrInvalidCredentials
		}
		hash, err := auth.HashPassword(in.NewPassword, uc.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, auth.MinPasswordLength)
		}
		c.PasswordHash = hash
	}
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	out := toCustomerResponse(c)
	return &out, nil
}

func (uc *CustomerUseCase) load(ctx context.Context, id string) (*entity.Customer, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (uc *CustomerUseCase) checkEmailFree(ctx context.Context, email, selfID string) error {
	if email == "" {
		return nil
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email", domain.ErrInvalidInput)
	}
	other, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if other != nil && other.ID != selfID {
		return domain.ErrEmailAlreadyExists
	}
	return nil
}

// applyNames nombre y apellido no pueden quedar vacíos.
func applyNames(name, surname *string, newName, newSurname *string) error {
	if newName != nil {
		v := strings.TrimSpace(*newName)
		if v == "" {
			return domain.ErrMissingFields
		}
		*name = v
	}
	if newSurname != nil {
		v := strings.TrimSpace(*newSurname)
		if v == "" {
			return domain.ErrMissingFields
		}
		*surname = v
	}
	return nil
}

func toCustomerResponse(c *entity.Customer) dto.CustomerResponse {
	providers := make([]string, 0, len(c.ExternalIDs))
	for p := range c.ExternalIDs {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return dto.CustomerResponse{
		ID:          c.ID,
		Name:        c.Name,
		Surname:     c.Surname,
		Email:       c.Email,
		Phone:       c.Phone,
		HasPassword: c.HasPassword(),
		Providers:   providers,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
