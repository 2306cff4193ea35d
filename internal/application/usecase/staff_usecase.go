package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/restaurante-api/internal/application/auth"
	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
)

// StaffUseCase gestión del staff. Las rutas solo las exponen a administradores.
// Un cambio de rol rige en la siguiente petición: el guard relee el rol vigente.
type StaffUseCase struct {
	repo       repository.UserRepository
	tokens     SessionRevoker
	bcryptCost int
}

// NewStaffUseCase construye el caso de uso. tokens puede ser nil.
func NewStaffUseCase(repo repository.UserRepository, tokens SessionRevoker, bcryptCost int) *StaffUseCase {
	return &StaffUseCase{repo: repo, tokens: tokens, bcryptCost: bcryptCost}
}

// Create da de alta un miembro del staff con el mismo hashing que el registro de clientes.
func (uc *StaffUseCase) Create(ctx context.Context, in dto.CreateStaffRequest) (*dto.StaffResponse, error) {
	name := strings.TrimSpace(in.Name)
	surname := strings.TrimSpace(in.Surname)
	email := auth.NormalizeEmail(in.Email)
	if name == "" || surname == "" || email == "" || in.Password == "" {
		return nil, domain.ErrMissingFields
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email", domain.ErrInvalidInput)
	}
	if !entity.IsStaffRole(in.Role) {
		return nil, fmt.Errorf("%w: role", domain.ErrInvalidInput)
	}
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := auth.HashPassword(in.Password, uc.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, auth.MinPasswordLength)
	}
	now := time.Now()
	u := &entity.User{
		ID:           uuid.New().String(),
		Name:         name,
		Surname:      surname,
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	out := toStaffResponse(u)
	return &out, nil
}

// Get miembro por ID.
func (uc *StaffUseCase) Get(ctx context.Context, id string) (*dto.StaffResponse, error) {
	u, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toStaffResponse(u)
	return &out, nil
}

// List staff paginado.
func (uc *StaffUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.StaffListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StaffResponse, 0, len(list))
	for _, u := range list {
		items = append(items, toStaffResponse(u))
	}
	return &dto.StaffListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update perfil, rol o contraseña. Un cambio de contraseña cierra las sesiones del miembro.
func (uc *StaffUseCase) Update(ctx context.Context, id string, in dto.UpdateStaffRequest) (*dto.StaffResponse, error) {
	u, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyNames(&u.Name, &u.Surname, in.Name, in.Surname); err != nil {
		return nil, err
	}
	if in.Role != nil {
		if !entity.IsStaffRole(*in.Role) {
			return nil, fmt.Errorf("%w: role", domain.ErrInvalidInput)
		}
		u.Role = *in.Role
	}
	passwordChanged := false
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password, uc.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, auth.MinPasswordLength)
		}
		u.PasswordHash = hash
		passwordChanged = true
	}
	u.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	if passwordChanged && uc.tokens != nil {
		if err := uc.tokens.RevokeSessions(ctx, u.ID); err != nil {
			return nil, err
		}
	}
	out := toStaffResponse(u)
	return &out, nil
}

// Delete elimina a un miembro. Un administrador no puede eliminarse a sí mismo.
func (uc *StaffUseCase) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return fmt.Errorf("%w: no puede eliminar su propia cuenta", domain.ErrConflict)
	}
	if uc.tokens != nil {
		if err := uc.tokens.RevokeSessions(ctx, id); err != nil {
			return err
		}
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *StaffUseCase) load(ctx context.Context, id string) (*entity.User, error) {
	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func toStaffResponse(u *entity.User) dto.StaffResponse {
	return dto.StaffResponse{
		ID:        u.ID,
		Name:      u.Name,
		Surname:   u.Surname,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
