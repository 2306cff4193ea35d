package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
)

// FederatedProfile datos que entrega un proveedor OAuth tras el callback.
type FederatedProfile struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	DisplayName   string
}

// SessionUseCase registro, login, refresh, logout y login federado.
type SessionUseCase struct {
	users      repository.UserRepository
	customers  repository.CustomerRepository
	tokens     *TokenService
	bcryptCost int
	dummyHash  string
}

// NewSessionUseCase construye el caso de uso de sesiones.
func NewSessionUseCase(
	users repository.UserRepository,
	customers repository.CustomerRepository,
	tokens *TokenService,
	bcryptCost int,
) *SessionUseCase {
	// hash de referencia para igualar el tiempo de respuesta cuando el email no existe
	dummy, _ := HashPassword(uuid.NewString(), bcryptCost)
	return &SessionUseCase{
		users:      users,
		customers:  customers,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
	}
}

// Register crea un cliente con contraseña. No inicia sesión.
func (uc *SessionUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.RegisterResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Surname = strings.TrimSpace(in.Surname)
	email := NormalizeEmail(in.Email)
	if in.Name == "" || in.Surname == "" || email == "" || in.Password == "" {
		return nil, domain.ErrMissingFields
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email", domain.ErrInvalidInput)
	}
	existing, err := uc.customers.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := HashPassword(in.Password, uc.bcryptCost)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, MinPasswordLength)
		}
		return nil, err
	}
	now := time.Now()
	c := &entity.Customer{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Surname:      in.Surname,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	return &dto.RegisterResponse{ID: c.ID}, nil
}

// Login verifica credenciales del tipo de identidad indicado y emite el par de tokens.
// Cualquier fallo de credenciales devuelve ErrInvalidCredentials sin distinguir la causa.
func (uc *SessionUseCase) Login(ctx context.Context, kind string, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrMissingFields
	}
	id, hash, err := uc.lookupCredentials(ctx, kind, email)
	if err != nil {
		return nil, err
	}
	if id == nil || hash == "" {
		CheckPassword(uc.dummyHash, in.Password)
		return nil, domain.ErrInvalidCredentials
	}
	if !CheckPassword(hash, in.Password) {
		return nil, domain.ErrInvalidCredentials
	}
	return uc.startSession(ctx, *id)
}

func (uc *SessionUseCase) lookupCredentials(ctx context.Context, kind, email string) (*Identity, string, error) {
	switch kind {
	case entity.IdentityUser:
		u, err := uc.users.GetByEmail(ctx, email)
		if err != nil || u == nil {
			return nil, "", err
		}
		return userIdentity(u), u.PasswordHash, nil
	case entity.IdentityCustomer:
		c, err := uc.customers.GetByEmail(ctx, email)
		if err != nil || c == nil {
			return nil, "", err
		}
		return customerIdentity(c), c.PasswordHash, nil
	}
	return nil, "", fmt.Errorf("%w: tipo de identidad %q", domain.ErrInvalidInput, kind)
}

// Refresh rota el refresh token. Cualquier fallo obliga a un login completo.
func (uc *SessionUseCase) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, domain.ErrRefreshTokenInvalid
	}
	pair, err := uc.tokens.Rotate(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return toTokenResponse(pair), nil
}

// Logout borra la sesión de refresh e invalida el access token presentado.
// Repetirlo no falla.
func (uc *SessionUseCase) Logout(ctx context.Context, p Principal) error {
	if err := uc.tokens.RevokeSessions(ctx, p.ID); err != nil {
		return fmt.Errorf("revocar sesión: %w", err)
	}
	if p.Token == "" {
		return nil
	}
	if err := uc.tokens.InvalidateAccessToken(ctx, p.Token, p.ID, p.ExpiresAt); err != nil {
		return fmt.Errorf("invalidar token: %w", err)
	}
	return nil
}

// FederatedLogin inicia sesión con una identidad externa. Busca solo por (proveedor, subject):
// si no existe crea un cliente sin contraseña. Nunca fusiona con una cuenta existente por email;
// la vinculación es explícita (LinkProvider).
func (uc *SessionUseCase) FederatedLogin(ctx context.Context, fp FederatedProfile) (*dto.LoginResponse, error) {
	if fp.Provider == "" || fp.Subject == "" {
		return nil, domain.ErrMissingFields
	}
	c, err := uc.customers.GetByExternalID(ctx, fp.Provider, fp.Subject)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c, err = uc.createFederated(ctx, fp)
		if err != nil {
			return nil, err
		}
	}
	return uc.startSession(ctx, *customerIdentity(c))
}

func (uc *SessionUseCase) createFederated(ctx context.Context, fp FederatedProfile) (*entity.Customer, error) {
	name, surname := SplitDisplayName(fp.DisplayName)
	email := NormalizeEmail(fp.Email)
	if email != "" {
		// el email queda libre para la cuenta que ya lo usa
		owner, err := uc.customers.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if owner != nil {
			email = ""
		}
	}
	now := time.Now()
	c := &entity.Customer{
		ID:          uuid.New().String(),
		Name:        name,
		Surname:     surname,
		Email:       email,
		ExternalIDs: map[string]string{fp.Provider: fp.Subject},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// LinkProvider vincula una identidad externa a un cliente autenticado.
// El proveedor debe informar el mismo email, verificado.
func (uc *SessionUseCase) LinkProvider(ctx context.Context, customerID string, fp FederatedProfile) error {
	c, err := uc.customers.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	if !fp.EmailVerified || c.Email == "" || NormalizeEmail(fp.Email) != c.Email {
		return fmt.Errorf("%w: el email verificado del proveedor no coincide con la cuenta", domain.ErrConflict)
	}
	if current, ok := c.ExternalIDs[fp.Provider]; ok && current != fp.Subject {
		return fmt.Errorf("%w: la cuenta ya tiene otra identidad de %s", domain.ErrConflict, fp.Provider)
	}
	return uc.customers.LinkExternalID(ctx, customerID, fp.Provider, fp.Subject)
}

func (uc *SessionUseCase) startSession(ctx context.Context, id Identity) (*dto.LoginResponse, error) {
	pair, err := uc.tokens.IssuePair(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		TokenResponse: *toTokenResponse(pair),
		User:          ToProfile(id),
	}, nil
}

// ToProfile convierte la identidad en el DTO de perfil.
func ToProfile(id Identity) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:      id.ID,
		Kind:    id.Kind,
		Name:    id.Name,
		Surname: id.Surname,
		Email:   id.Email,
		Role:    id.Role,
	}
}

func toTokenResponse(p *TokenPair) *dto.TokenResponse {
	return &dto.TokenResponse{
		Token:            p.AccessToken,
		ExpiresAt:        p.AccessExpiresAt,
		RefreshToken:     p.RefreshToken,
		RefreshExpiresAt: p.RefreshExpiresAt,
	}
}

// NormalizeEmail recorta y pasa a minúsculas.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SplitDisplayName separa "Nombre Apellidos" en nombre y apellidos.
func SplitDisplayName(display string) (string, string) {
	parts := strings.Fields(display)
	switch len(parts) {
	case 0:
		return "Cliente", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
