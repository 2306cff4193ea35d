package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
	"github.com/jhoicas/restaurante-api/pkg/jwt"
	"github.com/jhoicas/restaurante-api/pkg/logger"
)

// TokenConfig secretos y duraciones. Access y refresh deben usar secretos distintos.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// Identity datos mínimos de una identidad autenticable.
type Identity struct {
	ID      string
	Kind    string // user | customer
	Role    string
	Email   string
	Name    string
	Surname string
}

// IdentityResolver carga la identidad vigente desde la persistencia.
// Devuelve (nil, nil) si ya no existe.
type IdentityResolver interface {
	Resolve(ctx context.Context, kind, id string) (*Identity, error)
}

// Principal identidad autenticada adjunta a la petición.
type Principal struct {
	ID        string
	Kind      string
	Role      string // rol del token; el guard relee el vigente
	Token     string
	ExpiresAt time.Time
}

// TokenPair par de tokens emitido en login y rotación.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// TokenService emite, verifica y rota tokens, y mantiene la lista de invalidación.
type TokenService struct {
	cfg         TokenConfig
	refreshRepo repository.RefreshTokenRepository
	invalidRepo repository.InvalidatedTokenRepository
	identities  IdentityResolver
	now         func() time.Time
}

// NewTokenService construye el servicio de tokens.
func NewTokenService(
	cfg TokenConfig,
	refreshRepo repository.RefreshTokenRepository,
	invalidRepo repository.InvalidatedTokenRepository,
	identities IdentityResolver,
) *TokenService {
	return &TokenService{
		cfg:         cfg,
		refreshRepo: refreshRepo,
		invalidRepo: invalidRepo,
		identities:  identities,
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Validate comprueba la configuración; se llama al arrancar y aborta si falla.
func (s *TokenService) Validate() error {
	switch {
	case s.cfg.AccessSecret == "" || s.cfg.RefreshSecret == "":
		return fmt.Errorf("%w: JWT_ACCESS_SECRET y JWT_REFRESH_SECRET son obligatorios", domain.ErrConfig)
	case s.cfg.AccessSecret == s.cfg.RefreshSecret:
		return fmt.Errorf("%w: los secretos de access y refresh deben ser distintos", domain.ErrConfig)
	case s.cfg.AccessTTL <= 0 || s.cfg.RefreshTTL <= 0:
		return fmt.Errorf("%w: duraciones de token inválidas", domain.ErrConfig)
	}
	return nil
}

// AccessTTL duración del access token (max-age de la cookie).
func (s *TokenService) AccessTTL() time.Duration { return s.cfg.AccessTTL }

// IssueAccessToken firma un access token. Solo falla por configuración.
func (s *TokenService) IssueAccessToken(id Identity) (string, time.Time, error) {
	return s.issue(s.cfg.AccessSecret, jwt.KindAccess, id, s.cfg.AccessTTL)
}

// IssueRefreshToken firma un refresh token (solo lleva el id de la identidad).
func (s *TokenService) IssueRefreshToken(id Identity) (string, time.Time, error) {
	return s.issue(s.cfg.RefreshSecret, jwt.KindRefresh, Identity{ID: id.ID, Kind: id.Kind}, s.cfg.RefreshTTL)
}

func (s *TokenService) issue(secret, kind string, id Identity, ttl time.Duration) (string, time.Time, error) {
	tok, exp, err := jwt.Generate(jwt.Params{
		Secret:       secret,
		Kind:         kind,
		Subject:      id.ID,
		IdentityKind: id.Kind,
		Role:         id.Role,
		Issuer:       s.cfg.Issuer,
		TTL:          ttl,
		Now:          s.now(),
	})
	if err != nil {
		if errors.Is(err, jwt.ErrEmptySecret) {
			return "", time.Time{}, fmt.Errorf("%w: secreto de %s no configurado", domain.ErrConfig, kind)
		}
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

// Verify valida un token del tipo indicado.
// Errores: domain.ErrTokenExpired, domain.ErrTokenInvalid o domain.ErrConfig.
func (s *TokenService) Verify(token, kind string) (*Principal, error) {
	secret := s.cfg.AccessSecret
	if kind == jwt.KindRefresh {
		secret = s.cfg.RefreshSecret
	}
	claims, err := jwt.Parse(secret, kind, token, s.now())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrExpired):
			return nil, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrEmptySecret):
			return nil, fmt.Errorf("%w: secreto de %s no configurado", domain.ErrConfig, kind)
		default:
			return nil, domain.ErrTokenInvalid
		}
	}
	p := &Principal{
		ID:    claims.Subject,
		Kind:  claims.IdentityKind,
		Role:  claims.Role,
		Token: token,
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// IssuePair emite access + refresh y reemplaza la sesión de la identidad.
func (s *TokenService) IssuePair(ctx context.Context, id Identity) (*TokenPair, error) {
	pair, err := s.newPair(id)
	if err != nil {
		return nil, err
	}
	if err := s.refreshRepo.Upsert(ctx, s.record(id, pair)); err != nil {
		return nil, fmt.Errorf("guardar sesión: %w", err)
	}
	return pair, nil
}

// Rotate cambia un refresh token vigente por un par nuevo.
// El reemplazo es un compare-and-swap sobre la sesión del owner: de dos rotaciones
// concurrentes del mismo token solo una gana; la otra recibe ErrRefreshTokenInvalid.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.Verify(refreshToken, jwt.KindRefresh)
	if err != nil {
		if errors.Is(err, domain.ErrConfig) {
			return nil, err
		}
		return nil, domain.ErrRefreshTokenInvalid
	}
	id, err := s.identities.Resolve(ctx, claims.Kind, claims.ID)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, domain.ErrRefreshTokenInvalid
	}
	pair, err := s.newPair(*id)
	if err != nil {
		return nil, err
	}
	ok, err := s.refreshRepo.Rotate(ctx, id.ID, HashToken(refreshToken), s.record(*id, pair))
	if err != nil {
		return nil, fmt.Errorf("rotar sesión: %w", err)
	}
	if !ok {
		return nil, domain.ErrRefreshTokenInvalid
	}
	return pair, nil
}

// InvalidateAccessToken agrega el token a la lista de invalidación hasta su expiración.
func (s *TokenService) InvalidateAccessToken(ctx context.Context, token, ownerID string, expiresAt time.Time) error {
	return s.invalidRepo.Add(ctx, &entity.InvalidatedToken{
		TokenHash: HashToken(token),
		OwnerID:   ownerID,
		ExpiresAt: expiresAt,
	})
}

// IsInvalidated indica si el token fue revocado por logout.
func (s *TokenService) IsInvalidated(ctx context.Context, token, ownerID string) (bool, error) {
	return s.invalidRepo.Exists(ctx, HashToken(token), ownerID)
}

// RevokeSessions borra la sesión de refresh de la identidad.
func (s *TokenService) RevokeSessions(ctx context.Context, ownerID string) error {
	return s.refreshRepo.DeleteByOwner(ctx, ownerID)
}

// PruneInvalidated elimina de la lista los tokens que ya expiraron por sí solos.
func (s *TokenService) PruneInvalidated(ctx context.Context) (int64, error) {
	return s.invalidRepo.PruneExpired(ctx, s.now())
}

// StartPruner poda la lista de invalidación cada interval hasta que ctx se cancele.
func (s *TokenService) StartPruner(ctx context.Context, interval time.Duration, log *logger.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.PruneInvalidated(ctx)
				if err != nil {
					log.Warn().Err(err).Msg("podar tokens invalidados")
					continue
				}
				if n > 0 {
					log.Debug().Int64("eliminados", n).Msg("tokens invalidados podados")
				}
			}
		}
	}()
}

func (s *TokenService) newPair(id Identity) (*TokenPair, error) {
	access, accessExp, err := s.IssueAccessToken(id)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.IssueRefreshToken(id)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *TokenService) record(id Identity, pair *TokenPair) *entity.RefreshToken {
	return &entity.RefreshToken{
		OwnerID:          id.ID,
		OwnerKind:        id.Kind,
		AccessTokenHash:  HashToken(pair.AccessToken),
		RefreshTokenHash: HashToken(pair.RefreshToken),
		ExpiresAt:        pair.RefreshExpiresAt,
		UpdatedAt:        s.now(),
	}
}

// HashToken devuelve el SHA-256 hex del token; la persistencia nunca guarda el valor plano.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
