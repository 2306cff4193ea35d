package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
)

var _ repository.InvalidatedTokenRepository = (*InvalidatedTokenStore)(nil)

// InvalidatedTokenStore lista de invalidación en Redis. Cada clave vive lo que le queda
// al access token, así la poda la hace el propio TTL.
type InvalidatedTokenStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewInvalidatedTokenStore construye el store con el prefijo por defecto.
func NewInvalidatedTokenStore(client redis.UniversalClient) *InvalidatedTokenStore {
	return &InvalidatedTokenStore{client: client, prefix: "auth:invalidated:", now: time.Now}
}

// WithClock reemplaza el reloj con el que se calcula el TTL (tests).
func (s *InvalidatedTokenStore) WithClock(now func() time.Time) *InvalidatedTokenStore {
	s.now = now
	return s
}

func (s *InvalidatedTokenStore) key(hash string) string {
	return s.prefix + hash
}

// Add guarda el hash con TTL = tiempo restante. Un token ya vencido no se guarda.
func (s *InvalidatedTokenStore) Add(ctx context.Context, t *entity.InvalidatedToken) error {
	ttl := t.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.key(t.TokenHash), t.OwnerID, ttl).Err(); err != nil {
		return fmt.Errorf("redis set invalidated token: %w", err)
	}
	return nil
}

// Exists indica si el token fue invalidado para ese owner.
func (s *InvalidatedTokenStore) Exists(ctx context.Context, tokenHash, ownerID string) (bool, error) {
	owner, err := s.client.Get(ctx, s.key(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get invalidated token: %w", err)
	}
	return owner == ownerID, nil
}

// PruneExpired no hace nada: Redis expira las claves solo.
func (s *InvalidatedTokenStore) PruneExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
