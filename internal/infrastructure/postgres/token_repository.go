package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
)

var (
	_ repository.RefreshTokenRepository     = (*RefreshTokenRepo)(nil)
	_ repository.InvalidatedTokenRepository = (*InvalidatedTokenRepo)(nil)
)

// RefreshTokenRepo sesión vigente por identidad.
type RefreshTokenRepo struct {
	q Querier
}

// NewRefreshTokenRepository construye el adaptador de sesiones.
func NewRefreshTokenRepository(q Querier) *RefreshTokenRepo {
	return &RefreshTokenRepo{q: q}
}

// Upsert reemplaza la sesión del owner en una sola sentencia.
func (r *RefreshTokenRepo) Upsert(ctx context.Context, rt *entity.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (owner_id, owner_kind, access_token_hash, refresh_token_hash, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner_id) DO UPDATE SET
			owner_kind = EXCLUDED.owner_kind,
			access_token_hash = EXCLUDED.access_token_hash,
			refresh_token_hash = EXCLUDED.refresh_token_hash,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		rt.OwnerID, rt.OwnerKind, rt.AccessTokenHash, rt.RefreshTokenHash, rt.ExpiresAt, rt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert refresh token: %w", err)
	}
	return nil
}

// Rotate compare-and-swap: solo actualiza si el refresh vigente coincide con el presentado.
func (r *RefreshTokenRepo) Rotate(ctx context.Context, ownerID, presentedHash string, next *entity.RefreshToken) (bool, error) {
	query := `
		UPDATE refresh_tokens SET
			access_token_hash = $3,
			refresh_token_hash = $4,
			expires_at = $5,
			updated_at = $6
		WHERE owner_id = $1 AND refresh_token_hash = $2`
	tag, err := r.q.Exec(ctx, query,
		ownerID, presentedHash, next.AccessTokenHash, next.RefreshTokenHash, next.ExpiresAt, next.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("rotate refresh token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteByOwner cierra la sesión del owner.
func (r *RefreshTokenRepo) DeleteByOwner(ctx context.Context, ownerID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM refresh_tokens WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// InvalidatedTokenRepo lista de invalidación indexada por expiración.
type InvalidatedTokenRepo struct {
	q Querier
}

// NewInvalidatedTokenRepository construye el adaptador.
func NewInvalidatedTokenRepository(q Querier) *InvalidatedTokenRepo {
	return &InvalidatedTokenRepo{q: q}
}

// Add inserta el token; si ya estaba no hace nada.
func (r *InvalidatedTokenRepo) Add(ctx context.Context, t *entity.InvalidatedToken) error {
	query := `
		INSERT INTO invalidated_tokens (token_hash, owner_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, t.TokenHash, t.OwnerID, t.ExpiresAt); err != nil {
		return fmt.Errorf("insert invalidated token: %w", err)
	}
	return nil
}

// Exists indica si el token del owner está en la lista.
func (r *InvalidatedTokenRepo) Exists(ctx context.Context, tokenHash, ownerID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM invalidated_tokens WHERE token_hash = $1 AND owner_id = $2)`,
		tokenHash, ownerID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check invalidated token: %w", err)
	}
	return exists, nil
}

// PruneExpired borra los tokens cuya expiración ya pasó.
func (r *InvalidatedTokenRepo) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM invalidated_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("prune invalidated tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
