package repository

import (
	"context"
	"time"

	"github.com/jhoicas/restaurante-api/internal/domain/entity"
)

// RefreshTokenRepository guarda la sesión vigente de cada identidad (una fila por owner).
type RefreshTokenRepository interface {
	// Upsert reemplaza la sesión del owner (último en escribir gana).
	Upsert(ctx context.Context, rt *entity.RefreshToken) error
	// Rotate reemplaza la sesión solo si el refresh vigente es presentedHash.
	// Devuelve false si no había coincidencia (token ya rotado o sesión cerrada).
	Rotate(ctx context.Context, ownerID, presentedHash string, next *entity.RefreshToken) (bool, error)
	DeleteByOwner(ctx context.Context, ownerID string) error
}

// InvalidatedTokenRepository lista de access tokens revocados por logout.
type InvalidatedTokenRepository interface {
	// Add es idempotente: repetir el mismo token no falla.
	Add(ctx context.Context, t *entity.InvalidatedToken) error
	Exists(ctx context.Context, tokenHash, ownerID string) (bool, error)
	// PruneExpired borra los registros vencidos y devuelve cuántos eliminó.
	PruneExpired(ctx context.Context, now time.Time) (int64, error)
}
