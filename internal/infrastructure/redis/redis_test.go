package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/restaurante-api/internal/application/auth"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	infraredis "github.com/jhoicas/restaurante-api/internal/infrastructure/redis"
	"github.com/jhoicas/restaurante-api/internal/testutil"
	"github.com/jhoicas/restaurante-api/pkg/config"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// ──────────────────────────────────────────────────────────────────────────────
// Lista de invalidación
// ──────────────────────────────────────────────────────────────────────────────

func TestInvalidatedTokenStore_AgregaConTTLDelTiempoRestante(t *testing.T) {
	mr, client := newRedis(t)
	store := infraredis.NewInvalidatedTokenStore(client).WithClock(func() time.Time { return t0 })
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, &entity.InvalidatedToken{
		TokenHash: "h1", OwnerID: "c-1", ExpiresAt: t0.Add(10 * time.Minute),
	}))

	assert.Equal(t, 10*time.Minute, mr.TTL("auth:invalidated:h1"))
	ok, err := store.Exists(ctx, "h1", "c-1")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(11 * time.Minute)
	ok, err = store.Exists(ctx, "h1", "c-1")
	require.NoError(t, err)
	assert.False(t, ok, "la clave expira con el token")
}

func TestInvalidatedTokenStore_OtroOwnerNoCoincide(t *testing.T) {
	_, client := newRedis(t)
	store := infraredis.NewInvalidatedTokenStore(client).WithClock(func() time.Time { return t0 })
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, &entity.InvalidatedToken{
		TokenHash: "h1", OwnerID: "c-1", ExpiresAt: t0.Add(time.Minute),
	}))

	ok, err := store.Exists(ctx, "h1", "c-2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Exists(ctx, "desconocido", "c-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidatedTokenStore_TokenVencidoNoSeGuarda(t *testing.T) {
	mr, client := newRedis(t)
	store := infraredis.NewInvalidatedTokenStore(client).WithClock(func() time.Time { return t0 })

	require.NoError(t, store.Add(context.Background(), &entity.InvalidatedToken{
		TokenHash: "h1", OwnerID: "c-1", ExpiresAt: t0,
	}))

	assert.Empty(t, mr.Keys())
	n, err := store.PruneExpired(context.Background(), t0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// El logout invalida el access token en el acto también con el store de Redis.
func TestInvalidatedTokenStore_InvalidacionInmediataConTokenService(t *testing.T) {
	_, client := newRedis(t)
	now := func() time.Time { return t0 }
	store := infraredis.NewInvalidatedTokenStore(client).WithClock(now)
	svc := auth.NewTokenService(auth.TokenConfig{
		AccessSecret: "access-secret", RefreshSecret: "refresh-secret",
		AccessTTL: 15 * time.Minute, RefreshTTL: 24 * time.Hour, Issuer: "test",
	}, testutil.NewRefreshTokens(), store, nil).WithClock(now)
	ctx := context.Background()

	token, exp, err := svc.IssueAccessToken(auth.Identity{ID: "c-1", Kind: entity.IdentityCustomer, Role: entity.RoleCustomer})
	require.NoError(t, err)
	p, err := svc.Verify(token, "access")
	require.NoError(t, err)
	invalid, err := svc.IsInvalidated(ctx, token, p.ID)
	require.NoError(t, err)
	require.False(t, invalid)

	require.NoError(t, svc.InvalidateAccessToken(ctx, token, p.ID, exp))

	invalid, err = svc.IsInvalidated(ctx, token, p.ID)
	require.NoError(t, err)
	assert.True(t, invalid)
	// repetir el logout no falla
	assert.NoError(t, svc.InvalidateAccessToken(ctx, token, p.ID, exp))
}

// ──────────────────────────────────────────────────────────────────────────────
// Rate limit de login
// ──────────────────────────────────────────────────────────────────────────────

func TestLoginRateLimiter_AgotaYRecarga(t *testing.T) {
	mr, client := newRedis(t)
	now := t0
	limiter := infraredis.NewLoginRateLimiter(client, config.RateLimitConfig{Capacity: 3, RefillPerSec: 1}).
		WithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 2; i >= 0; i-- {
		d, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, int64(i), d.Remaining)
	}

	d, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Second, d.RetryAfter)
	assert.Equal(t, 60*time.Second, mr.TTL("ratelimit:login:1.2.3.4"))

	// otra clave tiene su propio bucket
	d, err = limiter.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	now = now.Add(1500 * time.Millisecond)
	d, err = limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Zero(t, d.Remaining)

	d, err = limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 500*time.Millisecond, d.RetryAfter)
}

func TestLoginRateLimiter_SinRecarga(t *testing.T) {
	_, client := newRedis(t)
	limiter := infraredis.NewLoginRateLimiter(client, config.RateLimitConfig{Capacity: 1}).
		WithClock(func() time.Time { return t0 })
	ctx := context.Background()

	d, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, limiter.Capacity())

	d, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Zero(t, d.RetryAfter)
}
