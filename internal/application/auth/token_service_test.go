package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/restaurante-api/internal/application/auth"
	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/testutil"
	"github.com/jhoicas/restaurante-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var testTokenCfg = auth.TokenConfig{
	AccessSecret:  "access-secret-test",
	RefreshSecret: "refresh-secret-test",
	AccessTTL:     15 * time.Minute,
	RefreshTTL:    24 * time.Hour,
	Issuer:        "restaurante-test",
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type tokenFixture struct {
	svc       *auth.TokenService
	clock     *clock
	customers *testutil.Customers
	users     *testutil.Users
	refresh   *testutil.RefreshTokens
	invalid   *testutil.InvalidatedTokens
	customer  *entity.Customer
}

func newTokenFixture(t *testing.T) *tokenFixture {
	t.Helper()
	f := &tokenFixture{
		clock:     &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		customers: testutil.NewCustomers(),
		users:     testutil.NewUsers(),
		refresh:   testutil.NewRefreshTokens(),
		invalid:   testutil.NewInvalidatedTokens(),
	}
	f.customer = &entity.Customer{ID: "c-1", Name: "Ana", Surname: "Pérez", Email: "a@x.com"}
	require.NoError(t, f.customers.Create(context.Background(), f.customer))
	dir := auth.NewIdentityDirectory(f.users, f.customers)
	f.svc = auth.NewTokenService(testTokenCfg, f.refresh, f.invalid, dir).WithClock(f.clock.Now)
	return f
}

func (f *tokenFixture) identity() auth.Identity {
	return auth.Identity{ID: f.customer.ID, Kind: entity.IdentityCustomer, Role: entity.RoleCustomer}
}

// ──────────────────────────────────────────────────────────────────────────────
// Emisión y verificación
// ──────────────────────────────────────────────────────────────────────────────

func TestTokenService_RoundTripYExpiracion(t *testing.T) {
	f := newTokenFixture(t)

	tok, exp, err := f.svc.IssueAccessToken(f.identity())
	require.NoError(t, err)
	assert.True(t, exp.Equal(f.clock.Now().Add(15*time.Minute)))

	p, err := f.svc.Verify(tok, jwt.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, f.customer.ID, p.ID)
	assert.Equal(t, entity.IdentityCustomer, p.Kind)
	assert.True(t, p.ExpiresAt.Equal(exp))

	f.clock.Advance(16 * time.Minute)
	_, err = f.svc.Verify(tok, jwt.KindAccess)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestTokenService_RefreshNoSirveComoAccess(t *testing.T) {
	f := newTokenFixture(t)

	rt, _, err := f.svc.IssueRefreshToken(f.identity())
	require.NoError(t, err)

	_, err = f.svc.Verify(rt, jwt.KindAccess)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	p, err := f.svc.Verify(rt, jwt.KindRefresh)
	require.NoError(t, err)
	assert.Empty(t, p.Role, "el refresh solo lleva el id")
}

func TestTokenService_SecretosVaciosEsErrorDeConfiguracion(t *testing.T) {
	svc := auth.NewTokenService(auth.TokenConfig{AccessTTL: time.Minute, RefreshTTL: time.Hour},
		testutil.NewRefreshTokens(), testutil.NewInvalidatedTokens(), nil)

	assert.ErrorIs(t, svc.Validate(), domain.ErrConfig)
	_, _, err := svc.IssueAccessToken(auth.Identity{ID: "x", Kind: entity.IdentityCustomer})
	assert.ErrorIs(t, err, domain.ErrConfig)
	_, err = svc.Rotate(context.Background(), "cualquiera")
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestTokenService_SecretosIgualesEsErrorDeConfiguracion(t *testing.T) {
	cfg := testTokenCfg
	cfg.RefreshSecret = cfg.AccessSecret
	svc := auth.NewTokenService(cfg, nil, nil, nil)
	assert.ErrorIs(t, svc.Validate(), domain.ErrConfig)
}

// ──────────────────────────────────────────────────────────────────────────────
// Rotación
// ──────────────────────────────────────────────────────────────────────────────

func TestTokenService_RotacionReemplazaAlAnterior(t *testing.T) {
	f := newTokenFixture(t)
	ctx := context.Background()

	pair1, err := f.svc.IssuePair(ctx, f.identity())
	require.NoError(t, err)

	pair2, err := f.svc.Rotate(ctx, pair1.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair1.RefreshToken, pair2.RefreshToken)

	_, err = f.svc.Rotate(ctx, pair1.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrRefreshTokenInvalid, "un refresh ya rotado no vuelve a servir")

	_, err = f.svc.Rotate(ctx, pair2.RefreshToken)
	assert.NoError(t, err)
}

func TestTokenService_NuevoLoginInvalidaRefreshAnterior(t *testing.T) {
	f := newTokenFixture(t)
	ctx := context.Background()

	old, err := f.svc.IssuePair(ctx, f.identity())
	require.NoError(t, err)
	_, err = f.svc.IssuePair(ctx, f.identity())
	require.NoError(t, err)

	_, err = f.svc.Rotate(ctx, old.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrRefreshTokenInvalid)
}

func TestTokenService_RotacionesConcurrentesSoloUnaGana(t *testing.T) {
	f := newTokenFixture(t)
	ctx := context.Background()

	pair, err := f.svc.IssuePair(ctx, f.identity())
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Rotate(ctx, pair.RefreshToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrRefreshTokenInvalid)
	}
	assert.Equal(t, 1, ok)
}

func TestTokenService_RotacionDeIdentidadEliminada(t *testing.T) {
	f := newTokenFixture(t)
	ctx := context.Background()

	pair, err := f.svc.IssuePair(ctx, f.identity())
	require.NoError(t, err)
	require.NoError(t, f.customers.Delete(ctx, f.customer.ID))

	_, err = f.svc.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrRefreshTokenInvalid)
}

func TestTokenService_RefreshExpirado(t *testing.T) {
	f := newTokenFixture(t)
	ctx := context.Background()

	pair, err := f.svc.IssuePair(ctx, f.identity())
	require.NoError(t, err)
	f.clock.Advance(25 * time.Hour)

	_, err = f.svc.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrRefreshTokenInvalid)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lista de invalidación
// ──────────────────────────────────────────────────────────────────────────────

func TestTokenService_InvalidacionInmediataYPoda(t *testing.T) {
	f := newTokenFixture(t)
	ctx := context.Background()

	tok, exp, err := f.svc.IssueAccessToken(f.identity())
	require.NoError(t, err)

	invalid, err := f.svc.IsInvalidated(ctx, tok, f.customer.ID)
	require.NoError(t, err)
	assert.False(t, invalid)

	require.NoError(t, f.svc.InvalidateAccessToken(ctx, tok, f.customer.ID, exp))
	require.NoError(t, f.svc.InvalidateAccessToken(ctx, tok, f.customer.ID, exp), "repetir no falla")

	invalid, err = f.svc.IsInvalidated(ctx, tok, f.customer.ID)
	require.NoError(t, err)
	assert.True(t, invalid)

	n, err := f.svc.PruneInvalidated(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "todavía no expiró")

	f.clock.Advance(16 * time.Minute)
	n, err = f.svc.PruneInvalidated(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Zero(t, f.invalid.Len())
}

func TestHashToken_NoGuardaElValorPlano(t *testing.T) {
	h := auth.HashToken("abc")
	assert.Len(t, h, 64)
	assert.NotContains(t, h, "abc")
	assert.Equal(t, h, auth.HashToken("abc"))
}
