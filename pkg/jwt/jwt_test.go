package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/restaurante-api/pkg/jwt"
)

const (
	testAccessSecret  = "test-access-secret"
	testRefreshSecret = "test-refresh-secret"
	testSubject       = "00000000-0000-0000-0000-000000000001"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func issue(t *testing.T, secret, kind string, ttl time.Duration) string {
	t.Helper()
	tok, _, err := pkgjwt.Generate(pkgjwt.Params{
		Secret:       secret,
		Kind:         kind,
		Subject:      testSubject,
		IdentityKind: "customer",
		Role:         "customer",
		Issuer:       "restaurante-test",
		TTL:          ttl,
		Now:          t0,
	})
	require.NoError(t, err)
	return tok
}

func TestGenerateAndParse_RoundTrip(t *testing.T) {
	tok := issue(t, testAccessSecret, pkgjwt.KindAccess, 15*time.Minute)

	claims, err := pkgjwt.Parse(testAccessSecret, pkgjwt.KindAccess, tok, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, testSubject, claims.Subject)
	assert.Equal(t, "customer", claims.IdentityKind)
	assert.Equal(t, "customer", claims.Role)
	assert.NotEmpty(t, claims.ID, "cada token lleva jti")
}

func TestGenerate_ExpiracionDevuelta(t *testing.T) {
	_, exp, err := pkgjwt.Generate(pkgjwt.Params{
		Secret: testAccessSecret, Kind: pkgjwt.KindAccess, Subject: testSubject, TTL: time.Hour, Now: t0,
	})
	require.NoError(t, err)
	assert.True(t, exp.Equal(t0.Add(time.Hour)))
}

func TestGenerate_DosEmisionesDistintas(t *testing.T) {
	a := issue(t, testAccessSecret, pkgjwt.KindAccess, time.Minute)
	b := issue(t, testAccessSecret, pkgjwt.KindAccess, time.Minute)
	assert.NotEqual(t, a, b)
}

func TestParse_Expirado(t *testing.T) {
	tok := issue(t, testAccessSecret, pkgjwt.KindAccess, 15*time.Minute)

	_, err := pkgjwt.Parse(testAccessSecret, pkgjwt.KindAccess, tok, t0.Add(16*time.Minute))
	assert.ErrorIs(t, err, pkgjwt.ErrExpired)
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok := issue(t, testAccessSecret, pkgjwt.KindAccess, time.Minute)

	_, err := pkgjwt.Parse("otro-secret", pkgjwt.KindAccess, tok, t0)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalid)
}

func TestParse_TipoIncorrecto(t *testing.T) {
	// un refresh firmado con el secreto de access tampoco pasa como access
	tok := issue(t, testAccessSecret, pkgjwt.KindRefresh, time.Minute)

	_, err := pkgjwt.Parse(testAccessSecret, pkgjwt.KindAccess, tok, t0)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalid)
}

func TestParse_RefreshNoSirveConSecretoDeAccess(t *testing.T) {
	tok := issue(t, testRefreshSecret, pkgjwt.KindRefresh, time.Hour)

	_, err := pkgjwt.Parse(testAccessSecret, pkgjwt.KindRefresh, tok, t0)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalid)
}

func TestParse_Malformado(t *testing.T) {
	_, err := pkgjwt.Parse(testAccessSecret, pkgjwt.KindAccess, "token.invalido.aqui", t0)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalid)
}

func TestSecretVacio(t *testing.T) {
	_, _, err := pkgjwt.Generate(pkgjwt.Params{Kind: pkgjwt.KindAccess, Subject: testSubject, TTL: time.Minute})
	assert.ErrorIs(t, err, pkgjwt.ErrEmptySecret)

	_, err = pkgjwt.Parse("", pkgjwt.KindAccess, "x", t0)
	assert.ErrorIs(t, err, pkgjwt.ErrEmptySecret)
}
