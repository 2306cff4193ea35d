package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	apphttp "github.com/jhoicas/restaurante-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinToken(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/orders", "", nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apphttp.CodeNoAccessToken, errorCode(t, resp))
}

func TestAuthMiddleware_TokenMalformado(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/orders", "no.es.un.jwt", nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apphttp.CodeAccessTokenInvalid, errorCode(t, resp))
}

func TestAuthMiddleware_RefreshNoSirveComoAccess(t *testing.T) {
	s := newTestServer(t)
	login := s.staffLogin(t, "admin@resto.test")

	resp := s.do(t, http.MethodGet, "/api/orders", login.RefreshToken, nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apphttp.CodeAccessTokenInvalid, errorCode(t, resp))
}

func TestAuthMiddleware_TokenExpirado(t *testing.T) {
	s := newTestServer(t)
	login := s.staffLogin(t, "admin@resto.test")

	s.clock.Advance(16 * time.Minute)
	resp := s.do(t, http.MethodGet, "/api/orders", login.Token, nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apphttp.CodeAccessTokenExpired, errorCode(t, resp))
}

func TestAuthMiddleware_CookieJWT(t *testing.T) {
	s := newTestServer(t)
	login := s.staffLogin(t, "admin@resto.test")

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.AddCookie(&http.Cookie{Name: apphttp.AccessCookie, Value: login.Token})
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Capacidades y roles
// ──────────────────────────────────────────────────────────────────────────────

func TestCapability_ClienteNoAccedeAlBackOffice(t *testing.T) {
	s := newTestServer(t)
	customer := s.registerCustomer(t, "bea@x.com")

	resp := s.do(t, http.MethodGet, "/api/orders", customer.Token, nil)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, apphttp.CodeAccessDenied, errorCode(t, resp))
}

func TestCapability_StaffNoUsaAutoservicio(t *testing.T) {
	s := newTestServer(t)
	admin := s.staffLogin(t, "admin@resto.test")

	resp := s.do(t, http.MethodGet, "/api/me", admin.Token, nil)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCapability_SoloAdminsGestionanStaff(t *testing.T) {
	s := newTestServer(t)
	mod := s.staffLogin(t, "mod@resto.test")

	resp := s.do(t, http.MethodGet, "/api/staff", mod.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "staff:read está permitido al moderador")

	resp = s.do(t, http.MethodDelete, "/api/staff/"+adminID, mod.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCapability_AdminNoSeBorraASiMismo(t *testing.T) {
	s := newTestServer(t)
	admin := s.staffLogin(t, "admin@resto.test")

	resp := s.do(t, http.MethodDelete, "/api/staff/"+adminID, admin.Token, nil)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, apphttp.CodeConflict, errorCode(t, resp))
}

// El guard relee el rol en cada petición: un cambio de rol aplica sin volver a iniciar sesión.
func TestCapability_CambioDeRolSinReLogin(t *testing.T) {
	s := newTestServer(t)
	mod := s.staffLogin(t, "mod@resto.test")

	resp := s.do(t, http.MethodGet, "/api/customers", mod.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	u, err := s.users.GetByID(context.Background(), modID)
	require.NoError(t, err)
	u.Role = entity.RoleMember
	require.NoError(t, s.users.Update(context.Background(), u))

	resp = s.do(t, http.MethodGet, "/api/customers", mod.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, apphttp.CodeAccessDenied, errorCode(t, resp))
}

func TestCapability_IdentidadBorradaInvalidaElToken(t *testing.T) {
	s := newTestServer(t)
	admin := s.staffLogin(t, "admin@resto.test")
	mod := s.staffLogin(t, "mod@resto.test")

	resp := s.do(t, http.MethodDelete, "/api/staff/"+modID, admin.Token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/orders", mod.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apphttp.CodeAccessTokenInvalid, errorCode(t, resp))
}

func TestRutasPublicas_NoExigenToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/menu", "/api/categories"} {
		resp := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestRutaDesconocida_FormaDeErrorUnica(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/no-existe", "", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apphttp.CodeNotFound, errorCode(t, resp))
}

func TestStaffMe_DevuelveCapacidadesDelRolVigente(t *testing.T) {
	s := newTestServer(t)
	login := s.staffLogin(t, "mod@resto.test")

	resp := s.do(t, http.MethodGet, "/api/admin/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.StaffProfileResponse](t, resp)
	assert.Equal(t, modID, out.ID)
	assert.Equal(t, entity.RoleModerator, out.Role)
	assert.Contains(t, out.Capabilities, "products:*")
	assert.Contains(t, out.Capabilities, "staff:read")
	assert.NotContains(t, out.Capabilities, "*")

	customer := s.registerCustomer(t, "cli@x.com")
	resp = s.do(t, http.MethodGet, "/api/admin/auth/me", customer.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/admin/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
