package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	apphttp "github.com/jhoicas/restaurante-api/internal/interfaces/http"
)

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Escenario A: registro, login y contraseña incorrecta con error uniforme.
func TestAuth_RegistroYLogin(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Name: "Bea", Surname: "Gil", Email: "Bea@X.com", Password: "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reg := decode[dto.RegisterResponse](t, resp)
	assert.NotEmpty(t, reg.ID)
	assert.Nil(t, findCookie(resp, apphttp.AccessCookie), "el registro no inicia sesión")

	resp = s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "bea@x.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	jwtCookie := findCookie(resp, apphttp.AccessCookie)
	require.NotNil(t, jwtCookie)
	assert.True(t, jwtCookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, jwtCookie.SameSite)
	assert.Equal(t, 15*60, jwtCookie.MaxAge)
	login := decode[dto.LoginResponse](t, resp)
	assert.Equal(t, reg.ID, login.User.ID)
	assert.Equal(t, entity.RoleCustomer, login.User.Role)
	assert.Equal(t, jwtCookie.Value, login.Token)

	wrongPw := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "bea@x.com", Password: "otra-clave"})
	unknown := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "nadie@x.com", Password: "secret1"})
	assert.Equal(t, http.StatusUnauthorized, wrongPw.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, unknown.StatusCode)
	a, b := decode[dto.ErrorResponse](t, wrongPw), decode[dto.ErrorResponse](t, unknown)
	assert.Equal(t, apphttp.CodeInvalidCredentials, a.Code)
	assert.Equal(t, a, b, "la respuesta no revela qué credencial falló")
}

func TestAuth_RegistroDuplicadoYCamposFaltantes(t *testing.T) {
	s := newTestServer(t)
	s.registerCustomer(t, "bea@x.com")

	resp := s.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Name: "Otra", Surname: "Bea", Email: "BEA@x.com", Password: "secret1",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: "z@x.com", Password: "secret1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apphttp.CodeMissingFields, errorCode(t, resp))
}

func TestAuth_ClienteNoEntraPorElLoginDeStaff(t *testing.T) {
	s := newTestServer(t)
	s.registerCustomer(t, "bea@x.com")

	resp := s.do(t, http.MethodPost, "/api/admin/auth/login", "", dto.LoginRequest{Email: "bea@x.com", Password: "secret1"})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apphttp.CodeInvalidCredentials, errorCode(t, resp))
}

// Escenario C: tras el logout el mismo access token se rechaza.
func TestAuth_LogoutInvalidaElToken(t *testing.T) {
	s := newTestServer(t)
	login := s.registerCustomer(t, "bea@x.com")

	resp := s.do(t, http.MethodGet, "/api/me", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/auth/logout", login.Token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	cleared := findCookie(resp, apphttp.AccessCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	resp = s.do(t, http.MethodGet, "/api/me", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apphttp.CodeAccessTokenInvalid, errorCode(t, resp))

	resp = s.do(t, http.MethodPost, "/api/auth/refresh-token", "", dto.RefreshRequest{RefreshToken: login.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "el logout revoca también la sesión de refresh")

	resp = s.do(t, http.MethodPost, "/api/auth/logout", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_RefreshRotaYElAnteriorDejaDeServir(t *testing.T) {
	s := newTestServer(t)
	login := s.staffLogin(t, "admin@resto.test")

	resp := s.do(t, http.MethodPost, "/api/admin/auth/refresh-token", "", dto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rotated := decode[dto.TokenResponse](t, resp)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	resp = s.do(t, http.MethodPost, "/api/admin/auth/refresh-token", "", dto.RefreshRequest{RefreshToken: login.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apphttp.CodeInvalidRefreshToken, errorCode(t, resp))

	resp = s.do(t, http.MethodGet, "/api/orders", rotated.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuth_RefreshDesdeCookie(t *testing.T) {
	s := newTestServer(t)
	login := s.registerCustomer(t, "bea@x.com")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: apphttp.RefreshCookie, Value: login.RefreshToken})
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, findCookie(resp, apphttp.RefreshCookie))
}

func TestAuth_LoginConRateLimit(t *testing.T) {
	s := newTestServer(t, withLimiter(&fakeLimiter{allow: 2}))
	body := dto.LoginRequest{Email: "admin@resto.test", Password: "mal"}

	for i := 0; i < 2; i++ {
		resp := s.do(t, http.MethodPost, "/api/admin/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp := s.do(t, http.MethodPost, "/api/admin/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "5", resp.Header.Get("Retry-After"))
	assert.Equal(t, apphttp.CodeTooManyRequests, errorCode(t, resp))
}

func TestAuth_ActualizarPerfil(t *testing.T) {
	s := newTestServer(t)
	login := s.registerCustomer(t, "bea@x.com")
	name := "Beatriz"

	resp := s.do(t, http.MethodPut, "/api/me", login.Token, dto.UpdateProfileRequest{
		Name: &name, CurrentPassword: "mal", NewPassword: "nueva-clave",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodPut, "/api/me", login.Token, dto.UpdateProfileRequest{
		Name: &name, CurrentPassword: "secret1", NewPassword: "nueva-clave",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Beatriz", decode[dto.CustomerResponse](t, resp).Name)

	resp = s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "bea@x.com", Password: "nueva-clave"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOAuth_ProveedorNoConfigurado(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/auth/google", "", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
