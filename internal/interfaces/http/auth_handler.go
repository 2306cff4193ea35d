package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/restaurante-api/internal/application/auth"
	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/application/ports"
	"github.com/jhoicas/restaurante-api/internal/domain"
)

// CookieConfig atributos de la cookie jwt.
type CookieConfig struct {
	Secure bool
	Domain string
	MaxAge time.Duration
}

// AuthHandler registro, login, refresh y logout de clientes y staff.
type AuthHandler struct {
	uc      *auth.SessionUseCase
	cookie  CookieConfig
	metrics ports.Metrics
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.SessionUseCase, cookie CookieConfig, metrics ports.Metrics) *AuthHandler {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &AuthHandler{uc: uc, cookie: cookie, metrics: metrics}
}

// Register godoc
// @Summary      Registrar cliente
// @Description  Crea un cliente con contraseña. No inicia sesión.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "name, surname, email, password"
// @Success      201   {object}  dto.RegisterResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Register(c.UserContext(), in)
	if err != nil {
		h.metrics.AuthEvent("register", "error")
		return writeError(c, err)
	}
	h.metrics.AuthEvent("register", "ok")
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Login devuelve el handler de login para el tipo de identidad (customer o user).
//
// @Summary      Iniciar sesión
// @Description  Devuelve el par de tokens y fija la cookie jwt. Cualquier fallo de credenciales es InvalidCredentials.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
// @Router       /api/admin/auth/login [post]
func (h *AuthHandler) Login(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in dto.LoginRequest
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		out, err := h.uc.Login(c.UserContext(), kind, in)
		if err != nil {
			h.metrics.AuthEvent("login", "error")
			if errors.Is(err, domain.ErrInvalidCredentials) {
				logFrom(c).Info().Str("kind", kind).Str("ip", c.IP()).Msg("login rechazado")
			}
			return writeError(c, err)
		}
		h.metrics.AuthEvent("login", "ok")
		setSessionCookies(c, h.cookie, &out.TokenResponse)
		return c.JSON(out)
	}
}

// Refresh godoc
// @Summary      Rotar tokens
// @Description  Cambia un refresh token vigente por un par nuevo; el anterior deja de servir.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RefreshRequest  true  "refresh_token"
// @Success      200   {object}  dto.TokenResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/refresh-token [post]
// @Router       /api/admin/auth/refresh-token [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var in dto.RefreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	if in.RefreshToken == "" {
		in.RefreshToken = c.Cookies(RefreshCookie)
	}
	out, err := h.uc.Refresh(c.UserContext(), in.RefreshToken)
	if err != nil {
		h.metrics.AuthEvent("refresh", "error")
		return writeError(c, err)
	}
	h.metrics.AuthEvent("refresh", "ok")
	setSessionCookies(c, h.cookie, out)
	return c.JSON(out)
}

// Logout godoc
// @Summary      Cerrar sesión
// @Description  Revoca la sesión de refresh e invalida el access token presentado.
// @Tags         auth
// @Security     Bearer
// @Success      204
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/logout [post]
// @Router       /api/admin/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	p := GetPrincipal(c)
	if p == nil {
		return writeError(c, domain.ErrNoAccessToken)
	}
	if err := h.uc.Logout(c.UserContext(), *p); err != nil {
		return writeError(c, err)
	}
	h.metrics.AuthEvent("logout", "ok")
	clearSessionCookies(c, h.cookie)
	return c.SendStatus(fiber.StatusNoContent)
}

// setSessionCookies fija jwt (todo el sitio) y refresh_token (solo rutas de refresh).
func setSessionCookies(c *fiber.Ctx, cfg CookieConfig, t *dto.TokenResponse) {
	c.Cookie(sessionCookie(cfg, AccessCookie, t.Token, "/", t.ExpiresAt, int(cfg.MaxAge.Seconds())))
	c.Cookie(sessionCookie(cfg, RefreshCookie, t.RefreshToken, "/api", t.RefreshExpiresAt,
		int(time.Until(t.RefreshExpiresAt).Seconds())))
}

func clearSessionCookies(c *fiber.Ctx, cfg CookieConfig) {
	c.Cookie(sessionCookie(cfg, AccessCookie, "", "/", time.Unix(0, 0), -1))
	c.Cookie(sessionCookie(cfg, RefreshCookie, "", "/api", time.Unix(0, 0), -1))
}

func sessionCookie(cfg CookieConfig, name, value, path string, expires time.Time, maxAge int) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   cfg.Domain,
		Expires:  expires,
		MaxAge:   maxAge,
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
