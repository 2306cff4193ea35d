package http

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/restaurante-api/internal/application/auth"
	"github.com/jhoicas/restaurante-api/internal/application/ports"
	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
)

const (
	stateCookie = "oauth_state"
	linkCookie  = "oauth_link"
	stateTTL    = 10 * time.Minute
)

// StateGenerator produce el valor aleatorio del parámetro state.
type StateGenerator func() (string, error)

// OAuthRedirects destinos del navegador tras el callback.
type OAuthRedirects struct {
	Success string
	Failure string
}

// OAuthHandler inicio y callback del login federado.
type OAuthHandler struct {
	providers map[string]ports.OAuthProvider
	sessions  *auth.SessionUseCase
	newState  StateGenerator
	cookie    CookieConfig
	redirects OAuthRedirects
	metrics   ports.Metrics
}

// NewOAuthHandler construye el handler. Solo se exponen los proveedores recibidos.
func NewOAuthHandler(
	providers []ports.OAuthProvider,
	sessions *auth.SessionUseCase,
	newState StateGenerator,
	cookie CookieConfig,
	redirects OAuthRedirects,
	metrics ports.Metrics,
) *OAuthHandler {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	byName := make(map[string]ports.OAuthProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &OAuthHandler{
		providers: byName,
		sessions:  sessions,
		newState:  newState,
		cookie:    cookie,
		redirects: redirects,
		metrics:   metrics,
	}
}

// Start godoc
// @Summary      Iniciar login federado
// @Description  Redirige al proveedor. Con link=1 y una sesión de cliente, vincula el proveedor a esa cuenta.
// @Tags         auth
// @Param        provider  path   string  true   "google | facebook"
// @Param        link      query  string  false  "1 para vincular"
// @Success      302
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/auth/{provider} [get]
func (h *OAuthHandler) Start(c *fiber.Ctx) error {
	p, ok := h.providers[c.Params("provider")]
	if !ok {
		return writeError(c, domain.ErrNotFound)
	}
	state, err := h.newState()
	if err != nil {
		return writeError(c, err)
	}
	h.flowCookie(c, stateCookie, state, stateTTL)
	if c.Query("link") == "1" {
		principal := GetPrincipal(c)
		if principal == nil || principal.Kind != entity.IdentityCustomer {
			return writeError(c, domain.ErrNoAccessToken)
		}
		h.flowCookie(c, linkCookie, principal.ID, stateTTL)
	}
	return c.Redirect(p.AuthCodeURL(state), fiber.StatusFound)
}

// Callback godoc
// @Summary      Completar login federado
// @Description  Valida state, canjea el code e inicia sesión (o vincula). Siempre redirige al frontend.
// @Tags         auth
// @Param        provider  path   string  true  "google | facebook"
// @Param        code      query  string  true  "authorization code"
// @Param        state     query  string  true  "state"
// @Success      302
// @Router       /api/auth/{provider}/callback [get]
func (h *OAuthHandler) Callback(c *fiber.Ctx) error {
	p, ok := h.providers[c.Params("provider")]
	if !ok {
		return writeError(c, domain.ErrNotFound)
	}
	log := logFrom(c)
	expected := c.Cookies(stateCookie)
	linkTo := c.Cookies(linkCookie)
	h.flowCookie(c, stateCookie, "", -1)
	h.flowCookie(c, linkCookie, "", -1)

	if expected == "" || c.Query("state") != expected {
		log.Warn().Str("provider", p.Name()).Msg("oauth: state inválido")
		return h.fail(c, "state")
	}
	if errParam := c.Query("error"); errParam != "" {
		return h.fail(c, errParam)
	}
	code := c.Query("code")
	if code == "" {
		return h.fail(c, "code")
	}

	profile, err := p.Exchange(c.UserContext(), code)
	if err != nil {
		log.Warn().Err(err).Str("provider", p.Name()).Msg("oauth: canje fallido")
		return h.fail(c, "exchange")
	}

	if linkTo != "" {
		if err := h.sessions.LinkProvider(c.UserContext(), linkTo, *profile); err != nil {
			log.Warn().Err(err).Str("provider", p.Name()).Str("customer_id", linkTo).Msg("oauth: vinculación rechazada")
			return h.fail(c, "link")
		}
		h.metrics.AuthEvent("oauth_link", "ok")
		return c.Redirect(withQuery(h.redirects.Success, "linked", p.Name()), fiber.StatusFound)
	}

	out, err := h.sessions.FederatedLogin(c.UserContext(), *profile)
	if err != nil {
		log.Error().Err(err).Str("provider", p.Name()).Msg("oauth: login federado fallido")
		return h.fail(c, "login")
	}
	h.metrics.AuthEvent("oauth", "ok")
	setSessionCookies(c, h.cookie, &out.TokenResponse)
	return c.Redirect(h.redirects.Success, fiber.StatusFound)
}

func (h *OAuthHandler) fail(c *fiber.Ctx, reason string) error {
	h.metrics.AuthEvent("oauth", "denied")
	return c.Redirect(withQuery(h.redirects.Failure, "error", reason), fiber.StatusFound)
}

func (h *OAuthHandler) flowCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	expires := time.Now().Add(ttl)
	if ttl < 0 {
		maxAge, expires = -1, time.Unix(0, 0)
	}
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/api/auth",
		Domain:   h.cookie.Domain,
		Expires:  expires,
		MaxAge:   maxAge,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func withQuery(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
