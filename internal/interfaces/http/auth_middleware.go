package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/restaurante-api/internal/application/auth"
	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/pkg/jwt"
)

// Locals keys del principal autenticado y de la identidad vigente.
const (
	LocalPrincipal = "principal"
	LocalIdentity  = "identity"
)

// AccessCookie nombre de la cookie con el access token.
const AccessCookie = "jwt"

// RefreshCookie cookie con el refresh token; alternativa al campo del cuerpo.
const RefreshCookie = "refresh_token"

// TokenVerifier contrato mínimo que necesita el middleware; lo implementa *auth.TokenService.
type TokenVerifier interface {
	Verify(token, kind string) (*auth.Principal, error)
	IsInvalidated(ctx context.Context, token, ownerID string) (bool, error)
}

// AuthMiddleware exige un access token válido (cookie jwt o Authorization: Bearer) que
// no esté en la lista de invalidación, y deja el principal en c.Locals.
func AuthMiddleware(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := tokenFromRequest(c)
		if raw == "" {
			return writeError(c, domain.ErrNoAccessToken)
		}
		p, err := authenticate(c, tokens, raw)
		if err != nil {
			return writeError(c, err)
		}
		c.Locals(LocalPrincipal, p)
		return c.Next()
	}
}

// OptionalAuth adjunta el principal si hay un token válido; si no, sigue como invitado.
func OptionalAuth(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := tokenFromRequest(c); raw != "" {
			if p, err := authenticate(c, tokens, raw); err == nil {
				c.Locals(LocalPrincipal, p)
			}
		}
		return c.Next()
	}
}

func authenticate(c *fiber.Ctx, tokens TokenVerifier, raw string) (*auth.Principal, error) {
	p, err := tokens.Verify(raw, jwt.KindAccess)
	if err != nil {
		return nil, err
	}
	revoked, err := tokens.IsInvalidated(c.UserContext(), raw, p.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domain.ErrTokenInvalid
	}
	return p, nil
}

// tokenFromRequest cookie jwt; si falta, Authorization: Bearer.
func tokenFromRequest(c *fiber.Ctx) string {
	if v := strings.TrimSpace(c.Cookies(AccessCookie)); v != "" {
		return v
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Authorize relee la identidad para aplicar el rol vigente, no el del token.
// Debe usarse DESPUÉS de AuthMiddleware. Sin roles, basta con que la identidad exista.
func Authorize(loader auth.IdentityResolver, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := currentIdentity(c, loader)
		if err != nil {
			return writeError(c, err)
		}
		if len(roles) > 0 && !containsRole(roles, id.Role) {
			return writeError(c, domain.ErrAccessDenied)
		}
		return c.Next()
	}
}

// RequireCapability como Authorize pero consultando la tabla de capacidades (rol, acción).
func RequireCapability(loader auth.IdentityResolver, table *auth.CapabilityTable, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := currentIdentity(c, loader)
		if err != nil {
			return writeError(c, err)
		}
		if !table.Allows(id.Role, action) {
			return writeError(c, domain.ErrAccessDenied)
		}
		return c.Next()
	}
}

// RequireCustomer rutas de autoservicio: solo identidades de cliente.
func RequireCustomer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := GetPrincipal(c)
		if p == nil {
			return writeError(c, domain.ErrNoAccessToken)
		}
		if p.Kind != entity.IdentityCustomer {
			return writeError(c, domain.ErrAccessDenied)
		}
		return c.Next()
	}
}

func currentIdentity(c *fiber.Ctx, loader auth.IdentityResolver) (*auth.Identity, error) {
	if v, ok := c.Locals(LocalIdentity).(*auth.Identity); ok && v != nil {
		return v, nil
	}
	p := GetPrincipal(c)
	if p == nil {
		return nil, domain.ErrNoAccessToken
	}
	id, err := loader.Resolve(c.UserContext(), p.Kind, p.ID)
	if err != nil {
		return nil, err
	}
	if id == nil {
		// la identidad fue eliminada después de emitir el token
		return nil, domain.ErrTokenInvalid
	}
	c.Locals(LocalIdentity, id)
	return id, nil
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// GetPrincipal devuelve el principal de la petición o nil para invitados.
func GetPrincipal(c *fiber.Ctx) *auth.Principal {
	p, _ := c.Locals(LocalPrincipal).(*auth.Principal)
	return p
}

// GetRole rol vigente si Authorize ya lo cargó; si no, el del token; guest sin principal.
func GetRole(c *fiber.Ctx) string {
	if id, ok := c.Locals(LocalIdentity).(*auth.Identity); ok && id != nil {
		return id.Role
	}
	if p := GetPrincipal(c); p != nil {
		return p.Role
	}
	return entity.RoleGuest
}
