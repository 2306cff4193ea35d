package ports

import (
	"context"

	"github.com/jhoicas/restaurante-api/internal/application/auth"
)

// OAuthProvider flujo authorization-code de un proveedor federado.
type OAuthProvider interface {
	Name() string
	AuthCodeURL(state string) string
	// Exchange canjea el code y devuelve el perfil verificado del usuario.
	Exchange(ctx context.Context, code string) (*auth.FederatedProfile, error)
}
