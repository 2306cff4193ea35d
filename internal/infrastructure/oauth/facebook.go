package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"

	"github.com/jhoicas/restaurante-api/internal/application/auth"
	"github.com/jhoicas/restaurante-api/internal/application/ports"
	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/pkg/config"
)

const facebookGraphMe = "https://graph.facebook.com/v19.0/me?fields=id,name,email"

var _ ports.OAuthProvider = (*Facebook)(nil)

// Facebook login con Facebook: authorization code + perfil desde Graph API.
type Facebook struct {
	config *oauth2.Config
	meURL  string
}

// NewFacebook construye el proveedor con los endpoints públicos de Facebook.
func NewFacebook(cfg config.OAuthProvider) (*Facebook, error) {
	return newFacebook(cfg, facebook.Endpoint, facebookGraphMe)
}

func newFacebook(cfg config.OAuthProvider, endpoint oauth2.Endpoint, meURL string) (*Facebook, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: facebook oauth sin client id/secret", domain.ErrConfig)
	}
	return &Facebook{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"email", "public_profile"},
			Endpoint:     endpoint,
		},
		meURL: meURL,
	}, nil
}

// Name identificador del proveedor.
func (f *Facebook) Name() string { return entity.ProviderFacebook }

// AuthCodeURL URL a la que se redirige al usuario.
func (f *Facebook) AuthCodeURL(state string) string {
	return f.config.AuthCodeURL(state)
}

// Exchange canjea el code y consulta /me. Facebook solo entrega emails confirmados.
func (f *Facebook) Exchange(ctx context.Context, code string) (*auth.FederatedProfile, error) {
	if code == "" {
		return nil, domain.ErrMissingFields
	}
	token, err := f.config.Exchange(ctx, code)
	if err != nil {
		return nil, &domain.UpstreamError{Provider: entity.ProviderFacebook, Message: "no se pudo canjear el código", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.meURL, nil)
	if err != nil {
		return nil, fmt.Errorf("facebook: build request: %w", err)
	}
	resp, err := f.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Provider: entity.ProviderFacebook, Message: "graph api no disponible", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{Provider: entity.ProviderFacebook, Message: fmt.Sprintf("graph api respondió %d", resp.StatusCode)}
	}

	var me struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, &domain.UpstreamError{Provider: entity.ProviderFacebook, Message: "perfil ilegible", Err: err}
	}
	if me.ID == "" {
		return nil, &domain.UpstreamError{Provider: entity.ProviderFacebook, Message: "perfil sin id"}
	}
	return &auth.FederatedProfile{
		Provider:      entity.ProviderFacebook,
		Subject:       me.ID,
		Email:         me.Email,
		EmailVerified: me.Email != "",
		DisplayName:   me.Name,
	}, nil
}
