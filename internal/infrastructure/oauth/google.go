package oauth

import (
	"context"
	"errors"
	"fmt"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/jhoicas/restaurante-api/internal/application/auth"
	"github.com/jhoicas/restaurante-api/internal/application/ports"
	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/pkg/config"
)

const googleIssuer = "https://accounts.google.com"

var _ ports.OAuthProvider = (*Google)(nil)

// Google login con Google: authorization code + verificación del id_token.
type Google struct {
	config   *oauth2.Config
	verifier *gooidc.IDTokenVerifier
}

// NewGoogle descubre los endpoints del issuer (una sola petición al arrancar).
func NewGoogle(ctx context.Context, cfg config.OAuthProvider) (*Google, error) {
	return newGoogleWithIssuer(ctx, cfg, googleIssuer)
}

func newGoogleWithIssuer(ctx context.Context, cfg config.OAuthProvider, issuer string) (*Google, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: google oauth sin client id/secret", domain.ErrConfig)
	}
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	return &Google{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{gooidc.ScopeOpenID, "email", "profile"},
			Endpoint:     op.Endpoint(),
		},
		verifier: op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// Name identificador del proveedor.
func (g *Google) Name() string { return entity.ProviderGoogle }

// AuthCodeURL URL a la que se redirige al usuario.
func (g *Google) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange canjea el code y lee sub, email y nombre del id_token verificado.
func (g *Google) Exchange(ctx context.Context, code string) (*auth.FederatedProfile, error) {
	if code == "" {
		return nil, domain.ErrMissingFields
	}
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, &domain.UpstreamError{Provider: entity.ProviderGoogle, Message: "no se pudo canjear el código", Err: err}
	}
	rawID, ok := token.Extra("id_token").(string)
	if !ok || rawID == "" {
		return nil, &domain.UpstreamError{Provider: entity.ProviderGoogle, Message: "respuesta sin id_token"}
	}
	idToken, err := g.verifier.Verify(ctx, rawID)
	if err != nil {
		return nil, &domain.UpstreamError{Provider: entity.ProviderGoogle, Message: "id_token inválido", Err: err}
	}
	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, &domain.UpstreamError{Provider: entity.ProviderGoogle, Message: "claims ilegibles", Err: err}
	}
	if idToken.Subject == "" {
		return nil, errors.New("google: id_token sin sub")
	}
	return &auth.FederatedProfile{
		Provider:      entity.ProviderGoogle,
		Subject:       idToken.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		DisplayName:   claims.Name,
	}, nil
}
