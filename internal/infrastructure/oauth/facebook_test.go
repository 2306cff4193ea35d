package oauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/infrastructure/oauth"
	"github.com/jhoicas/restaurante-api/pkg/config"
)

var fbConfig = config.OAuthProvider{ClientID: "fb-id", ClientSecret: "fb-secret", RedirectURL: "http://localhost/cb"}

func graphServer(t *testing.T, meStatus int, me map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "fb-token", "token_type": "bearer", "expires_in": 3600})
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fb-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(meStatus)
		_ = json.NewEncoder(w).Encode(me)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newFB(t *testing.T, srv *httptest.Server) *oauth.Facebook {
	t.Helper()
	fb, err := oauth.NewFacebookForTest(fbConfig, oauth2.Endpoint{
		AuthURL:  srv.URL + "/dialog/oauth",
		TokenURL: srv.URL + "/oauth/access_token",
	}, srv.URL+"/me")
	require.NoError(t, err)
	return fb
}

func TestFacebook_ExchangeDevuelvePerfil(t *testing.T) {
	srv := graphServer(t, http.StatusOK, map[string]string{"id": "fb-123", "name": "Ana Pérez", "email": "ana@example.com"})
	fb := newFB(t, srv)

	p, err := fb.Exchange(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ProviderFacebook, p.Provider)
	assert.Equal(t, "fb-123", p.Subject)
	assert.Equal(t, "ana@example.com", p.Email)
	assert.True(t, p.EmailVerified)
	assert.Equal(t, "Ana Pérez", p.DisplayName)
}

func TestFacebook_SinEmailNoEsVerificado(t *testing.T) {
	srv := graphServer(t, http.StatusOK, map[string]string{"id": "fb-9", "name": "Sin Correo"})
	fb := newFB(t, srv)

	p, err := fb.Exchange(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Empty(t, p.Email)
	assert.False(t, p.EmailVerified)
}

func TestFacebook_GraphError(t *testing.T) {
	srv := graphServer(t, http.StatusBadRequest, map[string]string{})
	fb := newFB(t, srv)

	_, err := fb.Exchange(context.Background(), "code-1")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestFacebook_CodeVacio(t *testing.T) {
	srv := graphServer(t, http.StatusOK, nil)
	fb := newFB(t, srv)

	_, err := fb.Exchange(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrMissingFields)
}

func TestFacebook_AuthCodeURLLlevaState(t *testing.T) {
	srv := graphServer(t, http.StatusOK, nil)
	fb := newFB(t, srv)

	u, err := url.Parse(fb.AuthCodeURL("st-1"))
	require.NoError(t, err)
	assert.Equal(t, "st-1", u.Query().Get("state"))
	assert.Equal(t, "fb-id", u.Query().Get("client_id"))
}

func TestNewFacebook_SinCredenciales(t *testing.T) {
	_, err := oauth.NewFacebook(config.OAuthProvider{})
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestNewState_Distintos(t *testing.T) {
	a, err := oauth.NewState()
	require.NoError(t, err)
	b, err := oauth.NewState()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 40)
}
