package oauth

import (
	"golang.org/x/oauth2"

	"github.com/jhoicas/restaurante-api/pkg/config"
)

// NewFacebookForTest expone el constructor con endpoints configurables.
func NewFacebookForTest(cfg config.OAuthProvider, endpoint oauth2.Endpoint, meURL string) (*Facebook, error) {
	return newFacebook(cfg, endpoint, meURL)
}
