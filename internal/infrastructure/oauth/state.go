// Package oauth adaptadores de login federado (Google vía OIDC, Facebook vía Graph API).
package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// NewState genera el valor aleatorio del parámetro state (anti-CSRF).
func NewState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
