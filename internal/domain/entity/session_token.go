package entity

import "time"

// RefreshToken registro de la sesión vigente de una identidad (1:1 por OwnerID).
// Solo se guardan hashes SHA-256 de los tokens.
type RefreshToken struct {
	OwnerID          string
	OwnerKind        string // user | customer
	AccessTokenHash  string
	RefreshTokenHash string
	ExpiresAt        time.Time
	UpdatedAt        time.Time
}

// InvalidatedToken access token revocado antes de su expiración natural (logout).
// Deja de ser relevante cuando pasa ExpiresAt.
type InvalidatedToken struct {
	TokenHash string
	OwnerID   string
	ExpiresAt time.Time
}
