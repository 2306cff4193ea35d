package dto

import "time"

// RegisterRequest entrada para registro de clientes.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Surname  string `json:"surname" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterResponse id de la identidad creada (no inicia sesión).
type RegisterResponse struct {
	ID string `json:"id"`
}

// LoginRequest credenciales.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest refresh token a rotar.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ProfileResponse perfil mínimo de la identidad autenticada.
type ProfileResponse struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role"`
}

// TokenResponse par de tokens.
type TokenResponse struct {
	Token            string    `json:"token"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// LoginResponse tokens más el perfil.
type LoginResponse struct {
	TokenResponse
	User ProfileResponse `json:"user"`
}
