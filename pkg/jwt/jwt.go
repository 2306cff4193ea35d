package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Tipos de token. Cada tipo se firma con su propio secreto.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Errores de verificación. ErrExpired se distingue para que el cliente sepa que debe refrescar.
var (
	ErrEmptySecret = errors.New("jwt: secret vacío")
	ErrExpired     = errors.New("jwt: token expirado")
	ErrInvalid     = errors.New("jwt: token inválido")
)

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// Role es solo informativo: el guard de autorización relee el rol desde la DB.
type Claims struct {
	jwt.RegisteredClaims
	Kind         string `json:"kind"`          // access | refresh
	IdentityKind string `json:"identity_kind"` // user | customer
	Role         string `json:"role,omitempty"`
}

// Params datos para firmar un token.
type Params struct {
	Secret       string
	Kind         string
	Subject      string
	IdentityKind string
	Role         string
	Issuer       string
	TTL          time.Duration
	Now          time.Time
}

// Generate firma un token HS256. Cada token lleva un jti aleatorio, así dos emisiones
// en el mismo segundo nunca producen el mismo valor.
func Generate(p Params) (string, time.Time, error) {
	if p.Secret == "" {
		return "", time.Time{}, ErrEmptySecret
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	exp := now.Add(p.TTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    p.Issuer,
			Subject:   p.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Kind:         p.Kind,
		IdentityKind: p.IdentityKind,
		Role:         p.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(p.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: firmar: %w", err)
	}
	// exp se trunca a segundos igual que en el claim
	return signed, time.Unix(exp.Unix(), 0), nil
}

// Parse valida firma, expiración y tipo del token.
// Retorna ErrExpired si venció y ErrInvalid para cualquier otra falla (malformado, firma, tipo).
func Parse(secret, kind, tokenString string, now time.Time) (*Claims, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if !now.IsZero() {
		opts = append(opts, jwt.WithTimeFunc(func() time.Time { return now }))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalid
	}
	if claims.Kind != kind || claims.Subject == "" {
		return nil, ErrInvalid
	}
	return claims, nil
}
