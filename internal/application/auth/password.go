package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/restaurante-api/internal/domain"
)

// MinPasswordLength largo mínimo de contraseña.
const MinPasswordLength = 6

// HashPassword hashea con bcrypt. cost fuera de rango usa bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if len(password) < MinPasswordLength {
		return "", domain.ErrInvalidInput
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compara password con el hash almacenado.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
