package entity

import "time"

// Roles válidos para User (staff). Los clientes tienen rol implícito RoleCustomer.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleMember    = "member"
	RoleCustomer  = "customer"
	RoleGuest     = "guest"
)

// Tipos de identidad. Staff y clientes viven en tablas separadas.
const (
	IdentityUser     = "user"
	IdentityCustomer = "customer"
)

// User representa un miembro del staff del restaurante.
type User struct {
	ID           string
	Name         string
	Surname      string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // admin, moderator, member
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsStaffRole indica si role es un rol de staff válido.
func IsStaffRole(role string) bool {
	switch role {
	case RoleAdmin, RoleModerator, RoleMember:
		return true
	}
	return false
}
