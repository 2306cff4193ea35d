package entity

import "time"

// Proveedores de login federado.
const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// Customer representa un cliente de la tienda.
// Email y PasswordHash pueden estar vacíos en identidades creadas solo por OAuth.
type Customer struct {
	ID           string
	Name         string
	Surname      string
	Email        string
	Phone        string
	PasswordHash string
	ExternalIDs  map[string]string // proveedor -> subject, máximo uno por proveedor
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword indica si el cliente puede iniciar sesión con contraseña.
func (c *Customer) HasPassword() bool {
	return c.PasswordHash != ""
}
