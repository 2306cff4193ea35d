package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrMissingFields      = errors.New("faltan campos obligatorios")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")

	// Autenticación y autorización
	ErrNoAccessToken       = errors.New("token de acceso requerido")
	ErrTokenExpired        = errors.New("token de acceso expirado")
	ErrTokenInvalid        = errors.New("token de acceso inválido")
	ErrInvalidCredentials  = errors.New("credenciales inválidas")
	ErrRefreshTokenInvalid = errors.New("refresh token inválido o expirado")
	ErrAccessDenied        = errors.New("acceso denegado")

	// Checkout
	ErrEmptyCart              = errors.New("el carrito no tiene productos válidos")
	ErrInvalidDeliveryAddress = errors.New("dirección de entrega incompleta")
	ErrInvalidTransition      = errors.New("transición de estado no permitida")

	// Configuración: fatal, nunca se degrada a "siempre permitir"
	ErrConfig = errors.New("configuración inválida")

	ErrUpstream = errors.New("error del proveedor externo")
)

// UpstreamError falla de un proveedor externo (pasarela de pago, OAuth).
// Message se devuelve tal cual al cliente.
type UpstreamError struct {
	Provider string
	Message  string
	Err      error
}

func (e *UpstreamError) Error() string {
	return e.Provider + ": " + e.Message
}

// Unwrap permite errors.Is(err, ErrUpstream).
func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}
