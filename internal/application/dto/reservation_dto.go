package dto

import "time"

// CreateReservationRequest formulario público de reservas.
type CreateReservationRequest struct {
	Name        string    `json:"name" validate:"required"`
	Email       string    `json:"email" validate:"required,email"`
	Phone       string    `json:"phone"`
	Guests      int       `json:"guests" validate:"min=1,max=20"`
	ReservedFor time.Time `json:"reserved_for"`
	Notes       string    `json:"notes"`
}

// ReservationResponse reserva.
type ReservationResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Guests      int       `json:"guests"`
	ReservedFor time.Time `json:"reserved_for"`
	Notes       string    `json:"notes,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReservationListRequest filtros de GET /api/reservations.
type ReservationListRequest struct {
	PageRequest
	Status string `query:"status"`
}

// ReservationListResponse listado paginado.
type ReservationListResponse struct {
	Items []ReservationResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// UpdateReservationStatusRequest cambio de estado por el staff.
type UpdateReservationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed canceled"`
}

// ContactRequest formulario público de contacto.
type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
}

// ContactMessageResponse mensaje recibido.
type ContactMessageResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactListRequest filtros de GET /api/contact-messages.
type ContactListRequest struct {
	PageRequest
	Unread bool `query:"unread"`
}

// ContactListResponse listado paginado.
type ContactListResponse struct {
	Items []ContactMessageResponse `json:"items"`
	Page  PageResponse             `json:"page"`
}
