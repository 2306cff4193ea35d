package entity

import "time"

// Estados de una reserva.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCanceled  = "canceled"
)

// Límites de comensales por reserva.
const (
	MinGuests = 1
	MaxGuests = 20
)

// Reservation reserva de mesa hecha desde la tienda.
type Reservation struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	Guests      int
	ReservedFor time.Time
	Notes       string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ContactMessage mensaje del formulario de contacto.
type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Message   string
	Read      bool
	CreatedAt time.Time
}
