package repository

import (
	"context"

	"github.com/jhoicas/restaurante-api/internal/domain/entity"
)

// ReservationRepository persistencia de reservas de mesa.
type ReservationRepository interface {
	Create(ctx context.Context, r *entity.Reservation) error
	GetByID(ctx context.Context, id string) (*entity.Reservation, error)
	List(ctx context.Context, status string, limit, offset int) ([]*entity.Reservation, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// ContactMessageRepository persistencia de mensajes de contacto.
type ContactMessageRepository interface {
	Create(ctx context.Context, m *entity.ContactMessage) error
	List(ctx context.Context, onlyUnread bool, limit, offset int) ([]*entity.ContactMessage, error)
	MarkRead(ctx context.Context, id string) error
}
