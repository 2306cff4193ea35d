package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
)

var (
	_ repository.ReservationRepository    = (*ReservationRepo)(nil)
	_ repository.ContactMessageRepository = (*ContactMessageRepo)(nil)
)

const reservationColumns = `id, name, email, phone, guests, reserved_for, notes, status, created_at, updated_at`

// ReservationRepo implementación de ReservationRepository.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador de reservas.
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// Create persiste una reserva.
func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query, res.ID, res.Name, res.Email, res.Phone, res.Guests, res.ReservedFor,
		res.Notes, res.Status, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// GetByID obtiene una reserva.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*entity.Reservation, error) {
	res, err := scanReservation(r.q.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

// List lista reservas por fecha, opcionalmente filtradas por estado.
func (r *ReservationRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + ` FROM reservations
		WHERE ($1 = '' OR status = $1)
		ORDER BY reserved_for
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

// UpdateStatus cambia el estado de la reserva.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE reservations SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var res entity.Reservation
	err := row.Scan(&res.ID, &res.Name, &res.Email, &res.Phone, &res.Guests, &res.ReservedFor,
		&res.Notes, &res.Status, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ─── Contacto ────────────────────────────────────────────────────────────────

// ContactMessageRepo implementación de ContactMessageRepository.
type ContactMessageRepo struct {
	q Querier
}

// NewContactMessageRepository construye el adaptador de mensajes de contacto.
func NewContactMessageRepository(q Querier) *ContactMessageRepo {
	return &ContactMessageRepo{q: q}
}

// Create persiste un mensaje.
func (r *ContactMessageRepo) Create(ctx context.Context, m *entity.ContactMessage) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO contact_messages (id, name, email, subject, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.Name, m.Email, m.Subject, m.Message, m.Read, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	return nil
}

// List lista mensajes, los más nuevos primero.
func (r *ContactMessageRepo) List(ctx context.Context, onlyUnread bool, limit, offset int) ([]*entity.ContactMessage, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, email, subject, message, read, created_at FROM contact_messages
		WHERE NOT ($1 AND read)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, onlyUnread, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()
	var list []*entity.ContactMessage
	for rows.Next() {
		var m entity.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact message: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// MarkRead marca un mensaje como leído.
func (r *ContactMessageRepo) MarkRead(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE contact_messages SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark contact message read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
