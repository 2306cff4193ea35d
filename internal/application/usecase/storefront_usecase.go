package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/restaurante-api/internal/application/auth"
	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/application/ports"
	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
	"github.com/jhoicas/restaurante-api/pkg/logger"
)

// StorefrontUseCase formularios públicos de reservas y contacto y su gestión por el staff.
type StorefrontUseCase struct {
	reservations repository.ReservationRepository
	messages     repository.ContactMessageRepository
	events       ports.EventPublisher
	log          *logger.Logger
	now          func() time.Time
}

// NewStorefrontUseCase construye el caso de uso. events puede ser nil.
func NewStorefrontUseCase(
	reservations repository.ReservationRepository,
	messages repository.ContactMessageRepository,
	events ports.EventPublisher,
	log *logger.Logger,
) *StorefrontUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &StorefrontUseCase{
		reservations: reservations,
		messages:     messages,
		events:       events,
		log:          log.WithComponent("storefront"),
		now:          time.Now,
	}
}

// WithClock reloj fijo para tests.
func (uc *StorefrontUseCase) WithClock(now func() time.Time) *StorefrontUseCase {
	uc.now = now
	return uc
}

// CreateReservation reserva pendiente de confirmar; la fecha debe ser futura.
func (uc *StorefrontUseCase) CreateReservation(ctx context.Context, in dto.CreateReservationRequest) (*dto.ReservationResponse, error) {
	name := strings.TrimSpace(in.Name)
	email := auth.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.ReservedFor.IsZero() {
		return nil, domain.ErrMissingFields
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email", domain.ErrInvalidInput)
	}
	if in.Guests < entity.MinGuests || in.Guests > entity.MaxGuests {
		return nil, fmt.Errorf("%w: guests debe estar entre %d y %d", domain.ErrInvalidInput, entity.MinGuests, entity.MaxGuests)
	}
	now := uc.now()
	if !in.ReservedFor.After(now) {
		return nil, fmt.Errorf("%w: reserved_for debe ser futura", domain.ErrInvalidInput)
	}
	r := &entity.Reservation{
		ID:          uuid.New().String(),
		Name:        name,
		Email:       email,
		Phone:       strings.TrimSpace(in.Phone),
		Guests:      in.Guests,
		ReservedFor: in.ReservedFor,
		Notes:       strings.TrimSpace(in.Notes),
		Status:      entity.ReservationPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.reservations.Create(ctx, r); err != nil {
		return nil, err
	}
	out := toReservationResponse(r)
	return &out, nil
}

// ListReservations listado del staff, filtrable por estado.
func (uc *StorefrontUseCase) ListReservations(ctx context.Context, in dto.ReservationListRequest) (*dto.ReservationListResponse, error) {
	if in.Status != "" && !validReservationStatus(in.Status) {
		return nil, fmt.Errorf("%w: status", domain.ErrInvalidInput)
	}
	in.DefaultPage()
	list, err := uc.reservations.List(ctx, in.Status, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReservationResponse, 0, len(list))
	for _, r := range list {
		items = append(items, toReservationResponse(r))
	}
	return &dto.ReservationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// UpdateReservationStatus confirma o cancela una reserva.
func (uc *StorefrontUseCase) UpdateReservationStatus(ctx context.Context, id, status string) (*dto.ReservationResponse, error) {
	if !validReservationStatus(status) {
		return nil, fmt.Errorf("%w: status", domain.ErrInvalidInput)
	}
	if err := uc.reservations.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	r, err := uc.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	out := toReservationResponse(r)
	return &out, nil
}

// SubmitContact guarda el mensaje y avisa al staff por evento. Un fallo al publicar no
// rechaza el mensaje.
func (uc *StorefrontUseCase) SubmitContact(ctx context.Context, in dto.ContactRequest) (*dto.ContactMessageResponse, error) {
	name := strings.TrimSpace(in.Name)
	email := auth.NormalizeEmail(in.Email)
	message := strings.TrimSpace(in.Message)
	if name == "" || email == "" || message == "" {
		return nil, domain.ErrMissingFields
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email", domain.ErrInvalidInput)
	}
	m := &entity.ContactMessage{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Subject:   strings.TrimSpace(in.Subject),
		Message:   message,
		CreatedAt: uc.now(),
	}
	if err := uc.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	if uc.events != nil {
		evt := ports.Event{
			Type:       ports.EventContactReceived,
			OccurredAt: m.CreatedAt.UTC(),
			Payload: ports.ContactEventPayload{
				MessageID: m.ID, Name: m.Name, Email: m.Email, Subject: m.Subject, Message: m.Message,
			},
		}
		if err := uc.events.Publish(ctx, evt); err != nil {
			uc.log.Warn().Err(err).Str("message_id", m.ID).Msg("no se pudo publicar el mensaje de contacto")
		}
	}
	out := toContactResponse(m)
	return &out, nil
}

// ListContactMessages mensajes recibidos, opcionalmente solo los no leídos.
func (uc *StorefrontUseCase) ListContactMessages(ctx context.Context, in dto.ContactListRequest) (*dto.ContactListResponse, error) {
	in.DefaultPage()
	list, err := uc.messages.List(ctx, in.Unread, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ContactMessageResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toContactResponse(m))
	}
	return &dto.ContactListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// MarkContactRead marca un mensaje como leído.
func (uc *StorefrontUseCase) MarkContactRead(ctx context.Context, id string) error {
	return uc.messages.MarkRead(ctx, id)
}

func validReservationStatus(s string) bool {
	switch s {
	case entity.ReservationPending, entity.ReservationConfirmed, entity.ReservationCanceled:
		return true
	}
	return false
}

func toReservationResponse(r *entity.Reservation) dto.ReservationResponse {
	return dto.ReservationResponse{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		Guests:      r.Guests,
		ReservedFor: r.ReservedFor,
		Notes:       r.Notes,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
	}
}

func toContactResponse(m *entity.ContactMessage) dto.ContactMessageResponse {
	return dto.ContactMessageResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
}
