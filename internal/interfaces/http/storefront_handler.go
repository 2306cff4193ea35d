package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/application/usecase"
)

// StorefrontHandler reservas y mensajes de contacto.
type StorefrontHandler struct {
	uc *usecase.StorefrontUseCase
}

// NewStorefrontHandler construye el handler.
func NewStorefrontHandler(uc *usecase.StorefrontUseCase) *StorefrontHandler {
	return &StorefrontHandler{uc: uc}
}

// CreateReservation godoc
// @Summary      Solicitar reserva
// @Tags         storefront
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReservationRequest  true  "Datos de la reserva"
// @Success      201   {object}  dto.ReservationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reservations [post]
func (h *StorefrontHandler) CreateReservation(c *fiber.Ctx) error {
	var in dto.CreateReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateReservation(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListReservations GET /api/reservations?status=pending
func (h *StorefrontHandler) ListReservations(c *fiber.Ctx) error {
	var in dto.ReservationListRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ListReservations(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateReservationStatus PUT /api/reservations/:id
func (h *StorefrontHandler) UpdateReservationStatus(c *fiber.Ctx) error {
	var in dto.UpdateReservationStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateReservationStatus(c.UserContext(), c.Params("id"), in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SubmitContact godoc
// @Summary      Enviar mensaje de contacto
// @Tags         storefront
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ContactRequest  true  "Mensaje"
// @Success      201   {object}  dto.ContactMessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/contact [post]
func (h *StorefrontHandler) SubmitContact(c *fiber.Ctx) error {
	var in dto.ContactRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SubmitContact(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListContactMessages GET /api/contact-messages?unread=true
func (h *StorefrontHandler) ListContactMessages(c *fiber.Ctx) error {
	var in dto.ContactListRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ListContactMessages(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// MarkContactRead POST /api/contact-messages/:id/read
func (h *StorefrontHandler) MarkContactRead(c *fiber.Ctx) error {
	if err := h.uc.MarkContactRead(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
