package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/restaurante-api/internal/application/checkout"
	"github.com/jhoicas/restaurante-api/internal/application/dto"
)

// OrderHandler pedidos en el back office.
type OrderHandler struct {
	uc *checkout.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *checkout.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "new|created|processing|completed|failed|canceled"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Desplazamiento"  default(0)
// @Success      200  {object}  dto.OrderListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var in dto.OrderListRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/orders/:id
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar pedido (staff)
// @Description  Corrección manual de status e is_paid. No pasa por la máquina de estados.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del pedido"
// @Param        body  body  dto.OrderOverrideRequest  true  "status / is_paid"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	var in dto.OrderOverrideRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Override(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Cancel POST /api/orders/:id/cancel. 409 InvalidTransition si el pedido ya terminó.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/orders/:id
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Receipt godoc
// @Summary      Recibo PDF
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/receipt [get]
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	pdf, err := h.uc.Receipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, c.Params("id"), pdf)
}

func sendPDF(c *fiber.Ctx, orderID string, pdf []byte) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="recibo-%s.pdf"`, orderID))
	return c.Send(pdf)
}
