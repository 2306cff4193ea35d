package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/restaurante-api/internal/application/checkout"
	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/application/usecase"
	"github.com/jhoicas/restaurante-api/internal/domain"
)

// MeHandler autoservicio del cliente autenticado.
type MeHandler struct {
	customers *usecase.CustomerUseCase
	orders    *checkout.OrderUseCase
}

// NewMeHandler construye el handler.
func NewMeHandler(customers *usecase.CustomerUseCase, orders *checkout.OrderUseCase) *MeHandler {
	return &MeHandler{customers: customers, orders: orders}
}

func customerID(c *fiber.Ctx) (string, error) {
	p := GetPrincipal(c)
	if p == nil {
		return "", domain.ErrNoAccessToken
	}
	return p.ID, nil
}

// Get godoc
// @Summary      Mi perfil
// @Tags         me
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CustomerResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/me [get]
func (h *MeHandler) Get(c *fiber.Ctx) error {
	id, err := customerID(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.customers.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar mi perfil
// @Description  Cambiar la contraseña exige current_password salvo en cuentas sin contraseña (solo OAuth).
// @Tags         me
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateProfileRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.CustomerResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/me [put]
func (h *MeHandler) Update(c *fiber.Ctx) error {
	id, err := customerID(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateProfileRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.customers.UpdateProfile(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Orders GET /api/me/orders
func (h *MeHandler) Orders(c *fiber.Ctx) error {
	id, err := customerID(c)
	if err != nil {
		return writeError(c, err)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	out, err := h.orders.ListMine(c.UserContext(), id, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Order GET /api/me/orders/:id
func (h *MeHandler) Order(c *fiber.Ctx) error {
	id, err := customerID(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.orders.GetMine(c.UserContext(), id, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receipt GET /api/me/orders/:id/receipt
func (h *MeHandler) Receipt(c *fiber.Ctx) error {
	id, err := customerID(c)
	if err != nil {
		return writeError(c, err)
	}
	pdf, err := h.orders.ReceiptMine(c.UserContext(), id, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, c.Params("id"), pdf)
}
