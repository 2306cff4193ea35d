package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/restaurante-api/internal/application/auth"
	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/application/usecase"
	"github.com/jhoicas/restaurante-api/internal/domain"
)

// StaffHandler gestión de usuarios del staff; solo admins.
type StaffHandler struct {
	uc   *usecase.StaffUseCase
	caps *auth.CapabilityTable
}

// NewStaffHandler construye el handler.
func NewStaffHandler(uc *usecase.StaffUseCase, caps *auth.CapabilityTable) *StaffHandler {
	return &StaffHandler{uc: uc, caps: caps}
}

// Me godoc
// @Summary      Perfil del staff autenticado
// @Description  Incluye las capacidades del rol vigente.
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StaffProfileResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/admin/auth/me [get]
func (h *StaffHandler) Me(c *fiber.Ctx) error {
	p := GetPrincipal(c)
	if p == nil {
		return writeError(c, domain.ErrNoAccessToken)
	}
	out, err := h.uc.Get(c.UserContext(), p.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StaffProfileResponse{
		StaffResponse: *out,
		Capabilities:  h.caps.Actions(out.Role),
	})
}

// Create godoc
// @Summary      Crear usuario del staff
// @Tags         staff
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStaffRequest  true  "Datos del usuario"
// @Success      201   {object}  dto.StaffResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/staff [post]
func (h *StaffHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStaffRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *StaffHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *StaffHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	out, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update cambia perfil, rol o contraseña. El cambio de rol aplica en la siguiente petición.
func (h *StaffHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateStaffRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete un admin no puede borrarse a sí mismo.
func (h *StaffHandler) Delete(c *fiber.Ctx) error {
	p := GetPrincipal(c)
	if p == nil {
		return writeError(c, domain.ErrNoAccessToken)
	}
	if err := h.uc.Delete(c.UserContext(), p.ID, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
