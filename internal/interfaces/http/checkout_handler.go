package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/restaurante-api/internal/application/checkout"
	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/domain"
)

// HeaderIdempotencyKey cabecera opcional que deduplica reintentos de checkout.
const HeaderIdempotencyKey = "Idempotency-Key"

// CheckoutHandler carrito, sesión de pago, polling y webhook.
type CheckoutHandler struct {
	uc *checkout.UseCase
}

// NewCheckoutHandler construye el handler.
func NewCheckoutHandler(uc *checkout.UseCase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

// ValidateCart godoc
// @Summary      Revalidar carrito
// @Description  Recalcula precios con el catálogo vigente y devuelve los productos descartados.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CartValidateRequest  true  "Líneas del carrito"
// @Success      200   {object}  dto.CartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/cart/validate [post]
func (h *CheckoutHandler) ValidateCart(c *fiber.Ctx) error {
	var in dto.CartValidateRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ValidateCart(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateSession godoc
// @Summary      Crear sesión de pago
// @Description  Crea el pedido con precios del servidor y abre una Checkout Session. Con Idempotency-Key un reintento devuelve la misma sesión.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string               false  "Clave de idempotencia"
// @Param        body             body    dto.CheckoutRequest  true   "Carrito, cliente y entrega"
// @Success      200   {object}  dto.CheckoutResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/stripe/create-checkout-session [post]
func (h *CheckoutHandler) CreateSession(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if key := strings.TrimSpace(c.Get(HeaderIdempotencyKey)); key != "" {
		in.IdempotencyKey = key
	}
	out, err := h.uc.CreateCheckoutSession(c.UserContext(), in, GetPrincipal(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SessionStatus godoc
// @Summary      Estado de la sesión de pago
// @Description  Consulta la pasarela y concilia el pedido. Respuestas cacheadas unos segundos.
// @Tags         checkout
// @Produce      json
// @Param        session_id  query  string  true  "ID de la Checkout Session"
// @Success      200  {object}  dto.SessionStatusResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stripe/session-status [get]
func (h *CheckoutHandler) SessionStatus(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Query("session_id"))
	if id == "" {
		return writeError(c, domain.ErrMissingFields)
	}
	out, err := h.uc.SessionStatus(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Webhook godoc
// @Summary      Webhook de Stripe
// @Description  Verifica Stripe-Signature y concilia. Eventos no manejados responden 200.
// @Tags         checkout
// @Accept       json
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stripe/webhook [post]
func (h *CheckoutHandler) Webhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)
	if err := h.uc.HandleWebhook(c.UserContext(), payload, c.Get("Stripe-Signature")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"received": true})
}
