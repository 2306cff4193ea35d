package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/domain"
)

// Códigos de error de la API.
const (
	CodeNoAccessToken       = "NoAccessToken"
	CodeAccessTokenExpired  = "AccessTokenExpired"
	CodeAccessTokenInvalid  = "AccessTokenInvalid"
	CodeAccessDenied        = "AccessDenied"
	CodeInvalidCredentials  = "InvalidCredentials"
	CodeInvalidRefreshToken = "InvalidOrExpiredRefreshToken"
	CodeMissingFields       = "MissingFields"
	CodeValidation          = "ValidationError"
	CodeEmptyCart           = "EmptyCart"
	CodeInvalidAddress      = "InvalidDeliveryAddress"
	CodeInvalidTransition   = "InvalidTransition"
	CodeConflict            = "Conflict"
	CodeNotFound            = "NotFound"
	CodeTooManyRequests     = "TooManyRequests"
	CodeUpstream            = "UpstreamError"
	CodeConfig              = "ConfigError"
	CodeInternal            = "InternalError"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// el orden importa: los más específicos primero
var errorTable = []errorMapping{
	{domain.ErrNoAccessToken, fiber.StatusUnauthorized, CodeNoAccessToken},
	{domain.ErrTokenExpired, fiber.StatusUnauthorized, CodeAccessTokenExpired},
	{domain.ErrTokenInvalid, fiber.StatusUnauthorized, CodeAccessTokenInvalid},
	{domain.ErrInvalidCredentials, fiber.StatusUnauthorized, CodeInvalidCredentials},
	{domain.ErrRefreshTokenInvalid, fiber.StatusUnauthorized, CodeInvalidRefreshToken},
	{domain.ErrAccessDenied, fiber.StatusForbidden, CodeAccessDenied},
	{domain.ErrMissingFields, fiber.StatusBadRequest, CodeMissingFields},
	{domain.ErrEmptyCart, fiber.StatusBadRequest, CodeEmptyCart},
	{domain.ErrInvalidDeliveryAddress, fiber.StatusBadRequest, CodeInvalidAddress},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, CodeValidation},
	{domain.ErrInvalidTransition, fiber.StatusConflict, CodeInvalidTransition},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, CodeConflict},
	{domain.ErrConflict, fiber.StatusConflict, CodeConflict},
	{domain.ErrNotFound, fiber.StatusNotFound, CodeNotFound},
	{domain.ErrConfig, fiber.StatusInternalServerError, CodeConfig},
}

// writeError traduce un error de dominio a la respuesta JSON {error, code}.
// Los errores no clasificados se ocultan tras un mensaje genérico.
func writeError(c *fiber.Ctx, err error) error {
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: ue.Message, Code: CodeUpstream})
	}
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			msg := err.Error()
			if m.status == fiber.StatusInternalServerError {
				msg = m.target.Error()
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Error: msg, Code: m.code})
		}
	}
	logFrom(c).Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "error interno", Code: CodeInternal})
}

// badBody respuesta para cuerpos JSON ilegibles.
func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "cuerpo inválido", Code: CodeValidation})
}

// ErrorHandler manejador global de fiber con la misma forma de error.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = CodeNotFound
		case fiber.StatusMethodNotAllowed, fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge:
			code = CodeValidation
		case fiber.StatusTooManyRequests:
			code = CodeTooManyRequests
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Error: fe.Message, Code: code})
	}
	return writeError(c, err)
}
