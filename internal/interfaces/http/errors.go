package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Orden importa: ErrRfqClosed y ErrInvalidTransition antes que los genéricos de 409.
var errorTable = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrRfqClosed, fiber.StatusConflict, "RFQ_CLOSED"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrInvalidState, fiber.StatusConflict, "INVALID_STATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrBackendUnavailable, fiber.StatusServiceUnavailable, "BACKEND_UNAVAILABLE"},
}

// writeError traduce un error de caso de uso a la respuesta HTTP. Los 5xx se registran con el
// paso que falló; el cliente solo recibe un mensaje genérico.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorTable {
		if !errors.Is(err, m.target) {
			continue
		}
		resp := dto.ErrorResponse{Code: m.code, Message: err.Error()}
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			resp.Message = "datos inválidos"
			resp.Fields = ve.Fields
		}
		if m.status >= fiber.StatusInternalServerError {
			requestLog(c).Error().Err(err).Str("step", domain.FailedStep(err)).Msg("almacenamiento no disponible")
			resp.Message = "servicio no disponible, intente más tarde"
		}
		return c.Status(m.status).JSON(resp)
	}
	requestLog(c).Error().Err(err).Str("step", domain.FailedStep(err)).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
