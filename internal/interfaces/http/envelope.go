package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tu-usuario/transfers-api/internal/application/dto"
	"github.com/tu-usuario/transfers-api/internal/domain"
)

// respond envuelve data en el envelope estándar con el status dado.
func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(dto.Envelope{Success: true, Data: data})
}

// fail traduce un error de dominio al envelope estándar de error. El
// correlationId se genera por respuesta para rastrear el fallo en logs.
func fail(c *fiber.Ctx, err error) error {
	code, status, msg := classify(err)
	body := &dto.ErrorBody{
		ErrorCode:         code,
		HTTPStatusCode:    status,
		UserFacingMessage: msg,
		CorrelationID:     uuid.NewString(),
	}
	if err.Error() != msg {
		body.DeveloperMessage = err.Error()
	}
	return c.Status(status).JSON(dto.Envelope{Success: false, Error: body})
}

// failValidation error 400 con mensaje explícito (cuerpos mal formados).
func failValidation(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.Envelope{Success: false, Error: &dto.ErrorBody{
		ErrorCode:         "VALIDATION_ERROR",
		HTTPStatusCode:    fiber.StatusBadRequest,
		UserFacingMessage: msg,
		CorrelationID:     uuid.NewString(),
	}})
}

// classify mapea los errores de dominio a (errorCode, httpStatus, mensaje).
// Los conflictos de versión y los duplicados comparten el 409: todos son
// recuperables recargando el recurso.
func classify(err error) (string, int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "VALIDATION_ERROR", fiber.StatusBadRequest, "datos inválidos"
	case errors.Is(err, domain.ErrUnauthorized):
		return "UNAUTHORIZED", fiber.StatusUnauthorized, "credenciales inválidas"
	case errors.Is(err, domain.ErrPermissionDenied):
		return "PERMISSION_DENIED", fiber.StatusForbidden, "operación no permitida para el actor"
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND", fiber.StatusNotFound, "recurso no encontrado"
	case errors.Is(err, domain.ErrStaleVersion):
		return "STALE_VERSION", fiber.StatusConflict, "versión desactualizada; recargue y reintente"
	case errors.Is(err, domain.ErrDuplicate):
		return "DUPLICATE", fiber.StatusConflict, "el recurso ya existe"
	case errors.Is(err, domain.ErrOutOfOrder):
		return "OUT_OF_ORDER", fiber.StatusConflict, "nivel de aprobación fuera de orden"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "INSUFFICIENT_STOCK", fiber.StatusConflict, "stock insuficiente para la operación"
	case errors.Is(err, domain.ErrConflict):
		return "CONFLICT", fiber.StatusConflict, "transición de estado ilegal"
	case errors.Is(err, domain.ErrBusy):
		return "BUSY", fiber.StatusServiceUnavailable, "recurso ocupado; reintente"
	default:
		return "INTERNAL", fiber.StatusInternalServerError, "error interno"
	}
}
