package http

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/transfers-api/internal/domain"
)

// Cada sentinel de dominio tiene un código y status fijos, incluso envuelto
// con detalle.
func TestClassify_MapeoDeSentinels(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{domain.ErrValidation, "VALIDATION_ERROR", fiber.StatusBadRequest},
		{domain.ErrUnauthorized, "UNAUTHORIZED", fiber.StatusUnauthorized},
		{domain.ErrPermissionDenied, "PERMISSION_DENIED", fiber.StatusForbidden},
		{domain.ErrNotFound, "NOT_FOUND", fiber.StatusNotFound},
		{domain.ErrStaleVersion, "STALE_VERSION", fiber.StatusConflict},
		{domain.ErrDuplicate, "DUPLICATE", fiber.StatusConflict},
		{domain.ErrOutOfOrder, "OUT_OF_ORDER", fiber.StatusConflict},
		{domain.ErrInsufficientStock, "INSUFFICIENT_STOCK", fiber.StatusConflict},
		{domain.ErrConflict, "CONFLICT", fiber.StatusConflict},
		{domain.ErrBusy, "BUSY", fiber.StatusServiceUnavailable},
		{fmt.Errorf("algo inesperado"), "INTERNAL", fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			code, status, msg := classify(fmt.Errorf("%w: detalle", tc.err))
			assert.Equal(t, tc.code, code)
			assert.Equal(t, tc.status, status)
			assert.NotEmpty(t, msg)
		})
	}
}

// Un Conflict anidado bajo StaleVersion gana por orden de chequeo: ambos son
// 409 pero el código distingue la causa.
func TestClassify_ErroresEnvueltos(t *testing.T) {
	err := fmt.Errorf("transfer abc version 3: %w", domain.ErrStaleVersion)
	code, status, _ := classify(err)
	assert.Equal(t, "STALE_VERSION", code)
	assert.Equal(t, fiber.StatusConflict, status)
}
