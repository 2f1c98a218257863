package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/transfers-api/internal/application/auth"
	"github.com/tu-usuario/transfers-api/internal/application/dto"
)

// AuthHandler maneja registro y login (público).
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Register crea un usuario nuevo dentro de un tenant.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return failValidation(c, "cuerpo inválido")
	}
	out, err := h.uc.RegisterUser(in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, out)
}

// Login autentica por email/contraseña y devuelve un JWT.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return failValidation(c, "cuerpo inválido")
	}
	out, err := h.uc.Login(in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}
