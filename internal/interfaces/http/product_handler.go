package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/transfers-api/internal/application/dto"
	"github.com/tu-usuario/transfers-api/internal/application/usecase"
)

// ProductHandler maneja el catálogo de productos (protegido).
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create registra un producto.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return failValidation(c, "cuerpo inválido")
	}
	out, err := h.uc.Create(GetTenantID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, out)
}

// GetByID devuelve un producto.
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(GetTenantID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// List lista el catálogo del tenant.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return failValidation(c, "parámetros inválidos")
	}
	page.DefaultPage()
	out, err := h.uc.List(GetTenantID(c), page.Limit, page.Offset)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}
