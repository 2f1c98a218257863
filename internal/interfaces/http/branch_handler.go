package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/transfers-api/internal/application/dto"
	"github.com/tu-usuario/transfers-api/internal/application/usecase"
)

// BranchHandler maneja el registro de sucursales y membresías (protegido).
type BranchHandler struct {
	uc *usecase.BranchUseCase
}

// NewBranchHandler construye el handler.
func NewBranchHandler(uc *usecase.BranchUseCase) *BranchHandler {
	return &BranchHandler{uc: uc}
}

// Create registra una sucursal.
func (h *BranchHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBranchRequest
	if err := c.BodyParser(&in); err != nil {
		return failValidation(c, "cuerpo inválido")
	}
	out, err := h.uc.Create(GetTenantID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, out)
}

// GetByID devuelve una sucursal.
func (h *BranchHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(GetTenantID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// List lista las sucursales del tenant.
func (h *BranchHandler) List(c *fiber.Ctx) error {
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

// AddMember vincula un usuario a la sucursal.
func (h *BranchHandler) AddMember(c *fiber.Ctx) error {
	var in dto.AddBranchMemberRequest
	if err := c.BodyParser(&in); err != nil {
		return failValidation(c, "cuerpo inválido")
	}
	if err := h.uc.AddMember(GetTenantID(c), c.Params("id"), in); err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, fiber.Map{"added": true})
}
