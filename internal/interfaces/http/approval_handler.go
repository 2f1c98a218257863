package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/transfers-api/internal/application/approval"
	"github.com/tu-usuario/transfers-api/internal/application/dto"
)

// ApprovalHandler maneja reglas de aprobación y progreso por traslado (protegido).
type ApprovalHandler struct {
	uc *approval.ApprovalUseCase
}

// NewApprovalHandler construye el handler.
func NewApprovalHandler(uc *approval.ApprovalUseCase) *ApprovalHandler {
	return &ApprovalHandler{uc: uc}
}

// CreateRule registra una regla de aprobación.
func (h *ApprovalHandler) CreateRule(c *fiber.Ctx) error {
	var in dto.CreateApprovalRuleRequest
	if err := c.BodyParser(&in); err != nil {
		return failValidation(c, "cuerpo inválido")
	}
	out, err := h.uc.CreateRule(c.Context(), GetTenantID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, out)
}

// UpdateRule actualiza una regla; condiciones y niveles se reemplazan completos.
func (h *ApprovalHandler) UpdateRule(c *fiber.Ctx) error {
	var in dto.UpdateApprovalRuleRequest
	if err := c.BodyParser(&in); err != nil {
		return failValidation(c, "cuerpo inválido")
	}
	out, err := h.uc.UpdateRule(c.Context(), GetTenantID(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// DeleteRule desactiva la regla (borrado lógico).
func (h *ApprovalHandler) DeleteRule(c *fiber.Ctx) error {
	if err := h.uc.DeleteRule(c.Context(), GetTenantID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

// RestoreRule reactiva una regla desactivada.
func (h *ApprovalHandler) RestoreRule(c *fiber.Ctx) error {
	if err := h.uc.RestoreRule(c.Context(), GetTenantID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"restored": true})
}

// GetRule devuelve una regla con condiciones y niveles.
func (h *ApprovalHandler) GetRule(c *fiber.Ctx) error {
	out, err := h.uc.GetRule(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// ListRules lista reglas del tenant; include_inactive=true incluye desactivadas.
func (h *ApprovalHandler) ListRules(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return failValidation(c, "parámetros inválidos")
	}
	page.DefaultPage()
	includeInactive := c.QueryBool("include_inactive")
	out, err := h.uc.ListRules(c.Context(), GetTenantID(c), includeInactive, page.Limit, page.Offset)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// GetProgress devuelve el progreso de aprobación de un traslado.
func (h *ApprovalHandler) GetProgress(c *fiber.Ctx) error {
	out, err := h.uc.GetProgress(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// SubmitApproval firma un nivel de aprobación del traslado.
func (h *ApprovalHandler) SubmitApproval(c *fiber.Ctx) error {
	var in dto.SubmitApprovalRequest
	if err := c.BodyParser(&in); err != nil {
		return failValidation(c, "cuerpo inválido")
	}
	out, err := h.uc.SubmitApproval(c.Context(), GetTenantID(c), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}
