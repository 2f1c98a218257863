package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/transfers-api/internal/application/dto"
	"github.com/tu-usuario/transfers-api/internal/application/shipping"
	"github.com/tu-usuario/transfers-api/internal/application/transfer"
)

// TransferHandler maneja el ciclo de vida de traslados (protegido).
type TransferHandler struct {
	uc       *transfer.TransferUseCase
	shipping *shipping.ShippingUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.TransferUseCase, shippingUC *shipping.ShippingUseCase) *TransferHandler {
	return &TransferHandler{uc: uc, shipping: shippingUC}
}

// Create registra un traslado en REQUESTED, evaluando reglas de aprobación.
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return failValidation(c, "cuerpo inválido")
	}
	out, err := h.uc.Create(c.Context(), GetTenantID(c), GetUserID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, out)
}

// GetByID devuelve un traslado con sus líneas.
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// List lista traslados del tenant con filtros, en orden de prioridad.
func (h *TransferHandler) List(c *fiber.Ctx) error {
	var in dto.ListTransfersRequest
	if err := c.QueryParser(&in); err != nil {
		return failValidation(c, "parámetros inválidos")
	}
	out, err := h.uc.List(c.Context(), GetTenantID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// Approve aprueba un traslado (requiere la compuerta de aprobación satisfecha).
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return failValidation(c, "cuerpo inválido")
	}
	out, err := h.uc.Approve(c.Context(), GetTenantID(c), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// Reject rechaza un traslado en REQUESTED.
func (h *TransferHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return failValidation(c, "cuerpo inválido")
	}
	out, err := h.uc.Reject(c.Context(), GetTenantID(c), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// Cancel cancela un traslado sin despachos.
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return failValidation(c, "cuerpo inválido")
	}
	out, err := h.uc.Cancel(c.Context(), GetTenantID(c), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// UpdatePriority cambia la prioridad (solo REQUESTED/APPROVED).
func (h *TransferHandler) UpdatePriority(c *fiber.Ctx) error {
	var in dto.UpdatePriorityRequest
	if err := c.BodyParser(&in); err != nil {
		return failValidation(c, "cuerpo inválido")
	}
	out, err := h.uc.UpdatePriority(c.Context(), GetTenantID(c), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// Ship registra un batch de despacho consumiendo lotes FIFO en origen.
func (h *TransferHandler) Ship(c *fiber.Ctx) error {
	var in dto.ShipTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return failValidation(c, "cuerpo inválido")
	}
	out, err := h.shipping.Ship(c.Context(), GetTenantID(c), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return fail(c, err)
	}
	status := fiber.StatusCreated
	if out.Replayed {
		status = fiber.StatusOK
	}
	return respond(c, status, out)
}

// Receive registra un batch de recepción creando lotes en destino.
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return failValidation(c, "cuerpo inválido")
	}
	out, err := h.shipping.Receive(c.Context(), GetTenantID(c), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return fail(c, err)
	}
	status := fiber.StatusCreated
	if out.Replayed {
		status = fiber.StatusOK
	}
	return respond(c, status, out)
}

// ListBatches devuelve los batches de despacho/recepción del traslado.
func (h *TransferHandler) ListBatches(c *fiber.Ctx) error {
	out, err := h.shipping.ListBatches(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}
