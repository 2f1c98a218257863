package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/transfers-api/internal/application/dto"
	"github.com/tu-usuario/transfers-api/internal/application/ledger"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
)

// StockHandler maneja consultas y ajustes del libro de inventario (protegido).
type StockHandler struct {
	uc *ledger.LedgerUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *ledger.LedgerUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// Adjust registra un ajuste manual: qty positivo crea un lote, negativo
// consume FIFO.
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return failValidation(c, "cuerpo inválido")
	}
	err := h.uc.Adjust(c.Context(), GetTenantID(c), GetUserID(c), ledger.AdjustmentInput{
		BranchID:           in.BranchID,
		ProductID:          in.ProductID,
		Qty:                in.Qty,
		UnitCostMinorUnits: in.UnitCostMinorUnits,
		Reason:             in.Reason,
	})
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, fiber.Map{"adjusted": true})
}

// OnHand existencias actuales de un (sucursal, producto).
func (h *StockHandler) OnHand(c *fiber.Ctx) error {
	branchID, productID := c.Query("branch_id"), c.Query("product_id")
	qty, err := h.uc.OnHand(c.Context(), GetTenantID(c), branchID, productID)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, dto.OnHandResponse{
		BranchID:  branchID,
		ProductID: productID,
		OnHandQty: qty,
	})
}

// ListLots lotes FIFO del par (sucursal, producto), incluyendo agotados.
func (h *StockHandler) ListLots(c *fiber.Ctx) error {
	branchID, productID := c.Query("branch_id"), c.Query("product_id")
	lots, err := h.uc.ListLots(c.Context(), GetTenantID(c), branchID, productID)
	if err != nil {
		return fail(c, err)
	}
	out := make([]dto.StockLotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, toLotResponse(l))
	}
	return respond(c, fiber.StatusOK, out)
}

// ListEntries asientos del libro del par (sucursal, producto).
func (h *StockHandler) ListEntries(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return failValidation(c, "parámetros inválidos")
	}
	page.DefaultPage()
	branchID, productID := c.Query("branch_id"), c.Query("product_id")
	entries, err := h.uc.ListEntries(c.Context(), GetTenantID(c), branchID, productID, page.Limit, page.Offset)
	if err != nil {
		return fail(c, err)
	}
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return respond(c, fiber.StatusOK, out)
}

// Reconcile verifica libro vs. lotes para un (sucursal, producto).
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	branchID, productID := c.Query("branch_id"), c.Query("product_id")
	rep, err := h.uc.Reconcile(c.Context(), GetTenantID(c), branchID, productID)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, dto.ReconciliationResponse{
		BranchID:   rep.BranchID,
		ProductID:  rep.ProductID,
		OnHandQty:  rep.OnHandQty,
		LedgerQty:  rep.LedgerQty,
		Consistent: rep.Consistent,
	})
}

func toLotResponse(l *entity.StockLot) dto.StockLotResponse {
	return dto.StockLotResponse{
		ID:                 l.ID,
		BranchID:           l.BranchID,
		ProductID:          l.ProductID,
		ReceivedAt:         l.ReceivedAt,
		OriginalQty:        l.OriginalQty,
		RemainingQty:       l.RemainingQty,
		UnitCostMinorUnits: l.UnitCostMinorUnits,
	}
}

func toEntryResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:                 e.ID,
		BranchID:           e.BranchID,
		ProductID:          e.ProductID,
		Kind:               e.Kind,
		QtyDelta:           e.QtyDelta,
		UnitCostMinorUnits: e.UnitCostMinorUnits,
		LotID:              e.LotID,
		OccurredAt:         e.OccurredAt,
		ReferenceID:        e.ReferenceID,
	}
}
