package dto

import "time"

// AdjustStockRequest body para POST /api/stock/adjustments.
// Qty positivo crea un lote nuevo (unit_cost_minor_units obligatorio);
// Qty negativo consume en orden FIFO.
type AdjustStockRequest struct {
	BranchID           string `json:"branch_id" validate:"required"`
	ProductID          string `json:"product_id" validate:"required"`
	Qty                int64  `json:"qty" validate:"required"`
	UnitCostMinorUnits int64  `json:"unit_cost_minor_units,omitempty"`
	Reason             string `json:"reason,omitempty"`
}

// StockLotResponse un lote FIFO en respuestas.
type StockLotResponse struct {
	ID                 string    `json:"id"`
	BranchID           string    `json:"branch_id"`
	ProductID          string    `json:"product_id"`
	ReceivedAt         time.Time `json:"received_at"`
	OriginalQty        int64     `json:"original_qty"`
	RemainingQty       int64     `json:"remaining_qty"`
	UnitCostMinorUnits int64     `json:"unit_cost_minor_units"`
}

// LedgerEntryResponse un asiento del libro en respuestas.
type LedgerEntryResponse struct {
	ID                 string    `json:"id"`
	BranchID           string    `json:"branch_id"`
	ProductID          string    `json:"product_id"`
	Kind               string    `json:"kind"`
	QtyDelta           int64     `json:"qty_delta"`
	UnitCostMinorUnits int64     `json:"unit_cost_minor_units"`
	LotID              string    `json:"lot_id"`
	OccurredAt         time.Time `json:"occurred_at"`
	ReferenceID        string    `json:"reference_id,omitempty"`
}

// OnHandResponse existencias actuales de un (sucursal, producto).
type OnHandResponse struct {
	BranchID  string `json:"branch_id"`
	ProductID string `json:"product_id"`
	OnHandQty int64  `json:"on_hand_qty"`
}

// ReconciliationResponse resultado del chequeo libro vs. lotes.
type ReconciliationResponse struct {
	BranchID   string `json:"branch_id"`
	ProductID  string `json:"product_id"`
	OnHandQty  int64  `json:"on_hand_qty"`
	LedgerQty  int64  `json:"ledger_qty"`
	Consistent bool   `json:"consistent"`
}
