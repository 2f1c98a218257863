package entity

import "time"

// Tipos de movimiento del libro de inventario.
const (
	LedgerKindAdjustment  = "ADJUSTMENT"
	LedgerKindTransferOut = "TRANSFER_OUT"
	LedgerKindTransferIn  = "TRANSFER_IN"
)

// LedgerEntry es un registro inmutable (append-only) de un movimiento de stock
// contra un lote. La suma de QtyDelta por (sucursal, producto) debe reconciliar
// con la suma de RemainingQty de sus lotes.
type LedgerEntry struct {
	ID                 string
	TenantID           string
	BranchID           string
	ProductID          string
	Kind               string
	QtyDelta           int64 // positivo entrada, negativo salida
	UnitCostMinorUnits int64
	LotID              string
	OccurredAt         time.Time
	ReferenceID        string // traslado, nota de ajuste, etc.
	CreatedBy          string // UserID
}
