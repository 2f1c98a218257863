package entity

import "time"

// StockLot es una capa de costo FIFO de un producto en una sucursal.
// Se crea en cada entrada (ajuste positivo o recepción de traslado) y nunca se
// elimina: queda inactiva cuando RemainingQty llega a cero.
// Invariante: 0 <= RemainingQty <= OriginalQty.
type StockLot struct {
	ID                 string
	TenantID           string
	BranchID           string
	ProductID          string
	ReceivedAt         time.Time
	OriginalQty        int64
	RemainingQty       int64
	UnitCostMinorUnits int64
	// Seq desempata lotes con el mismo ReceivedAt (orden de inserción).
	Seq int64
}

// Depleted indica si el lote ya no tiene existencias.
func (l *StockLot) Depleted() bool {
	return l.RemainingQty <= 0
}
