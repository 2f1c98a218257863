package repository

import "github.com/tu-usuario/transfers-api/internal/domain/entity"

// LedgerEntryRepository puerto del libro de movimientos (append-only).
type LedgerEntryRepository interface {
	Create(entry *entity.LedgerEntry) error
	// SumQtyDelta suma de deltas del par (sucursal, producto); debe reconciliar
	// con la suma de RemainingQty de los lotes.
	SumQtyDelta(tenantID, branchID, productID string) (int64, error)
	ListByBranchProduct(tenantID, branchID, productID string, limit, offset int) ([]*entity.LedgerEntry, error)
}
