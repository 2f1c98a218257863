package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/domain/repository"
)

var _ repository.LedgerEntryRepository = (*LedgerEntryRepo)(nil)

// LedgerEntryRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). Los asientos nunca se actualizan ni se borran.
type LedgerEntryRepo struct {
	q Querier
}

// NewLedgerEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerEntryRepository(q Querier) *LedgerEntryRepo {
	return &LedgerEntryRepo{q: q}
}

// Create persiste un asiento del libro.
func (r *LedgerEntryRepo) Create(entry *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (id, tenant_id, branch_id, product_id, kind, qty_delta, unit_cost_minor_units, lot_id, occurred_at, reference_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.TenantID, entry.BranchID, entry.ProductID, entry.Kind,
		entry.QtyDelta, entry.UnitCostMinorUnits, entry.LotID, entry.OccurredAt,
		entry.ReferenceID, entry.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}

// SumQtyDelta suma de deltas del par (sucursal, producto), para reconciliación.
func (r *LedgerEntryRepo) SumQtyDelta(tenantID, branchID, productID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(qty_delta), 0)
		FROM ledger_entries
		WHERE tenant_id = $1 AND branch_id = $2 AND product_id = $3`
	var sum int64
	if err := r.q.QueryRow(context.Background(), query, tenantID, branchID, productID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum qty delta: %w", err)
	}
	return sum, nil
}

// ListByBranchProduct asientos del par (sucursal, producto), más recientes primero.
func (r *LedgerEntryRepo) ListByBranchProduct(tenantID, branchID, productID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT id, tenant_id, branch_id, product_id, kind, qty_delta, unit_cost_minor_units, lot_id, occurred_at, reference_id, created_by
		FROM ledger_entries
		WHERE tenant_id = $1 AND branch_id = $2 AND product_id = $3
		ORDER BY occurred_at DESC, id DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(context.Background(), query, tenantID, branchID, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(&e.ID, &e.TenantID, &e.BranchID, &e.ProductID, &e.Kind,
			&e.QtyDelta, &e.UnitCostMinorUnits, &e.LotID, &e.OccurredAt,
			&e.ReferenceID, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
