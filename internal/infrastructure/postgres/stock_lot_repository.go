package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/domain/repository"
)

var _ repository.StockLotRepository = (*StockLotRepo)(nil)

// StockLotRepo implementación de StockLotRepository sobre PostgreSQL (usable con pool o tx).
// La columna seq es BIGSERIAL: el orden de inserción desempata los ReceivedAt iguales.
type StockLotRepo struct {
	q Querier
}

// NewStockLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLotRepository(q Querier) *StockLotRepo {
	return &StockLotRepo{q: q}
}

// Create inserta un lote nuevo; nunca fusiona con lotes existentes.
func (r *StockLotRepo) Create(lot *entity.StockLot) error {
	query := `
		INSERT INTO stock_lots (id, tenant_id, branch_id, product_id, received_at, original_qty, remaining_qty, unit_cost_minor_units)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq`
	err := r.q.QueryRow(context.Background(), query,
		lot.ID, lot.TenantID, lot.BranchID, lot.ProductID, lot.ReceivedAt,
		lot.OriginalQty, lot.RemainingQty, lot.UnitCostMinorUnits,
	).Scan(&lot.Seq)
	if err != nil {
		return fmt.Errorf("create stock lot: %w", err)
	}
	return nil
}

// ListAvailableForUpdate lotes con existencias en orden FIFO, con bloqueo de
// fila (SELECT FOR UPDATE) para serializar consumos concurrentes del par
// (sucursal, producto).
func (r *StockLotRepo) ListAvailableForUpdate(tenantID, branchID, productID string) ([]*entity.StockLot, error) {
	query := `
		SELECT id, tenant_id, branch_id, product_id, received_at, original_qty, remaining_qty, unit_cost_minor_units, seq
		FROM stock_lots
		WHERE tenant_id = $1 AND branch_id = $2 AND product_id = $3 AND remaining_qty > 0
		ORDER BY received_at ASC, seq ASC
		FOR UPDATE`
	return r.list(query, tenantID, branchID, productID)
}

// List lotes del par (sucursal, producto) en orden FIFO, incluyendo agotados.
func (r *StockLotRepo) List(tenantID, branchID, productID string) ([]*entity.StockLot, error) {
	query := `
		SELECT id, tenant_id, branch_id, product_id, received_at, original_qty, remaining_qty, unit_cost_minor_units, seq
		FROM stock_lots
		WHERE tenant_id = $1 AND branch_id = $2 AND product_id = $3
		ORDER BY received_at ASC, seq ASC`
	return r.list(query, tenantID, branchID, productID)
}

func (r *StockLotRepo) list(query, tenantID, branchID, productID string) ([]*entity.StockLot, error) {
	rows, err := r.q.Query(context.Background(), query, tenantID, branchID, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock lots: %w", mapLockError(err))
	}
	defer rows.Close()
	var list []*entity.StockLot
	for rows.Next() {
		var l entity.StockLot
		if err := rows.Scan(&l.ID, &l.TenantID, &l.BranchID, &l.ProductID, &l.ReceivedAt,
			&l.OriginalQty, &l.RemainingQty, &l.UnitCostMinorUnits, &l.Seq); err != nil {
			return nil, fmt.Errorf("scan stock lot: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// DecrementRemaining aplica un decremento a un lote. El CHECK remaining_qty >= 0
// respalda el invariante; el plan FIFO ya validó el saldo bajo lock.
func (r *StockLotRepo) DecrementRemaining(lotID string, qty int64) error {
	query := `
		UPDATE stock_lots SET remaining_qty = remaining_qty - $2
		WHERE id = $1 AND remaining_qty >= $2`
	tag, err := r.q.Exec(context.Background(), query, lotID, qty)
	if err != nil {
		return fmt.Errorf("decrement lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("decrement lot %s: saldo insuficiente", lotID)
	}
	return nil
}

// SumRemaining existencias actuales del par (sucursal, producto).
func (r *StockLotRepo) SumRemaining(tenantID, branchID, productID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(remaining_qty), 0)
		FROM stock_lots
		WHERE tenant_id = $1 AND branch_id = $2 AND product_id = $3`
	var sum int64
	if err := r.q.QueryRow(context.Background(), query, tenantID, branchID, productID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum remaining: %w", err)
	}
	return sum, nil
}
