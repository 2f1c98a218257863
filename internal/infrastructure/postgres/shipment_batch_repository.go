package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/domain/repository"
)

var _ repository.ShipmentBatchRepository = (*ShipmentBatchRepo)(nil)

// ShipmentBatchRepo persistencia de batches de despacho/recepción sobre
// PostgreSQL. Los batches son inmutables una vez creados.
type ShipmentBatchRepo struct {
	q Querier
}

// NewShipmentBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShipmentBatchRepository(q Querier) *ShipmentBatchRepo {
	return &ShipmentBatchRepo{q: q}
}

// Create persiste el batch y sus líneas.
func (r *ShipmentBatchRepo) Create(b *entity.ShipmentBatch) error {
	ctx := context.Background()
	query := `
		INSERT INTO shipment_batches (id, transfer_id, tenant_id, batch_number, kind, occurred_at, actor_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.TransferID, b.TenantID, b.BatchNumber, b.Kind, b.OccurredAt, b.ActorUserID)
	if err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	for _, l := range b.Lines {
		lineQuery := `
			INSERT INTO batch_lines (id, batch_id, item_id, product_id, qty, unit_cost_minor_units)
			VALUES ($1, $2, $3, $4, $5, $6)`
		if _, err := r.q.Exec(ctx, lineQuery,
			l.ID, l.BatchID, l.ItemID, l.ProductID, l.Qty, l.UnitCostMinorUnits); err != nil {
			return fmt.Errorf("create batch line: %w", err)
		}
	}
	return nil
}

// ListByTransfer batches del traslado en orden de ocurrencia, con sus líneas.
func (r *ShipmentBatchRepo) ListByTransfer(tenantID, transferID string) ([]*entity.ShipmentBatch, error) {
	query := `
		SELECT id, transfer_id, tenant_id, batch_number, kind, occurred_at, actor_user_id
		FROM shipment_batches
		WHERE tenant_id = $1 AND transfer_id = $2
		ORDER BY occurred_at ASC, batch_number ASC`
	rows, err := r.q.Query(context.Background(), query, tenantID, transferID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.ShipmentBatch
	for rows.Next() {
		var b entity.ShipmentBatch
		if err := rows.Scan(&b.ID, &b.TransferID, &b.TenantID, &b.BatchNumber,
			&b.Kind, &b.OccurredAt, &b.ActorUserID); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, b := range list {
		if err := r.loadLines(b); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// NextBatchNumber consecutivo siguiente por traslado y tipo, empezando en 1.
func (r *ShipmentBatchRepo) NextBatchNumber(tenantID, transferID, kind string) (int, error) {
	query := `
		SELECT COALESCE(MAX(batch_number), 0) + 1
		FROM shipment_batches
		WHERE tenant_id = $1 AND transfer_id = $2 AND kind = $3`
	var n int
	if err := r.q.QueryRow(context.Background(), query, tenantID, transferID, kind).Scan(&n); err != nil {
		return 0, fmt.Errorf("next batch number: %w", err)
	}
	return n, nil
}

// CountByTransfer número de batches del traslado, de cualquier tipo.
func (r *ShipmentBatchRepo) CountByTransfer(tenantID, transferID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM shipment_batches
		WHERE tenant_id = $1 AND transfer_id = $2`
	var n int
	if err := r.q.QueryRow(context.Background(), query, tenantID, transferID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count batches: %w", err)
	}
	return n, nil
}

func (r *ShipmentBatchRepo) loadLines(b *entity.ShipmentBatch) error {
	query := `
		SELECT id, batch_id, item_id, product_id, qty, unit_cost_minor_units
		FROM batch_lines
		WHERE batch_id = $1
		ORDER BY id ASC`
	rows, err := r.q.Query(context.Background(), query, b.ID)
	if err != nil {
		return fmt.Errorf("list batch lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.BatchLine
		if err := rows.Scan(&l.ID, &l.BatchID, &l.ItemID, &l.ProductID, &l.Qty, &l.UnitCostMinorUnits); err != nil {
			return fmt.Errorf("scan batch line: %w", err)
		}
		b.Lines = append(b.Lines, &l)
	}
	return rows.Err()
}
