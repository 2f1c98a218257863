package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/transfers-api/internal/domain"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo persistencia del agregado StockTransfer sobre PostgreSQL.
// La cabecera vive en stock_transfers y las líneas en transfer_items;
// siempre se hidratan juntas.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, tenant_id, transfer_number, source_branch_id, destination_branch_id,
		status, priority, requested_by_user_id, requested_at, reviewed_at, shipped_at,
		completed_at, rejection_reason, matched_rule_id, entity_version`

// Create persiste la cabecera y todas las líneas.
func (r *TransferRepo) Create(tr *entity.StockTransfer) error {
	ctx := context.Background()
	query := `
		INSERT INTO stock_transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		tr.ID, tr.TenantID, tr.TransferNumber, tr.SourceBranchID, tr.DestinationBranchID,
		tr.Status, tr.Priority, tr.RequestedByUserID, tr.RequestedAt, tr.ReviewedAt,
		tr.ShippedAt, tr.CompletedAt, tr.RejectionReason, tr.MatchedRuleID, tr.EntityVersion,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transfer %s: %w", tr.TransferNumber, domain.ErrDuplicate)
		}
		return fmt.Errorf("create transfer: %w", err)
	}
	for _, it := range tr.Items {
		if err := r.insertItem(ctx, it); err != nil {
			return err
		}
	}
	return nil
}

func (r *TransferRepo) insertItem(ctx context.Context, it *entity.TransferItem) error {
	query := `
		INSERT INTO transfer_items (id, transfer_id, product_id, qty_requested, qty_approved, qty_shipped, qty_received)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.TransferID, it.ProductID, it.QtyRequested, it.QtyApproved, it.QtyShipped, it.QtyReceived)
	if err != nil {
		return fmt.Errorf("create transfer item: %w", err)
	}
	return nil
}

// GetByID devuelve el traslado con líneas, o nil si no existe en el tenant.
func (r *TransferRepo) GetByID(tenantID, id string) (*entity.StockTransfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM stock_transfers
		WHERE tenant_id = $1 AND id = $2`
	tr, err := r.scanOne(r.q.QueryRow(context.Background(), query, tenantID, id))
	if err != nil || tr == nil {
		return tr, err
	}
	if err := r.loadItems(tr); err != nil {
		return nil, err
	}
	return tr, nil
}

// List devuelve traslados ordenados por prioridad (URGENT primero), luego
// requested_at DESC y por último id DESC como desempate estable.
func (r *TransferRepo) List(tenantID string, f repository.TransferFilter, limit, offset int) ([]*entity.StockTransfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM stock_transfers
		WHERE tenant_id = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR priority = $3)
		  AND ($4 = '' OR source_branch_id = $4)
		  AND ($5 = '' OR destination_branch_id = $5)
		ORDER BY CASE priority
			WHEN 'URGENT' THEN 0
			WHEN 'HIGH' THEN 1
			WHEN 'NORMAL' THEN 2
			ELSE 3
		END ASC, requested_at DESC, id DESC
		LIMIT $6 OFFSET $7`
	rows, err := r.q.Query(context.Background(), query,
		tenantID, f.Status, f.Priority, f.SourceBranchID, f.DestinationBranchID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockTransfer
	for rows.Next() {
		tr, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, tr := range list {
		if err := r.loadItems(tr); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// UpdateVersioned aplica la cabecera y las líneas solo si la versión almacenada
// coincide con expectedVersion; incrementa entity_version en la misma sentencia.
func (r *TransferRepo) UpdateVersioned(tr *entity.StockTransfer, expectedVersion int64) error {
	ctx := context.Background()
	query := `
		UPDATE stock_transfers
		SET status = $1, priority = $2, reviewed_at = $3, shipped_at = $4,
		    completed_at = $5, rejection_reason = $6, entity_version = entity_version + 1
		WHERE id = $7 AND tenant_id = $8 AND entity_version = $9`
	tag, err := r.q.Exec(ctx, query,
		tr.Status, tr.Priority, tr.ReviewedAt, tr.ShippedAt,
		tr.CompletedAt, tr.RejectionReason,
		tr.ID, tr.TenantID, expectedVersion)
	if err != nil {
		return fmt.Errorf("update transfer: %w", mapLockError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transfer %s version %d: %w", tr.ID, expectedVersion, domain.ErrStaleVersion)
	}
	tr.EntityVersion = expectedVersion + 1
	for _, it := range tr.Items {
		itemQuery := `
			UPDATE transfer_items
			SET qty_approved = $1, qty_shipped = $2, qty_received = $3
			WHERE id = $4 AND transfer_id = $5`
		if _, err := r.q.Exec(ctx, itemQuery,
			it.QtyApproved, it.QtyShipped, it.QtyReceived, it.ID, it.TransferID); err != nil {
			return fmt.Errorf("update transfer item: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *TransferRepo) scanOne(row rowScanner) (*entity.StockTransfer, error) {
	var tr entity.StockTransfer
	err := row.Scan(&tr.ID, &tr.TenantID, &tr.TransferNumber, &tr.SourceBranchID,
		&tr.DestinationBranchID, &tr.Status, &tr.Priority, &tr.RequestedByUserID,
		&tr.RequestedAt, &tr.ReviewedAt, &tr.ShippedAt, &tr.CompletedAt,
		&tr.RejectionReason, &tr.MatchedRuleID, &tr.EntityVersion)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan transfer: %w", err)
	}
	return &tr, nil
}

func (r *TransferRepo) loadItems(tr *entity.StockTransfer) error {
	query := `
		SELECT id, transfer_id, product_id, qty_requested, qty_approved, qty_shipped, qty_received
		FROM transfer_items
		WHERE transfer_id = $1
		ORDER BY id ASC`
	rows, err := r.q.Query(context.Background(), query, tr.ID)
	if err != nil {
		return fmt.Errorf("list transfer items: %w", err)
	}
	defer rows.Close()
	tr.Items = nil
	for rows.Next() {
		var it entity.TransferItem
		if err := rows.Scan(&it.ID, &it.TransferID, &it.ProductID,
			&it.QtyRequested, &it.QtyApproved, &it.QtyShipped, &it.QtyReceived); err != nil {
			return fmt.Errorf("scan transfer item: %w", err)
		}
		tr.Items = append(tr.Items, &it)
	}
	return rows.Err()
}
