package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/transfers-api/internal/domain"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/domain/repository"
)

var _ repository.ApprovalProgressRepository = (*ApprovalProgressRepo)(nil)

// ApprovalProgressRepo persistencia del progreso de aprobación por nivel.
type ApprovalProgressRepo struct {
	q Querier
}

// NewApprovalProgressRepository construye el adaptador. Pasar pool o tx (Querier).
func NewApprovalProgressRepository(q Querier) *ApprovalProgressRepo {
	return &ApprovalProgressRepo{q: q}
}

// CreateAll persiste los registros sembrados al crear el traslado.
func (r *ApprovalProgressRepo) CreateAll(records []*entity.ApprovalProgressRecord) error {
	ctx := context.Background()
	query := `
		INSERT INTO approval_progress (id, tenant_id, transfer_id, rule_id, level, level_name,
			required_role_id, required_user_id, satisfied, approved_by_user_id, approved_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for _, rec := range records {
		if _, err := r.q.Exec(ctx, query,
			rec.ID, rec.TenantID, rec.TransferID, rec.RuleID, rec.Level, rec.LevelName,
			rec.RequiredRoleID, rec.RequiredUserID, rec.Satisfied,
			rec.ApprovedByUserID, rec.ApprovedAt, rec.Notes); err != nil {
			return fmt.Errorf("create approval progress: %w", err)
		}
	}
	return nil
}

// ListByTransfer registros del traslado en orden de nivel.
func (r *ApprovalProgressRepo) ListByTransfer(tenantID, transferID string) ([]*entity.ApprovalProgressRecord, error) {
	query := `
		SELECT id, tenant_id, transfer_id, rule_id, level, level_name,
			required_role_id, required_user_id, satisfied, approved_by_user_id, approved_at, notes
		FROM approval_progress
		WHERE tenant_id = $1 AND transfer_id = $2
		ORDER BY level ASC`
	rows, err := r.q.Query(context.Background(), query, tenantID, transferID)
	if err != nil {
		return nil, fmt.Errorf("list approval progress: %w", err)
	}
	defer rows.Close()
	var list []*entity.ApprovalProgressRecord
	for rows.Next() {
		var rec entity.ApprovalProgressRecord
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.TransferID, &rec.RuleID,
			&rec.Level, &rec.LevelName, &rec.RequiredRoleID, &rec.RequiredUserID,
			&rec.Satisfied, &rec.ApprovedByUserID, &rec.ApprovedAt, &rec.Notes); err != nil {
			return nil, fmt.Errorf("scan approval progress: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}

// Update persiste la satisfacción de un nivel.
func (r *ApprovalProgressRepo) Update(rec *entity.ApprovalProgressRecord) error {
	query := `
		UPDATE approval_progress
		SET satisfied = $1, approved_by_user_id = $2, approved_at = $3, notes = $4
		WHERE id = $5 AND tenant_id = $6`
	tag, err := r.q.Exec(context.Background(), query,
		rec.Satisfied, rec.ApprovedByUserID, rec.ApprovedAt, rec.Notes, rec.ID, rec.TenantID)
	if err != nil {
		return fmt.Errorf("update approval progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("approval progress %s: %w", rec.ID, domain.ErrNotFound)
	}
	return nil
}
