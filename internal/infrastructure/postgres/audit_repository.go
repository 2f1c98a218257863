package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo registro de auditoría sobre PostgreSQL. Los snapshots before/after
// se guardan como JSONB.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create persiste un evento de auditoría.
func (r *AuditRepo) Create(ev *entity.AuditEvent) error {
	before, err := json.Marshal(ev.Before)
	if err != nil {
		return fmt.Errorf("marshal audit before: %w", err)
	}
	after, err := json.Marshal(ev.After)
	if err != nil {
		return fmt.Errorf("marshal audit after: %w", err)
	}
	query := `
		INSERT INTO audit_events (id, tenant_id, actor_user_id, entity_type, entity_id, action, before, after, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.q.Exec(context.Background(), query,
		ev.ID, ev.TenantID, ev.ActorUserID, ev.EntityType, ev.EntityID,
		ev.Action, before, after, ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("create audit event: %w", err)
	}
	return nil
}

// ListByEntity eventos de una entidad, más recientes primero.
func (r *AuditRepo) ListByEntity(tenantID, entityType, entityID string, limit, offset int) ([]*entity.AuditEvent, error) {
	query := `
		SELECT id, tenant_id, actor_user_id, entity_type, entity_id, action, before, after, occurred_at
		FROM audit_events
		WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY occurred_at DESC, id DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(context.Background(), query, tenantID, entityType, entityID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditEvent
	for rows.Next() {
		var ev entity.AuditEvent
		var before, after []byte
		if err := rows.Scan(&ev.ID, &ev.TenantID, &ev.ActorUserID, &ev.EntityType,
			&ev.EntityID, &ev.Action, &before, &after, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if err := json.Unmarshal(before, &ev.Before); err != nil {
			return nil, fmt.Errorf("unmarshal audit before: %w", err)
		}
		if err := json.Unmarshal(after, &ev.After); err != nil {
			return nil, fmt.Errorf("unmarshal audit after: %w", err)
		}
		list = append(list, &ev)
	}
	return list, rows.Err()
}
