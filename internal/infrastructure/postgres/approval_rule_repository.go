package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/transfers-api/internal/domain"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/domain/repository"
)

var _ repository.ApprovalRuleRepository = (*ApprovalRuleRepo)(nil)

// ApprovalRuleRepo persistencia de reglas de aprobación sobre PostgreSQL.
// Las condiciones y niveles se reemplazan completos en cada Update.
type ApprovalRuleRepo struct {
	q Querier
}

// NewApprovalRuleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewApprovalRuleRepository(q Querier) *ApprovalRuleRepo {
	return &ApprovalRuleRepo{q: q}
}

// Create persiste la regla con sus condiciones y niveles.
func (r *ApprovalRuleRepo) Create(rule *entity.ApprovalRule) error {
	ctx := context.Background()
	query := `
		INSERT INTO approval_rules (id, tenant_id, name, approval_mode, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		rule.ID, rule.TenantID, rule.Name, rule.ApprovalMode, rule.IsActive,
		rule.CreatedAt, rule.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("rule %s: %w", rule.Name, domain.ErrDuplicate)
		}
		return fmt.Errorf("create rule: %w", err)
	}
	return r.insertChildren(ctx, rule)
}

// Update reemplaza cabecera, condiciones y niveles de la regla.
func (r *ApprovalRuleRepo) Update(rule *entity.ApprovalRule) error {
	ctx := context.Background()
	query := `
		UPDATE approval_rules
		SET name = $1, approval_mode = $2, is_active = $3, updated_at = $4
		WHERE id = $5 AND tenant_id = $6`
	tag, err := r.q.Exec(ctx, query,
		rule.Name, rule.ApprovalMode, rule.IsActive, rule.UpdatedAt, rule.ID, rule.TenantID)
	if err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rule %s: %w", rule.ID, domain.ErrNotFound)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM approval_conditions WHERE rule_id = $1`, rule.ID); err != nil {
		return fmt.Errorf("delete rule conditions: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM approval_levels WHERE rule_id = $1`, rule.ID); err != nil {
		return fmt.Errorf("delete rule levels: %w", err)
	}
	return r.insertChildren(ctx, rule)
}

func (r *ApprovalRuleRepo) insertChildren(ctx context.Context, rule *entity.ApprovalRule) error {
	for _, c := range rule.Conditions {
		query := `
			INSERT INTO approval_conditions (id, rule_id, type, value_threshold, qty_threshold, branch_id, priority)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := r.q.Exec(ctx, query,
			c.ID, c.RuleID, c.Type, c.ValueThreshold, c.QtyThreshold, c.BranchID, c.Priority); err != nil {
			return fmt.Errorf("create rule condition: %w", err)
		}
	}
	for _, l := range rule.Levels {
		query := `
			INSERT INTO approval_levels (id, rule_id, level, name, required_role_id, required_user_id)
			VALUES ($1, $2, $3, $4, $5, $6)`
		if _, err := r.q.Exec(ctx, query,
			l.ID, l.RuleID, l.Level, l.Name, l.RequiredRoleID, l.RequiredUserID); err != nil {
			return fmt.Errorf("create rule level: %w", err)
		}
	}
	return nil
}

// GetByID devuelve la regla con hijos, o nil si no existe en el tenant.
func (r *ApprovalRuleRepo) GetByID(tenantID, id string) (*entity.ApprovalRule, error) {
	query := `
		SELECT id, tenant_id, name, approval_mode, is_active, created_at, updated_at
		FROM approval_rules
		WHERE tenant_id = $1 AND id = $2`
	var rule entity.ApprovalRule
	err := r.q.QueryRow(context.Background(), query, tenantID, id).Scan(
		&rule.ID, &rule.TenantID, &rule.Name, &rule.ApprovalMode,
		&rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rule: %w", err)
	}
	if err := r.loadChildren(&rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// ListActive reglas activas en orden de evaluación: created_at DESC, id DESC.
func (r *ApprovalRuleRepo) ListActive(tenantID string) ([]*entity.ApprovalRule, error) {
	query := `
		SELECT id, tenant_id, name, approval_mode, is_active, created_at, updated_at
		FROM approval_rules
		WHERE tenant_id = $1 AND is_active
		ORDER BY created_at DESC, id DESC`
	return r.list(query, tenantID)
}

// List reglas del tenant, opcionalmente incluyendo las desactivadas.
func (r *ApprovalRuleRepo) List(tenantID string, includeInactive bool, limit, offset int) ([]*entity.ApprovalRule, error) {
	query := `
		SELECT id, tenant_id, name, approval_mode, is_active, created_at, updated_at
		FROM approval_rules
		WHERE tenant_id = $1 AND (is_active OR $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	return r.list(query, tenantID, includeInactive, limit, offset)
}

// SetActive borrado lógico / restauración de la regla.
func (r *ApprovalRuleRepo) SetActive(tenantID, id string, active bool) error {
	query := `
		UPDATE approval_rules
		SET is_active = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3`
	tag, err := r.q.Exec(context.Background(), query, active, tenantID, id)
	if err != nil {
		return fmt.Errorf("set rule active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rule %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *ApprovalRuleRepo) list(query string, args ...any) ([]*entity.ApprovalRule, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()
	var list []*entity.ApprovalRule
	for rows.Next() {
		var rule entity.ApprovalRule
		if err := rows.Scan(&rule.ID, &rule.TenantID, &rule.Name, &rule.ApprovalMode,
			&rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		list = append(list, &rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, rule := range list {
		if err := r.loadChildren(rule); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *ApprovalRuleRepo) loadChildren(rule *entity.ApprovalRule) error {
	ctx := context.Background()
	condQuery := `
		SELECT id, rule_id, type, value_threshold, qty_threshold, branch_id, priority
		FROM approval_conditions
		WHERE rule_id = $1
		ORDER BY id ASC`
	rows, err := r.q.Query(ctx, condQuery, rule.ID)
	if err != nil {
		return fmt.Errorf("list rule conditions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c entity.ApprovalCondition
		if err := rows.Scan(&c.ID, &c.RuleID, &c.Type, &c.ValueThreshold,
			&c.QtyThreshold, &c.BranchID, &c.Priority); err != nil {
			return fmt.Errorf("scan rule condition: %w", err)
		}
		rule.Conditions = append(rule.Conditions, &c)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	levelQuery := `
		SELECT id, rule_id, level, name, required_role_id, required_user_id
		FROM approval_levels
		WHERE rule_id = $1
		ORDER BY level ASC`
	lrows, err := r.q.Query(ctx, levelQuery, rule.ID)
	if err != nil {
		return fmt.Errorf("list rule levels: %w", err)
	}
	defer lrows.Close()
	for lrows.Next() {
		var l entity.ApprovalLevel
		if err := lrows.Scan(&l.ID, &l.RuleID, &l.Level, &l.Name,
			&l.RequiredRoleID, &l.RequiredUserID); err != nil {
			return fmt.Errorf("scan rule level: %w", err)
		}
		rule.Levels = append(rule.Levels, &l)
	}
	return lrows.Err()
}
