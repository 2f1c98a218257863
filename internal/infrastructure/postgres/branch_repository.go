package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/transfers-api/internal/domain"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/domain/repository"
)

var _ repository.BranchRepository = (*BranchRepo)(nil)

// BranchRepo persistencia de sucursales y membresías sobre PostgreSQL.
type BranchRepo struct {
	q Querier
}

// NewBranchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBranchRepository(q Querier) *BranchRepo {
	return &BranchRepo{q: q}
}

// Create persiste una sucursal.
func (r *BranchRepo) Create(b *entity.Branch) error {
	query := `
		INSERT INTO branches (id, tenant_id, name, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		b.ID, b.TenantID, b.Name, b.Address, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("branch %s: %w", b.Name, domain.ErrDuplicate)
		}
		return fmt.Errorf("create branch: %w", err)
	}
	return nil
}

// GetByID devuelve la sucursal o nil si no existe en el tenant.
func (r *BranchRepo) GetByID(tenantID, id string) (*entity.Branch, error) {
	query := `
		SELECT id, tenant_id, name, address, created_at, updated_at
		FROM branches
		WHERE tenant_id = $1 AND id = $2`
	var b entity.Branch
	err := r.q.QueryRow(context.Background(), query, tenantID, id).Scan(
		&b.ID, &b.TenantID, &b.Name, &b.Address, &b.CreatedAt, &b.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get branch: %w", err)
	}
	return &b, nil
}

// ListByTenant sucursales del tenant ordenadas por nombre.
func (r *BranchRepo) ListByTenant(tenantID string, limit, offset int) ([]*entity.Branch, error) {
	query := `
		SELECT id, tenant_id, name, address, created_at, updated_at
		FROM branches
		WHERE tenant_id = $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Branch
	for rows.Next() {
		var b entity.Branch
		if err := rows.Scan(&b.ID, &b.TenantID, &b.Name, &b.Address, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// AddMember vincula un usuario a la sucursal.
func (r *BranchRepo) AddMember(m *entity.BranchMembership) error {
	query := `
		INSERT INTO branch_memberships (user_id, branch_id, tenant_id, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(context.Background(), query, m.UserID, m.BranchID, m.TenantID, m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("membership: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("add branch member: %w", err)
	}
	return nil
}

// IsMember indica si el usuario pertenece a la sucursal.
func (r *BranchRepo) IsMember(tenantID, userID, branchID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM branch_memberships
			WHERE tenant_id = $1 AND user_id = $2 AND branch_id = $3
		)`
	var ok bool
	if err := r.q.QueryRow(context.Background(), query, tenantID, userID, branchID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check branch membership: %w", err)
	}
	return ok, nil
}
