package repository

import "github.com/tu-usuario/transfers-api/internal/domain/entity"

// BranchRepository puerto de persistencia para sucursales y membresías.
type BranchRepository interface {
	Create(branch *entity.Branch) error
	GetByID(tenantID, id string) (*entity.Branch, error)
	ListByTenant(tenantID string, limit, offset int) ([]*entity.Branch, error)
	// AddMember vincula un usuario a la sucursal.
	AddMember(m *entity.BranchMembership) error
	// IsMember indica si el usuario pertenece a la sucursal.
	IsMember(tenantID, userID, branchID string) (bool, error)
}
