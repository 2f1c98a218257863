package repository

import "github.com/tu-usuario/transfers-api/internal/domain/entity"

// ApprovalRuleRepository puerto de persistencia para reglas de aprobación
// (la regla es dueña de sus condiciones y niveles; se hidratan completas).
type ApprovalRuleRepository interface {
	Create(rule *entity.ApprovalRule) error
	Update(rule *entity.ApprovalRule) error
	GetByID(tenantID, id string) (*entity.ApprovalRule, error)
	// ListActive reglas activas del tenant en orden de evaluación determinista:
	// created_at DESC, id DESC.
	ListActive(tenantID string) ([]*entity.ApprovalRule, error)
	List(tenantID string, includeInactive bool, limit, offset int) ([]*entity.ApprovalRule, error)
	// SetActive activa/desactiva (borrado lógico y restauración).
	SetActive(tenantID, id string, active bool) error
}
