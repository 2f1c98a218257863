package repository

import "github.com/tu-usuario/transfers-api/internal/domain/entity"

// ApprovalProgressRepository puerto para el progreso de aprobación por nivel.
type ApprovalProgressRepository interface {
	CreateAll(records []*entity.ApprovalProgressRecord) error
	ListByTransfer(tenantID, transferID string) ([]*entity.ApprovalProgressRecord, error)
	// Update persiste la satisfacción de un nivel (aprobador, fecha, notas).
	Update(record *entity.ApprovalProgressRecord) error
}
