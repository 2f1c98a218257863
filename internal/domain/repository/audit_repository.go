package repository

import "github.com/tu-usuario/transfers-api/internal/domain/entity"

// AuditRepository puerto del registro de auditoría. Solo se escribe en
// transiciones exitosas, nunca en intentos rechazados.
type AuditRepository interface {
	Create(event *entity.AuditEvent) error
	ListByEntity(tenantID, entityType, entityID string, limit, offset int) ([]*entity.AuditEvent, error)
}
