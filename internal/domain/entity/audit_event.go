package entity

import "time"

// Tipos de entidad auditable.
const (
	AuditEntityTransfer     = "STOCK_TRANSFER"
	AuditEntityApprovalRule = "APPROVAL_RULE"
	AuditEntityStock        = "STOCK"
)

// AuditEvent registro de auditoría de una transición exitosa. Nunca se escribe
// para intentos rechazados.
type AuditEvent struct {
	ID          string
	TenantID    string
	ActorUserID string
	EntityType  string
	EntityID    string
	Action      string
	Before      AuditSnapshot
	After       AuditSnapshot
	OccurredAt  time.Time
}

// AuditSnapshot es una unión etiquetada por tipo de entidad: solo el campo del
// EntityType correspondiente está poblado. Mantener los snapshots tipados
// permite diffs verificados por el compilador en lugar de mapas opacos.
type AuditSnapshot struct {
	Transfer *TransferSnapshot
	Rule     *RuleSnapshot
	Stock    *StockSnapshot
}

// TransferSnapshot campos relevantes de un traslado en un instante.
type TransferSnapshot struct {
	Status        string
	Priority      string
	EntityVersion int64
}

// RuleSnapshot campos relevantes de una regla de aprobación.
type RuleSnapshot struct {
	Name         string
	ApprovalMode string
	IsActive     bool
	Levels       int
}

// StockSnapshot existencias de un (sucursal, producto) en un instante.
type StockSnapshot struct {
	BranchID  string
	ProductID string
	OnHandQty int64
}
