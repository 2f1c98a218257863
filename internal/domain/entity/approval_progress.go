package entity

import "time"

// ApprovalProgressRecord rastrea la satisfacción de un nivel de la regla
// aplicada a un traslado. Un traslado con regla no puede salir de REQUESTED
// hasta que todos sus registros estén satisfechos.
type ApprovalProgressRecord struct {
	ID               string
	TenantID         string
	TransferID       string
	RuleID           string
	Level            int
	LevelName        string
	RequiredRoleID   string
	RequiredUserID   string
	Satisfied        bool
	ApprovedByUserID string
	ApprovedAt       *time.Time
	Notes            string
}
