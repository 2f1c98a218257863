package entity

import "time"

// Estados del ciclo de vida de un traslado.
const (
	TransferStatusRequested = "REQUESTED"
	TransferStatusApproved  = "APPROVED"
	TransferStatusInTransit = "IN_TRANSIT"
	TransferStatusCompleted = "COMPLETED"
	TransferStatusRejected  = "REJECTED"
	TransferStatusCancelled = "CANCELLED"
)

// Prioridades de un traslado.
const (
	PriorityUrgent = "URGENT"
	PriorityHigh   = "HIGH"
	PriorityNormal = "NORMAL"
	PriorityLow    = "LOW"
)

// StockTransfer es la raíz de agregado de un traslado entre sucursales.
// Se muta únicamente a través de la máquina de estados; EntityVersion es el
// token de concurrencia optimista que se incrementa en cada mutación.
type StockTransfer struct {
	ID                  string
	TenantID            string
	TransferNumber      string
	SourceBranchID      string
	DestinationBranchID string
	Status              string
	Priority            string
	RequestedByUserID   string
	RequestedAt         time.Time
	ReviewedAt          *time.Time
	ShippedAt           *time.Time
	CompletedAt         *time.Time
	RejectionReason     string
	MatchedRuleID       string // regla de aprobación aplicada; vacío = sin regla
	EntityVersion       int64

	Items []*TransferItem
}

// IsTerminal indica si el traslado está en un estado final.
func (t *StockTransfer) IsTerminal() bool {
	switch t.Status {
	case TransferStatusCompleted, TransferStatusRejected, TransferStatusCancelled:
		return true
	}
	return false
}

// ValidStatus valida que el string sea un estado conocido.
func ValidStatus(s string) bool {
	switch s {
	case TransferStatusRequested, TransferStatusApproved, TransferStatusInTransit,
		TransferStatusCompleted, TransferStatusRejected, TransferStatusCancelled:
		return true
	}
	return false
}

// ValidPriority valida que el string sea una prioridad conocida.
func ValidPriority(p string) bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}
