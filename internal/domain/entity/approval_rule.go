package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modos de aprobación multinivel.
const (
	ApprovalModeSequential = "SEQUENTIAL"
	ApprovalModeParallel   = "PARALLEL"
)

// Tipos de condición de una regla de aprobación (variante discriminada).
const (
	ConditionTotalValueThreshold = "TOTAL_VALUE_THRESHOLD"
	ConditionTotalQtyThreshold   = "TOTAL_QTY_THRESHOLD"
	ConditionSourceBranch        = "SOURCE_BRANCH"
	ConditionDestinationBranch   = "DESTINATION_BRANCH"
	ConditionPriorityAtLeast     = "PRIORITY_AT_LEAST"
)

// ApprovalRule es una política de aprobación por tenant. Aplica a un traslado
// si TODAS sus condiciones evalúan verdadero contra los totales calculados.
type ApprovalRule struct {
	ID           string
	TenantID     string
	Name         string
	ApprovalMode string
	IsActive     bool
	Conditions   []*ApprovalCondition
	Levels       []*ApprovalLevel
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ApprovalCondition una condición de la regla. Solo el campo correspondiente
// al Type está poblado.
type ApprovalCondition struct {
	ID     string
	RuleID string
	Type   string
	// TOTAL_VALUE_THRESHOLD: valor total del traslado en unidades menores.
	ValueThreshold decimal.Decimal
	// TOTAL_QTY_THRESHOLD: cantidad total solicitada.
	QtyThreshold int64
	// SOURCE_BRANCH / DESTINATION_BRANCH.
	BranchID string
	// PRIORITY_AT_LEAST: prioridad mínima (URGENT > HIGH > NORMAL > LOW).
	Priority string
}

// ApprovalLevel un paso de firma requerido. Se satisface con el rol requerido
// o con el usuario específico; al menos uno de los dos debe estar definido.
type ApprovalLevel struct {
	ID             string
	RuleID         string
	Level          int // 1..N contiguos
	Name           string
	RequiredRoleID string
	RequiredUserID string
}

// Validate verifica los invariantes de una regla antes de persistirla:
// al menos una condición, al menos un nivel, niveles contiguos desde 1 sin
// huecos ni duplicados, modo conocido y condiciones bien formadas.
func (r *ApprovalRule) Validate() error {
	if r.Name == "" {
		return errValidation("la regla requiere nombre")
	}
	if r.ApprovalMode != ApprovalModeSequential && r.ApprovalMode != ApprovalModeParallel {
		return errValidation("modo de aprobación desconocido")
	}
	if len(r.Conditions) == 0 {
		return errValidation("la regla requiere al menos una condición")
	}
	if len(r.Levels) == 0 {
		return errValidation("la regla requiere al menos un nivel")
	}
	for _, c := range r.Conditions {
		if err := c.validate(); err != nil {
			return err
		}
	}
	seen := make(map[int]bool, len(r.Levels))
	for _, l := range r.Levels {
		if l.RequiredRoleID == "" && l.RequiredUserID == "" {
			return errValidation("cada nivel requiere rol o usuario aprobador")
		}
		if seen[l.Level] {
			return errValidation("nivel de aprobación duplicado")
		}
		seen[l.Level] = true
	}
	for n := 1; n <= len(r.Levels); n++ {
		if !seen[n] {
			return errValidation("los niveles deben ser contiguos desde 1")
		}
	}
	return nil
}

func (c *ApprovalCondition) validate() error {
	switch c.Type {
	case ConditionTotalValueThreshold:
		if c.ValueThreshold.LessThanOrEqual(decimal.Zero) {
			return errValidation("umbral de valor debe ser positivo")
		}
	case ConditionTotalQtyThreshold:
		if c.QtyThreshold <= 0 {
			return errValidation("umbral de cantidad debe ser positivo")
		}
	case ConditionSourceBranch, ConditionDestinationBranch:
		if c.BranchID == "" {
			return errValidation("condición de sucursal requiere branch_id")
		}
	case ConditionPriorityAtLeast:
		if !ValidPriority(c.Priority) {
			return errValidation("prioridad desconocida en condición")
		}
	default:
		return errValidation("tipo de condición desconocido")
	}
	return nil
}
