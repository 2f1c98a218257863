package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConditionRequest una condición de la regla. Solo el campo del type aplica.
type ConditionRequest struct {
	Type           string          `json:"type" validate:"required"`
	ValueThreshold decimal.Decimal `json:"value_threshold,omitempty"`
	QtyThreshold   int64           `json:"qty_threshold,omitempty"`
	BranchID       string          `json:"branch_id,omitempty"`
	Priority       string          `json:"priority,omitempty"`
}

// LevelRequest un nivel de firma de la regla.
type LevelRequest struct {
	Level          int    `json:"level" validate:"required,gt=0"`
	Name           string `json:"name"`
	RequiredRoleID string `json:"required_role_id,omitempty"`
	RequiredUserID string `json:"required_user_id,omitempty"`
}

// CreateApprovalRuleRequest entrada para crear una regla de aprobación.
type CreateApprovalRuleRequest struct {
	Name         string             `json:"name" validate:"required"`
	ApprovalMode string             `json:"approval_mode" validate:"required"`
	Conditions   []ConditionRequest `json:"conditions" validate:"required,min=1"`
	Levels       []LevelRequest     `json:"levels" validate:"required,min=1"`
}

// UpdateApprovalRuleRequest entrada para actualizar una regla. Los campos nil
// no se tocan ("no enviado" es distinto de "enviado vacío").
type UpdateApprovalRuleRequest struct {
	Name         *string            `json:"name,omitempty"`
	ApprovalMode *string            `json:"approval_mode,omitempty"`
	Conditions   []ConditionRequest `json:"conditions,omitempty"`
	Levels       []LevelRequest     `json:"levels,omitempty"`
}

// SubmitApprovalRequest firma de un nivel de aprobación.
type SubmitApprovalRequest struct {
	Level int    `json:"level" validate:"required,gt=0"`
	Notes string `json:"notes,omitempty"`
}

// ConditionResponse condición en respuestas.
type ConditionResponse struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	ValueThreshold decimal.Decimal `json:"value_threshold,omitempty"`
	QtyThreshold   int64           `json:"qty_threshold,omitempty"`
	BranchID       string          `json:"branch_id,omitempty"`
	Priority       string          `json:"priority,omitempty"`
}

// LevelResponse nivel en respuestas.
type LevelResponse struct {
	ID             string `json:"id"`
	Level          int    `json:"level"`
	Name           string `json:"name"`
	RequiredRoleID string `json:"required_role_id,omitempty"`
	RequiredUserID string `json:"required_user_id,omitempty"`
}

// ApprovalRuleResponse salida de una regla.
type ApprovalRuleResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	ApprovalMode string              `json:"approval_mode"`
	IsActive     bool                `json:"is_active"`
	Conditions   []ConditionResponse `json:"conditions"`
	Levels       []LevelResponse     `json:"levels"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// ApprovalRuleListResponse lista paginada de reglas.
type ApprovalRuleListResponse struct {
	Items []ApprovalRuleResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

// ProgressRecordResponse estado de un nivel de aprobación de un traslado.
type ProgressRecordResponse struct {
	ID               string     `json:"id"`
	TransferID       string     `json:"transfer_id"`
	RuleID           string     `json:"rule_id"`
	Level            int        `json:"level"`
	LevelName        string     `json:"level_name,omitempty"`
	RequiredRoleID   string     `json:"required_role_id,omitempty"`
	RequiredUserID   string     `json:"required_user_id,omitempty"`
	Satisfied        bool       `json:"satisfied"`
	ApprovedByUserID string     `json:"approved_by_user_id,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

// ApprovalProgressResponse progreso completo de un traslado.
type ApprovalProgressResponse struct {
	TransferID    string                   `json:"transfer_id"`
	RuleID        string                   `json:"rule_id,omitempty"`
	FullyApproved bool                     `json:"fully_approved"`
	Records       []ProgressRecordResponse `json:"records"`
}
