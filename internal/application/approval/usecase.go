package approval

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/transfers-api/internal/application/dto"
	"github.com/tu-usuario/transfers-api/internal/domain"
	domainapproval "github.com/tu-usuario/transfers-api/internal/domain/approval"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/domain/repository"
)

// ApprovalUseCase administra las reglas de aprobación del tenant y el progreso
// de firma de los traslados.
type ApprovalUseCase struct {
	txRunner     repository.TxRunner
	ruleRepo     repository.ApprovalRuleRepository
	progressRepo repository.ApprovalProgressRepository
	transferRepo repository.TransferRepository
	userRepo     repository.UserRepository
}

// NewApprovalUseCase construye el caso de uso.
func NewApprovalUseCase(
	txRunner repository.TxRunner,
	ruleRepo repository.ApprovalRuleRepository,
	progressRepo repository.ApprovalProgressRepository,
	transferRepo repository.TransferRepository,
	userRepo repository.UserRepository,
) *ApprovalUseCase {
	return &ApprovalUseCase{
		txRunner:     txRunner,
		ruleRepo:     ruleRepo,
		progressRepo: progressRepo,
		transferRepo: transferRepo,
		userRepo:     userRepo,
	}
}

// CreateRule valida y persiste una regla nueva. Los invariantes (condiciones,
// niveles contiguos desde 1) se verifican ANTES de tocar la base.
func (uc *ApprovalUseCase) CreateRule(ctx context.Context, tenantID string, in dto.CreateApprovalRuleRequest) (*dto.ApprovalRuleResponse, error) {
	now := time.Now()
	rule := &entity.ApprovalRule{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		Name:         in.Name,
		ApprovalMode: in.ApprovalMode,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, c := range in.Conditions {
		rule.Conditions = append(rule.Conditions, conditionFromRequest(rule.ID, c))
	}
	for _, l := range in.Levels {
		rule.Levels = append(rule.Levels, levelFromRequest(rule.ID, l))
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if err := uc.ruleRepo.Create(rule); err != nil {
		return nil, err
	}
	return toRuleResponse(rule), nil
}

// UpdateRule actualiza una regla existente. Campos nil no se tocan; si se
// envían condiciones o niveles se reemplazan completos y se revalida.
func (uc *ApprovalUseCase) UpdateRule(ctx context.Context, tenantID, ruleID string, in dto.UpdateApprovalRuleRequest) (*dto.ApprovalRuleResponse, error) {
	rule, err := uc.ruleRepo.GetByID(tenantID, ruleID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		rule.Name = *in.Name
	}
	if in.ApprovalMode != nil {
		rule.ApprovalMode = *in.ApprovalMode
	}
	if in.Conditions != nil {
		rule.Conditions = nil
		for _, c := range in.Conditions {
			rule.Conditions = append(rule.Conditions, conditionFromRequest(rule.ID, c))
		}
	}
	if in.Levels != nil {
		rule.Levels = nil
		for _, l := range in.Levels {
			rule.Levels = append(rule.Levels, levelFromRequest(rule.ID, l))
		}
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	rule.UpdatedAt = time.Now()
	if err := uc.ruleRepo.Update(rule); err != nil {
		return nil, err
	}
	return toRuleResponse(rule), nil
}

// DeleteRule desactiva la regla (borrado lógico): deja de aplicar a traslados
// nuevos sin romper los progresos ya sembrados.
func (uc *ApprovalUseCase) DeleteRule(ctx context.Context, tenantID, ruleID string) error {
	return uc.setActive(tenantID, ruleID, false)
}

// RestoreRule reactiva una regla desactivada.
func (uc *ApprovalUseCase) RestoreRule(ctx context.Context, tenantID, ruleID string) error {
	return uc.setActive(tenantID, ruleID, true)
}

func (uc *ApprovalUseCase) setActive(tenantID, ruleID string, active bool) error {
	rule, err := uc.ruleRepo.GetByID(tenantID, ruleID)
	if err != nil {
		return err
	}
	if rule == nil {
		return domain.ErrNotFound
	}
	return uc.ruleRepo.SetActive(tenantID, ruleID, active)
}

// GetRule obtiene una regla por ID.
func (uc *ApprovalUseCase) GetRule(ctx context.Context, tenantID, ruleID string) (*dto.ApprovalRuleResponse, error) {
	rule, err := uc.ruleRepo.GetByID(tenantID, ruleID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, domain.ErrNotFound
	}
	return toRuleResponse(rule), nil
}

// ListRules lista reglas del tenant.
func (uc *ApprovalUseCase) ListRules(ctx context.Context, tenantID string, includeInactive bool, limit, offset int) (*dto.ApprovalRuleListResponse, error) {
	rules, err := uc.ruleRepo.List(tenantID, includeInactive, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ApprovalRuleResponse, 0, len(rules))
	for _, r := range rules {
		items = append(items, *toRuleResponse(r))
	}
	return &dto.ApprovalRuleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// GetProgress devuelve el progreso de aprobación de un traslado.
func (uc *ApprovalUseCase) GetProgress(ctx context.Context, tenantID, transferID string) (*dto.ApprovalProgressResponse, error) {
	tr, err := uc.transferRepo.GetByID(tenantID, transferID)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, domain.ErrNotFound
	}
	records, err := uc.progressRepo.ListByTransfer(tenantID, transferID)
	if err != nil {
		return nil, err
	}
	return toProgressResponse(tr, records), nil
}

// SubmitApproval firma un nivel del traslado en nombre del aprobador.
//   - ErrPermissionDenied si el aprobador no tiene el rol requerido ni es el
//     usuario requerido del nivel.
//   - ErrOutOfOrder si el modo es SEQUENTIAL y existe un nivel inferior sin firmar.
//   - Idempotente: refirmar un nivel ya satisfecho devuelve el registro tal cual.
func (uc *ApprovalUseCase) SubmitApproval(ctx context.Context, tenantID, transferID, approverUserID string, in dto.SubmitApprovalRequest) (*dto.ApprovalProgressResponse, error) {
	approver, err := uc.userRepo.GetByID(tenantID, approverUserID)
	if err != nil {
		return nil, err
	}
	if approver == nil {
		return nil, domain.ErrNotFound
	}

	var result *dto.ApprovalProgressResponse
	err = uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		tr, err := r.Transfers.GetByID(tenantID, transferID)
		if err != nil {
			return err
		}
		if tr == nil {
			return domain.ErrNotFound
		}
		if tr.Status != entity.TransferStatusRequested {
			return domain.ErrConflict
		}
		records, err := r.Progress.ListByTransfer(tenantID, transferID)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			// Sin regla aplicada no hay niveles que firmar.
			return domain.ErrConflict
		}
		rule, err := r.Rules.GetByID(tenantID, tr.MatchedRuleID)
		if err != nil {
			return err
		}
		if rule == nil {
			return domain.ErrNotFound
		}

		var target *entity.ApprovalProgressRecord
		for _, rec := range records {
			if rec.Level == in.Level {
				target = rec
				break
			}
		}
		if target == nil {
			return domain.ErrNotFound
		}
		if target.Satisfied {
			// Reenvío idempotente: el registro no se modifica.
			result = toProgressResponse(tr, records)
			return nil
		}
		if !domainapproval.CanApproveLevel(target, approver.ID, approver.Role) {
			return domain.ErrPermissionDenied
		}
		if rule.ApprovalMode == entity.ApprovalModeSequential {
			if low := domainapproval.LowestUnsatisfied(records); low != 0 && low < in.Level {
				return domain.ErrOutOfOrder
			}
		}
		now := time.Now()
		target.Satisfied = true
		target.ApprovedByUserID = approver.ID
		target.ApprovedAt = &now
		target.Notes = in.Notes
		if err := r.Progress.Update(target); err != nil {
			return err
		}
		result = toProgressResponse(tr, records)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Mapeos dto <-> entidad
// ──────────────────────────────────────────────────────────────────────────────

func conditionFromRequest(ruleID string, c dto.ConditionRequest) *entity.ApprovalCondition {
	return &entity.ApprovalCondition{
		ID:             uuid.New().String(),
		RuleID:         ruleID,
		Type:           c.Type,
		ValueThreshold: c.ValueThreshold,
		QtyThreshold:   c.QtyThreshold,
		BranchID:       c.BranchID,
		Priority:       c.Priority,
	}
}

func levelFromRequest(ruleID string, l dto.LevelRequest) *entity.ApprovalLevel {
	return &entity.ApprovalLevel{
		ID:             uuid.New().String(),
		RuleID:         ruleID,
		Level:          l.Level,
		Name:           l.Name,
		RequiredRoleID: l.RequiredRoleID,
		RequiredUserID: l.RequiredUserID,
	}
}

func toRuleResponse(r *entity.ApprovalRule) *dto.ApprovalRuleResponse {
	resp := &dto.ApprovalRuleResponse{
		ID:           r.ID,
		Name:         r.Name,
		ApprovalMode: r.ApprovalMode,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	for _, c := range r.Conditions {
		resp.Conditions = append(resp.Conditions, dto.ConditionResponse{
			ID:             c.ID,
			Type:           c.Type,
			ValueThreshold: c.ValueThreshold,
			QtyThreshold:   c.QtyThreshold,
			BranchID:       c.BranchID,
			Priority:       c.Priority,
		})
	}
	for _, l := range r.Levels {
		resp.Levels = append(resp.Levels, dto.LevelResponse{
			ID:             l.ID,
			Level:          l.Level,
			Name:           l.Name,
			RequiredRoleID: l.RequiredRoleID,
			RequiredUserID: l.RequiredUserID,
		})
	}
	return resp
}

func toProgressResponse(tr *entity.StockTransfer, records []*entity.ApprovalProgressRecord) *dto.ApprovalProgressResponse {
	resp := &dto.ApprovalProgressResponse{
		TransferID:    tr.ID,
		RuleID:        tr.MatchedRuleID,
		FullyApproved: domainapproval.FullyApproved(records),
	}
	for _, rec := range records {
		resp.Records = append(resp.Records, dto.ProgressRecordResponse{
			ID:               rec.ID,
			TransferID:       rec.TransferID,
			RuleID:           rec.RuleID,
			Level:            rec.Level,
			LevelName:        rec.LevelName,
			RequiredRoleID:   rec.RequiredRoleID,
			RequiredUserID:   rec.RequiredUserID,
			Satisfied:        rec.Satisfied,
			ApprovedByUserID: rec.ApprovedByUserID,
			ApprovedAt:       rec.ApprovedAt,
			Notes:            rec.Notes,
		})
	}
	return resp
}
