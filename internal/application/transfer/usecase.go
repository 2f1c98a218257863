package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/transfers-api/internal/application/dto"
	"github.com/tu-usuario/transfers-api/internal/domain"
	domainapproval "github.com/tu-usuario/transfers-api/internal/domain/approval"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/domain/repository"
	domaintransfer "github.com/tu-usuario/transfers-api/internal/domain/transfer"
)

// TransferUseCase es la máquina de estados del traslado: creación, aprobación,
// rechazo, cancelación, prioridad y consultas. Toda mutación corre en una
// transacción y está protegida por la versión optimista del agregado.
type TransferUseCase struct {
	txRunner   repository.TxRunner
	branchRepo repository.BranchRepository
	prodRepo   repository.ProductRepository
	lotRepo    repository.StockLotRepository
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(
	txRunner repository.TxRunner,
	branchRepo repository.BranchRepository,
	prodRepo repository.ProductRepository,
	lotRepo repository.StockLotRepository,
) *TransferUseCase {
	return &TransferUseCase{
		txRunner:   txRunner,
		branchRepo: branchRepo,
		prodRepo:   prodRepo,
		lotRepo:    lotRepo,
	}
}

// Create crea un traslado en estado REQUESTED. Valida sucursales del tenant
// (origen != destino), pertenencia del solicitante a origen o destino y
// existencia de los productos; consulta las reglas de aprobación activas y,
// si una aplica, siembra un registro de progreso por nivel.
func (uc *TransferUseCase) Create(ctx context.Context, tenantID, userID string, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: el traslado requiere al menos una línea", domain.ErrValidation)
	}
	if in.SourceBranchID == in.DestinationBranchID {
		return nil, fmt.Errorf("%w: origen y destino deben ser distintos", domain.ErrValidation)
	}
	priority := in.Priority
	if priority == "" {
		priority = entity.PriorityNormal
	}
	if !entity.ValidPriority(priority) {
		return nil, fmt.Errorf("%w: prioridad desconocida", domain.ErrValidation)
	}
	for _, it := range in.Items {
		if it.ProductID == "" || it.QtyRequested <= 0 {
			return nil, fmt.Errorf("%w: cada línea requiere producto y cantidad positiva", domain.ErrValidation)
		}
	}
	if err := uc.checkBranches(tenantID, in.SourceBranchID, in.DestinationBranchID); err != nil {
		return nil, err
	}
	if err := uc.requireMembership(tenantID, userID, in.SourceBranchID, in.DestinationBranchID); err != nil {
		return nil, err
	}
	for _, it := range in.Items {
		p, err := uc.prodRepo.GetByID(tenantID, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now()
	tr := &entity.StockTransfer{
		ID:                  uuid.New().String(),
		TenantID:            tenantID,
		TransferNumber:      newTransferNumber(now),
		SourceBranchID:      in.SourceBranchID,
		DestinationBranchID: in.DestinationBranchID,
		Status:              entity.TransferStatusRequested,
		Priority:            priority,
		RequestedByUserID:   userID,
		RequestedAt:         now,
		EntityVersion:       1,
	}
	for _, it := range in.Items {
		tr.Items = append(tr.Items, &entity.TransferItem{
			ID:           uuid.New().String(),
			TransferID:   tr.ID,
			ProductID:    it.ProductID,
			QtyRequested: it.QtyRequested,
		})
	}

	// Valor estimado por producto: costo promedio ponderado vigente en origen.
	costs, err := uc.sourceUnitCosts(tenantID, in.SourceBranchID, tr.Items)
	if err != nil {
		return nil, err
	}
	totals := domainapproval.ComputeTotals(tr.Items, costs)

	err = uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		rules, err := r.Rules.ListActive(tenantID)
		if err != nil {
			return err
		}
		// Las reglas llegan en orden determinista (created_at DESC, id DESC);
		// gana la primera que aplica por completo.
		for _, rule := range rules {
			if domainapproval.Matches(rule, tr, totals) {
				tr.MatchedRuleID = rule.ID
				break
			}
		}
		if err := r.Transfers.Create(tr); err != nil {
			return err
		}
		if tr.MatchedRuleID != "" {
			rule, err := r.Rules.GetByID(tenantID, tr.MatchedRuleID)
			if err != nil {
				return err
			}
			records := seedProgressRecords(tr, rule)
			if err := r.Progress.CreateAll(records); err != nil {
				return err
			}
		}
		return r.Audit.Create(&entity.AuditEvent{
			ID:          uuid.New().String(),
			TenantID:    tenantID,
			ActorUserID: userID,
			EntityType:  entity.AuditEntityTransfer,
			EntityID:    tr.ID,
			Action:      "CREATE",
			After:       transferSnapshot(tr),
			OccurredAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}
	return ToResponse(tr), nil
}

// Approve pasa REQUESTED -> APPROVED. Si una regla aplicó, exige firma completa
// de todos los niveles (si no, Conflict apuntando al endpoint de progreso).
// Fija QtyApproved = QtyRequested salvo override explícito por línea.
func (uc *TransferUseCase) Approve(ctx context.Context, tenantID, transferID, approverUserID string, in dto.ApproveTransferRequest) (*dto.TransferResponse, error) {
	var out *dto.TransferResponse
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		tr, err := r.Transfers.GetByID(tenantID, transferID)
		if err != nil {
			return err
		}
		if tr == nil {
			return domain.ErrNotFound
		}
		if tr.Status != entity.TransferStatusRequested {
			return fmt.Errorf("%w: solo un traslado REQUESTED puede aprobarse", domain.ErrConflict)
		}
		if tr.MatchedRuleID != "" {
			records, err := r.Progress.ListByTransfer(tenantID, transferID)
			if err != nil {
				return err
			}
			if !domainapproval.FullyApproved(records) {
				return fmt.Errorf("%w: niveles de aprobación pendientes; ver /approval-progress", domain.ErrConflict)
			}
		}
		before := transferSnapshot(tr)
		for _, item := range tr.Items {
			qty := item.QtyRequested
			if override, ok := in.Overrides[item.ID]; ok {
				if override < 0 || override > item.QtyRequested {
					return fmt.Errorf("%w: cantidad aprobada fuera de rango", domain.ErrValidation)
				}
				qty = override
			}
			approved := qty
			item.QtyApproved = &approved
		}
		now := time.Now()
		tr.Status = entity.TransferStatusApproved
		tr.ReviewedAt = &now
		if err := r.Transfers.UpdateVersioned(tr, in.EntityVersion); err != nil {
			return err
		}
		if err := r.Audit.Create(&entity.AuditEvent{
			ID:          uuid.New().String(),
			TenantID:    tenantID,
			ActorUserID: approverUserID,
			EntityType:  entity.AuditEntityTransfer,
			EntityID:    tr.ID,
			Action:      "APPROVE",
			Before:      before,
			After:       transferSnapshot(tr),
			OccurredAt:  now,
		}); err != nil {
			return err
		}
		out = ToResponse(tr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reject pasa REQUESTED -> REJECTED con un motivo.
func (uc *TransferUseCase) Reject(ctx context.Context, tenantID, transferID, reviewerUserID string, in dto.RejectTransferRequest) (*dto.TransferResponse, error) {
	var out *dto.TransferResponse
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		tr, err := r.Transfers.GetByID(tenantID, transferID)
		if err != nil {
			return err
		}
		if tr == nil {
			return domain.ErrNotFound
		}
		if !domaintransfer.CanTransition(tr.Status, entity.TransferStatusRejected) {
			return fmt.Errorf("%w: solo un traslado REQUESTED puede rechazarse", domain.ErrConflict)
		}
		before := transferSnapshot(tr)
		now := time.Now()
		tr.Status = entity.TransferStatusRejected
		tr.ReviewedAt = &now
		tr.RejectionReason = in.Reason
		if err := r.Transfers.UpdateVersioned(tr, in.EntityVersion); err != nil {
			return err
		}
		if err := r.Audit.Create(&entity.AuditEvent{
			ID:          uuid.New().String(),
			TenantID:    tenantID,
			ActorUserID: reviewerUserID,
			EntityType:  entity.AuditEntityTransfer,
			EntityID:    tr.ID,
			Action:      "REJECT",
			Before:      before,
			After:       transferSnapshot(tr),
			OccurredAt:  now,
		}); err != nil {
			return err
		}
		out = ToResponse(tr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel cancela un traslado sin despachos. Una vez existe cualquier batch la
// cancelación es ilegal (la mercancía ya salió de origen).
func (uc *TransferUseCase) Cancel(ctx context.Context, tenantID, transferID, actorUserID string, in dto.CancelTransferRequest) (*dto.TransferResponse, error) {
	var out *dto.TransferResponse
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		tr, err := r.Transfers.GetByID(tenantID, transferID)
		if err != nil {
			return err
		}
		if tr == nil {
			return domain.ErrNotFound
		}
		if !domaintransfer.Cancelable(tr.Status) {
			return fmt.Errorf("%w: el traslado ya no admite cancelación", domain.ErrConflict)
		}
		batches, err := r.Batches.CountByTransfer(tenantID, transferID)
		if err != nil {
			return err
		}
		if batches > 0 {
			return fmt.Errorf("%w: el traslado tiene despachos registrados", domain.ErrConflict)
		}
		before := transferSnapshot(tr)
		tr.Status = entity.TransferStatusCancelled
		if err := r.Transfers.UpdateVersioned(tr, in.EntityVersion); err != nil {
			return err
		}
		if err := r.Audit.Create(&entity.AuditEvent{
			ID:          uuid.New().String(),
			TenantID:    tenantID,
			ActorUserID: actorUserID,
			EntityType:  entity.AuditEntityTransfer,
			EntityID:    tr.ID,
			Action:      "CANCEL",
			Before:      before,
			After:       transferSnapshot(tr),
			OccurredAt:  time.Now(),
		}); err != nil {
			return err
		}
		out = ToResponse(tr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePriority cambia la prioridad mientras aún afecta trabajo pendiente
// (REQUESTED/APPROVED). El actor debe pertenecer a origen o destino. El cambio
// queda auditado con prioridad anterior y nueva.
func (uc *TransferUseCase) UpdatePriority(ctx context.Context, tenantID, transferID, actorUserID string, in dto.UpdatePriorityRequest) (*dto.TransferResponse, error) {
	if !entity.ValidPriority(in.Priority) {
		return nil, fmt.Errorf("%w: prioridad desconocida", domain.ErrValidation)
	}
	var out *dto.TransferResponse
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		tr, err := r.Transfers.GetByID(tenantID, transferID)
		if err != nil {
			return err
		}
		if tr == nil {
			return domain.ErrNotFound
		}
		if !domaintransfer.PriorityMutable(tr.Status) {
			return fmt.Errorf("%w: la prioridad no puede cambiar una vez iniciado el despacho", domain.ErrConflict)
		}
		if err := uc.requireMembership(tenantID, actorUserID, tr.SourceBranchID, tr.DestinationBranchID); err != nil {
			return err
		}
		before := transferSnapshot(tr)
		tr.Priority = in.Priority
		if err := r.Transfers.UpdateVersioned(tr, in.EntityVersion); err != nil {
			return err
		}
		if err := r.Audit.Create(&entity.AuditEvent{
			ID:          uuid.New().String(),
			TenantID:    tenantID,
			ActorUserID: actorUserID,
			EntityType:  entity.AuditEntityTransfer,
			EntityID:    tr.ID,
			Action:      "UPDATE_PRIORITY",
			Before:      before,
			After:       transferSnapshot(tr),
			OccurredAt:  time.Now(),
		}); err != nil {
			return err
		}
		out = ToResponse(tr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get devuelve un traslado con sus líneas.
func (uc *TransferUseCase) Get(ctx context.Context, tenantID, transferID string) (*dto.TransferResponse, error) {
	var out *dto.TransferResponse
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		tr, err := r.Transfers.GetByID(tenantID, transferID)
		if err != nil {
			return err
		}
		if tr == nil {
			return domain.ErrNotFound
		}
		out = ToResponse(tr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List lista traslados del tenant en el orden canónico: prioridad URGENT
// primero, luego requested_at DESC, luego id DESC.
func (uc *TransferUseCase) List(ctx context.Context, tenantID string, in dto.ListTransfersRequest) (*dto.TransferListResponse, error) {
	if in.Status != "" && !entity.ValidStatus(in.Status) {
		return nil, fmt.Errorf("%w: estado desconocido", domain.ErrValidation)
	}
	if in.Priority != "" && !entity.ValidPriority(in.Priority) {
		return nil, fmt.Errorf("%w: prioridad desconocida", domain.ErrValidation)
	}
	in.DefaultPage()
	var out *dto.TransferListResponse
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		list, err := r.Transfers.List(tenantID, repository.TransferFilter{
			Status:              in.Status,
			Priority:            in.Priority,
			SourceBranchID:      in.SourceBranchID,
			DestinationBranchID: in.DestinationBranchID,
		}, in.Limit, in.Offset)
		if err != nil {
			return err
		}
		items := make([]dto.TransferResponse, 0, len(list))
		for _, tr := range list {
			items = append(items, *ToResponse(tr))
		}
		out = &dto.TransferListResponse{
			Items: items,
			Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// checkBranches valida que ambas sucursales existan dentro del tenant.
func (uc *TransferUseCase) checkBranches(tenantID, sourceID, destinationID string) error {
	for _, id := range []string{sourceID, destinationID} {
		b, err := uc.branchRepo.GetByID(tenantID, id)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

// requireMembership exige pertenencia del usuario a alguna de las sucursales.
func (uc *TransferUseCase) requireMembership(tenantID, userID string, branchIDs ...string) error {
	for _, id := range branchIDs {
		ok, err := uc.branchRepo.IsMember(tenantID, userID, id)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return domain.ErrPermissionDenied
}

// sourceUnitCosts costo promedio ponderado vigente por producto en la sucursal
// origen (según lotes con existencias). Productos sin lotes valen 0.
func (uc *TransferUseCase) sourceUnitCosts(tenantID, branchID string, items []*entity.TransferItem) (map[string]int64, error) {
	costs := make(map[string]int64, len(items))
	for _, it := range items {
		if _, done := costs[it.ProductID]; done {
			continue
		}
		lots, err := uc.lotRepo.List(tenantID, branchID, it.ProductID)
		if err != nil {
			return nil, err
		}
		var qty, value int64
		for _, l := range lots {
			qty += l.RemainingQty
			value += l.RemainingQty * l.UnitCostMinorUnits
		}
		if qty > 0 {
			costs[it.ProductID] = value / qty
		}
	}
	return costs, nil
}

// seedProgressRecords un registro de progreso por nivel de la regla aplicada.
func seedProgressRecords(tr *entity.StockTransfer, rule *entity.ApprovalRule) []*entity.ApprovalProgressRecord {
	records := make([]*entity.ApprovalProgressRecord, 0, len(rule.Levels))
	for _, lvl := range rule.Levels {
		records = append(records, &entity.ApprovalProgressRecord{
			ID:             uuid.New().String(),
			TenantID:       tr.TenantID,
			TransferID:     tr.ID,
			RuleID:         rule.ID,
			Level:          lvl.Level,
			LevelName:      lvl.Name,
			RequiredRoleID: lvl.RequiredRoleID,
			RequiredUserID: lvl.RequiredUserID,
		})
	}
	return records
}

// newTransferNumber consecutivo legible por fecha más sufijo aleatorio corto.
func newTransferNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("TR-%s-%s", now.Format("20060102"), suffix)
}

// transferSnapshot snapshot tipado para auditoría.
func transferSnapshot(tr *entity.StockTransfer) entity.AuditSnapshot {
	return entity.AuditSnapshot{
		Transfer: &entity.TransferSnapshot{
			Status:        tr.Status,
			Priority:      tr.Priority,
			EntityVersion: tr.EntityVersion,
		},
	}
}

// ToResponse mapea el agregado a su DTO de salida.
func ToResponse(tr *entity.StockTransfer) *dto.TransferResponse {
	resp := &dto.TransferResponse{
		ID:                  tr.ID,
		TransferNumber:      tr.TransferNumber,
		SourceBranchID:      tr.SourceBranchID,
		DestinationBranchID: tr.DestinationBranchID,
		Status:              tr.Status,
		Priority:            tr.Priority,
		RequestedByUserID:   tr.RequestedByUserID,
		RequestedAt:         tr.RequestedAt,
		ReviewedAt:          tr.ReviewedAt,
		ShippedAt:           tr.ShippedAt,
		CompletedAt:         tr.CompletedAt,
		RejectionReason:     tr.RejectionReason,
		MatchedRuleID:       tr.MatchedRuleID,
		EntityVersion:       tr.EntityVersion,
		Items:               make([]dto.TransferItemResponse, 0, len(tr.Items)),
	}
	for _, it := range tr.Items {
		resp.Items = append(resp.Items, dto.TransferItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			QtyRequested: it.QtyRequested,
			QtyApproved:  it.QtyApproved,
			QtyShipped:   it.QtyShipped,
			QtyReceived:  it.QtyReceived,
		})
	}
	return resp
}
