package shipping

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/transfers-api/internal/application/dto"
	"github.com/tu-usuario/transfers-api/internal/application/ledger"
	transferuc "github.com/tu-usuario/transfers-api/internal/application/transfer"
	"github.com/tu-usuario/transfers-api/internal/domain"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/domain/repository"
	domaintransfer "github.com/tu-usuario/transfers-api/internal/domain/transfer"
)

// ShippingUseCase registra despachos y recepciones parciales como batches
// discretos y reproducibles contra las líneas del traslado. Cada batch es
// todo-o-nada: consumo de lotes, asientos del libro, avance de cantidades y
// recálculo de estado comparten una transacción.
type ShippingUseCase struct {
	txRunner repository.TxRunner
}

// NewShippingUseCase construye el caso de uso.
func NewShippingUseCase(txRunner repository.TxRunner) *ShippingUseCase {
	return &ShippingUseCase{txRunner: txRunner}
}

// Ship despacha un batch desde la sucursal origen. Lines omitido despacha el
// remanente aprobado completo de cada línea. Cualquier línea con cantidad
// mayor al remanente o stock FIFO insuficiente aborta el batch entero.
func (uc *ShippingUseCase) Ship(ctx context.Context, tenantID, transferID, actorUserID string, in dto.ShipTransferRequest) (*dto.ShipReceiveResponse, error) {
	var out *dto.ShipReceiveResponse
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		if replayed, err := uc.replay(r, tenantID, transferID, in.IdempotencyKey); err != nil || replayed != nil {
			out = replayed
			return err
		}
		tr, err := r.Transfers.GetByID(tenantID, transferID)
		if err != nil {
			return err
		}
		if tr == nil {
			return domain.ErrNotFound
		}
		if tr.Status != entity.TransferStatusApproved {
			return fmt.Errorf("%w: solo un traslado APPROVED admite despacho", domain.ErrConflict)
		}

		lines, err := resolveLines(tr, in.Lines, remainingToShip)
		if err != nil {
			return err
		}

		now := time.Now()
		batch := &entity.ShipmentBatch{
			ID:          uuid.New().String(),
			TransferID:  tr.ID,
			TenantID:    tenantID,
			Kind:        entity.BatchKindShipment,
			OccurredAt:  now,
			ActorUserID: actorUserID,
		}
		for _, ln := range lines {
			// Consume lotes FIFO en origen; el costo promedio ponderado de los
			// lotes tocados queda registrado en la línea del batch.
			plan, err := ledger.ApplyConsume(r, ledger.ConsumeInput{
				TenantID:    tenantID,
				BranchID:    tr.SourceBranchID,
				ProductID:   ln.item.ProductID,
				Qty:         ln.qty,
				Kind:        entity.LedgerKindTransferOut,
				ReferenceID: tr.ID,
				ActorUserID: actorUserID,
				OccurredAt:  now,
			})
			if err != nil {
				return err
			}
			ln.item.QtyShipped += ln.qty
			batch.Lines = append(batch.Lines, &entity.BatchLine{
				ID:                 uuid.New().String(),
				BatchID:            batch.ID,
				ItemID:             ln.item.ID,
				ProductID:          ln.item.ProductID,
				Qty:                ln.qty,
				UnitCostMinorUnits: plan.WeightedUnitCost,
			})
		}

		batch.BatchNumber, err = r.Batches.NextBatchNumber(tenantID, tr.ID, entity.BatchKindShipment)
		if err != nil {
			return err
		}
		if err := r.Batches.Create(batch); err != nil {
			return err
		}

		before := transferSnapshot(tr)
		newStatus := domaintransfer.StatusAfterShipment(tr.Items)
		if newStatus == entity.TransferStatusInTransit && tr.Status != entity.TransferStatusInTransit {
			tr.ShippedAt = &now
		}
		tr.Status = newStatus
		if err := r.Transfers.UpdateVersioned(tr, in.EntityVersion); err != nil {
			return err
		}
		if err := r.Audit.Create(&entity.AuditEvent{
			ID:          uuid.New().String(),
			TenantID:    tenantID,
			ActorUserID: actorUserID,
			EntityType:  entity.AuditEntityTransfer,
			EntityID:    tr.ID,
			Action:      "SHIP",
			Before:      before,
			After:       transferSnapshot(tr),
			OccurredAt:  now,
		}); err != nil {
			return err
		}
		if in.IdempotencyKey != "" {
			if err := r.Idempotency.Save(tenantID, in.IdempotencyKey, batch.ID); err != nil {
				return err
			}
		}
		out = &dto.ShipReceiveResponse{
			Batch:    toBatchResponse(batch),
			BatchID:  batch.ID,
			Transfer: *transferuc.ToResponse(tr),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Receive registra un batch de recepción en destino. Lines omitido recibe el
// remanente despachado completo de cada línea. El lote destino se crea al
// costo promedio ponderado registrado al despachar: el costo viaja con la
// mercancía, no se reprecía en destino.
func (uc *ShippingUseCase) Receive(ctx context.Context, tenantID, transferID, actorUserID string, in dto.ReceiveTransferRequest) (*dto.ShipReceiveResponse, error) {
	var out *dto.ShipReceiveResponse
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		if replayed, err := uc.replay(r, tenantID, transferID, in.IdempotencyKey); err != nil || replayed != nil {
			out = replayed
			return err
		}
		tr, err := r.Transfers.GetByID(tenantID, transferID)
		if err != nil {
			return err
		}
		if tr == nil {
			return domain.ErrNotFound
		}
		if tr.Status != entity.TransferStatusInTransit {
			return fmt.Errorf("%w: solo un traslado IN_TRANSIT admite recepción", domain.ErrConflict)
		}

		lines, err := resolveLines(tr, in.Lines, remainingToReceive)
		if err != nil {
			return err
		}
		costs, err := shippedUnitCosts(r, tenantID, tr.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		batch := &entity.ShipmentBatch{
			ID:          uuid.New().String(),
			TransferID:  tr.ID,
			TenantID:    tenantID,
			Kind:        entity.BatchKindReceipt,
			OccurredAt:  now,
			ActorUserID: actorUserID,
		}
		for _, ln := range lines {
			unitCost := costs[ln.item.ID]
			if _, err := ledger.ApplyIncrease(r, ledger.IncreaseInput{
				TenantID:           tenantID,
				BranchID:           tr.DestinationBranchID,
				ProductID:          ln.item.ProductID,
				Qty:                ln.qty,
				UnitCostMinorUnits: unitCost,
				Kind:               entity.LedgerKindTransferIn,
				ReferenceID:        tr.ID,
				ActorUserID:        actorUserID,
				OccurredAt:         now,
			}); err != nil {
				return err
			}
			ln.item.QtyReceived += ln.qty
			batch.Lines = append(batch.Lines, &entity.BatchLine{
				ID:                 uuid.New().String(),
				BatchID:            batch.ID,
				ItemID:             ln.item.ID,
				ProductID:          ln.item.ProductID,
				Qty:                ln.qty,
				UnitCostMinorUnits: unitCost,
			})
		}

		batch.BatchNumber, err = r.Batches.NextBatchNumber(tenantID, tr.ID, entity.BatchKindReceipt)
		if err != nil {
			return err
		}
		if err := r.Batches.Create(batch); err != nil {
			return err
		}

		before := transferSnapshot(tr)
		newStatus := domaintransfer.StatusAfterReceipt(tr.Items)
		if newStatus == entity.TransferStatusCompleted {
			tr.CompletedAt = &now
		}
		tr.Status = newStatus
		if err := r.Transfers.UpdateVersioned(tr, in.EntityVersion); err != nil {
			return err
		}
		if err := r.Audit.Create(&entity.AuditEvent{
			ID:          uuid.New().String(),
			TenantID:    tenantID,
			ActorUserID: actorUserID,
			EntityType:  entity.AuditEntityTransfer,
			EntityID:    tr.ID,
			Action:      "RECEIVE",
			Before:      before,
			After:       transferSnapshot(tr),
			OccurredAt:  now,
		}); err != nil {
			return err
		}
		if in.IdempotencyKey != "" {
			if err := r.Idempotency.Save(tenantID, in.IdempotencyKey, batch.ID); err != nil {
				return err
			}
		}
		out = &dto.ShipReceiveResponse{
			Batch:    toBatchResponse(batch),
			BatchID:  batch.ID,
			Transfer: *transferuc.ToResponse(tr),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListBatches batches de despacho y recepción de un traslado.
func (uc *ShippingUseCase) ListBatches(ctx context.Context, tenantID, transferID string) ([]dto.BatchResponse, error) {
	var out []dto.BatchResponse
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		tr, err := r.Transfers.GetByID(tenantID, transferID)
		if err != nil {
			return err
		}
		if tr == nil {
			return domain.ErrNotFound
		}
		batches, err := r.Batches.ListByTransfer(tenantID, transferID)
		if err != nil {
			return err
		}
		for _, b := range batches {
			out = append(out, *toBatchResponse(b))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// replay resuelve la llave de idempotencia: si ya fue usada devuelve la
// referencia del batch original sin re-aplicar nada.
func (uc *ShippingUseCase) replay(r repository.TxRepos, tenantID, transferID, key string) (*dto.ShipReceiveResponse, error) {
	if key == "" {
		return nil, nil
	}
	ref, err := r.Idempotency.Get(tenantID, key)
	if err != nil {
		return nil, err
	}
	if ref == "" {
		return nil, nil
	}
	tr, err := r.Transfers.GetByID(tenantID, transferID)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, domain.ErrNotFound
	}
	return &dto.ShipReceiveResponse{
		BatchID:  ref,
		Replayed: true,
		Transfer: *transferuc.ToResponse(tr),
	}, nil
}

// batchLine línea resuelta contra su TransferItem.
type batchLine struct {
	item *entity.TransferItem
	qty  int64
}

func remainingToShip(it *entity.TransferItem) int64    { return it.RemainingToShip() }
func remainingToReceive(it *entity.TransferItem) int64 { return it.RemainingToReceive() }

// resolveLines resuelve las líneas pedidas contra el traslado. Sin líneas
// explícitas toma el remanente completo de cada línea con saldo. Valida que
// ninguna cantidad exceda su remanente.
func resolveLines(tr *entity.StockTransfer, reqs []dto.BatchLineRequest, remaining func(*entity.TransferItem) int64) ([]batchLine, error) {
	byID := make(map[string]*entity.TransferItem, len(tr.Items))
	for _, it := range tr.Items {
		byID[it.ID] = it
	}
	var lines []batchLine
	if len(reqs) == 0 {
		for _, it := range tr.Items {
			if rem := remaining(it); rem > 0 {
				lines = append(lines, batchLine{item: it, qty: rem})
			}
		}
	} else {
		for _, req := range reqs {
			it, ok := byID[req.ItemID]
			if !ok {
				return nil, fmt.Errorf("%w: línea desconocida en el traslado", domain.ErrValidation)
			}
			if req.Qty <= 0 || req.Qty > remaining(it) {
				return nil, fmt.Errorf("%w: cantidad excede el remanente de la línea", domain.ErrValidation)
			}
			lines = append(lines, batchLine{item: it, qty: req.Qty})
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no hay remanente que mover", domain.ErrValidation)
	}
	return lines, nil
}

// shippedUnitCosts costo promedio ponderado por línea según los batches de
// despacho previos (ponderado por cantidad de cada batch).
func shippedUnitCosts(r repository.TxRepos, tenantID, transferID string) (map[string]int64, error) {
	batches, err := r.Batches.ListByTransfer(tenantID, transferID)
	if err != nil {
		return nil, err
	}
	qty := make(map[string]int64)
	value := make(map[string]int64)
	for _, b := range batches {
		if b.Kind != entity.BatchKindShipment {
			continue
		}
		for _, ln := range b.Lines {
			qty[ln.ItemID] += ln.Qty
			value[ln.ItemID] += ln.Qty * ln.UnitCostMinorUnits
		}
	}
	costs := make(map[string]int64, len(qty))
	for id, q := range qty {
		if q > 0 {
			costs[id] = value[id] / q
		}
	}
	return costs, nil
}

func toBatchResponse(b *entity.ShipmentBatch) *dto.BatchResponse {
	resp := &dto.BatchResponse{
		ID:          b.ID,
		TransferID:  b.TransferID,
		BatchNumber: b.BatchNumber,
		Kind:        b.Kind,
		OccurredAt:  b.OccurredAt,
		ActorUserID: b.ActorUserID,
	}
	for _, ln := range b.Lines {
		resp.Lines = append(resp.Lines, dto.BatchLineResponse{
			ItemID:             ln.ItemID,
			ProductID:          ln.ProductID,
			Qty:                ln.Qty,
			UnitCostMinorUnits: ln.UnitCostMinorUnits,
		})
	}
	return resp
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
