package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/transfers-api/internal/domain"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/domain/inventory"
	"github.com/tu-usuario/transfers-api/internal/domain/repository"
)

// LedgerUseCase opera el libro de inventario por sucursal: lotes FIFO de costo
// y movimientos append-only. Todas las mutaciones corren dentro de una
// transacción con las filas de lotes bloqueadas (SELECT FOR UPDATE).
type LedgerUseCase struct {
	txRunner    repository.TxRunner
	branchRepo  repository.BranchRepository
	productRepo repository.ProductRepository
	lotRepo     repository.StockLotRepository
	entryRepo   repository.LedgerEntryRepository
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner repository.TxRunner,
	branchRepo repository.BranchRepository,
	productRepo repository.ProductRepository,
	lotRepo repository.StockLotRepository,
	entryRepo repository.LedgerEntryRepository,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:    txRunner,
		branchRepo:  branchRepo,
		productRepo: productRepo,
		lotRepo:     lotRepo,
		entryRepo:   entryRepo,
	}
}

// AdjustmentInput entrada para un ajuste manual de stock.
// Qty positivo crea un lote nuevo (UnitCostMinorUnits obligatorio);
// Qty negativo consume lotes en orden FIFO.
type AdjustmentInput struct {
	BranchID           string
	ProductID          string
	Qty                int64
	UnitCostMinorUnits int64
	Reason             string
}

// Adjust registra un ajuste manual (entrada o salida) de forma transaccional.
func (uc *LedgerUseCase) Adjust(ctx context.Context, tenantID, userID string, in AdjustmentInput) error {
	if in.Qty == 0 {
		return domain.ErrValidation
	}
	if in.Qty > 0 && in.UnitCostMinorUnits < 0 {
		return domain.ErrValidation
	}
	if err := uc.checkScope(tenantID, in.BranchID, in.ProductID); err != nil {
		return err
	}
	now := time.Now()
	return uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		if in.Qty > 0 {
			_, err := ApplyIncrease(r, IncreaseInput{
				TenantID:           tenantID,
				BranchID:           in.BranchID,
				ProductID:          in.ProductID,
				Qty:                in.Qty,
				UnitCostMinorUnits: in.UnitCostMinorUnits,
				Kind:               entity.LedgerKindAdjustment,
				ReferenceID:        in.Reason,
				ActorUserID:        userID,
				OccurredAt:         now,
			})
			return err
		}
		_, err := ApplyConsume(r, ConsumeInput{
			TenantID:    tenantID,
			BranchID:    in.BranchID,
			ProductID:   in.ProductID,
			Qty:         -in.Qty,
			Kind:        entity.LedgerKindAdjustment,
			ReferenceID: in.Reason,
			ActorUserID: userID,
			OccurredAt:  now,
		})
		return err
	})
}

// OnHand existencias actuales del par (sucursal, producto).
func (uc *LedgerUseCase) OnHand(ctx context.Context, tenantID, branchID, productID string) (int64, error) {
	if err := uc.checkScope(tenantID, branchID, productID); err != nil {
		return 0, err
	}
	return uc.lotRepo.SumRemaining(tenantID, branchID, productID)
}

// ReconciliationReport resultado del chequeo libro vs. lotes.
type ReconciliationReport struct {
	BranchID   string
	ProductID  string
	OnHandQty  int64 // suma de RemainingQty de los lotes
	LedgerQty  int64 // suma de QtyDelta del libro
	Consistent bool
}

// Reconcile verifica el invariante de reconciliación: la suma de deltas del
// libro debe igualar las existencias según lotes.
func (uc *LedgerUseCase) Reconcile(ctx context.Context, tenantID, branchID, productID string) (*ReconciliationReport, error) {
	if err := uc.checkScope(tenantID, branchID, productID); err != nil {
		return nil, err
	}
	onHand, err := uc.lotRepo.SumRemaining(tenantID, branchID, productID)
	if err != nil {
		return nil, err
	}
	ledgerSum, err := uc.entryRepo.SumQtyDelta(tenantID, branchID, productID)
	if err != nil {
		return nil, err
	}
	return &ReconciliationReport{
		BranchID:   branchID,
		ProductID:  productID,
		OnHandQty:  onHand,
		LedgerQty:  ledgerSum,
		Consistent: onHand == ledgerSum,
	}, nil
}

// ListLots lotes FIFO (incluye agotados) del par (sucursal, producto).
func (uc *LedgerUseCase) ListLots(ctx context.Context, tenantID, branchID, productID string) ([]*entity.StockLot, error) {
	if err := uc.checkScope(tenantID, branchID, productID); err != nil {
		return nil, err
	}
	return uc.lotRepo.List(tenantID, branchID, productID)
}

// ListEntries movimientos del libro del par (sucursal, producto).
func (uc *LedgerUseCase) ListEntries(ctx context.Context, tenantID, branchID, productID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	if err := uc.checkScope(tenantID, branchID, productID); err != nil {
		return nil, err
	}
	return uc.entryRepo.ListByBranchProduct(tenantID, branchID, productID, limit, offset)
}

// checkScope valida que sucursal y producto existan dentro del tenant.
// Fuera de tenant es indistinguible de inexistente, por diseño.
func (uc *LedgerUseCase) checkScope(tenantID, branchID, productID string) error {
	branch, err := uc.branchRepo.GetByID(tenantID, branchID)
	if err != nil {
		return err
	}
	if branch == nil {
		return domain.ErrNotFound
	}
	product, err := uc.productRepo.GetByID(tenantID, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return nil
}

// IncreaseInput entrada de ApplyIncrease.
type IncreaseInput struct {
	TenantID           string
	BranchID           string
	ProductID          string
	Qty                int64
	UnitCostMinorUnits int64
	Kind               string
	ReferenceID        string
	ActorUserID        string
	OccurredAt         time.Time
}

// ApplyIncrease crea SIEMPRE un lote nuevo (nunca fusiona, aunque el costo
// coincida: se preserva la historia de costos exacta) y escribe el asiento
// correspondiente. Debe llamarse con repositorios atados a una transacción.
func ApplyIncrease(r repository.TxRepos, in IncreaseInput) (*entity.StockLot, error) {
	if in.Qty <= 0 {
		return nil, domain.ErrValidation
	}
	lot := &entity.StockLot{
		ID:                 uuid.New().String(),
		TenantID:           in.TenantID,
		BranchID:           in.BranchID,
		ProductID:          in.ProductID,
		ReceivedAt:         in.OccurredAt,
		OriginalQty:        in.Qty,
		RemainingQty:       in.Qty,
		UnitCostMinorUnits: in.UnitCostMinorUnits,
	}
	if err := r.Lots.Create(lot); err != nil {
		return nil, err
	}
	entry := &entity.LedgerEntry{
		ID:                 uuid.New().String(),
		TenantID:           in.TenantID,
		BranchID:           in.BranchID,
		ProductID:          in.ProductID,
		Kind:               in.Kind,
		QtyDelta:           in.Qty,
		UnitCostMinorUnits: in.UnitCostMinorUnits,
		LotID:              lot.ID,
		OccurredAt:         in.OccurredAt,
		ReferenceID:        in.ReferenceID,
		CreatedBy:          in.ActorUserID,
	}
	if err := r.Ledger.Create(entry); err != nil {
		return nil, err
	}
	return lot, nil
}

// ConsumeInput entrada de ApplyConsume.
type ConsumeInput struct {
	TenantID    string
	BranchID    string
	ProductID   string
	Qty         int64
	Kind        string
	ReferenceID string
	ActorUserID string
	OccurredAt  time.Time
}

// ApplyConsume consume qty unidades en orden FIFO estricto dentro de la
// transacción del caller: bloquea los lotes disponibles, planifica el consumo
// y aplica decrementos más un asiento por lote tocado. Atómico: si el stock no
// alcanza devuelve domain.ErrInsufficientStock sin aplicar nada.
func ApplyConsume(r repository.TxRepos, in ConsumeInput) (*inventory.ConsumptionResult, error) {
	if in.Qty <= 0 {
		return nil, domain.ErrValidation
	}
	lots, err := r.Lots.ListAvailableForUpdate(in.TenantID, in.BranchID, in.ProductID)
	if err != nil {
		return nil, err
	}
	plan, err := inventory.PlanConsumption(lots, in.Qty)
	if err != nil {
		return nil, err
	}
	for _, line := range plan.Lines {
		if err := r.Lots.DecrementRemaining(line.LotID, line.Qty); err != nil {
			return nil, err
		}
		entry := &entity.LedgerEntry{
			ID:                 uuid.New().String(),
			TenantID:           in.TenantID,
			BranchID:           in.BranchID,
			ProductID:          in.ProductID,
			Kind:               in.Kind,
			QtyDelta:           -line.Qty,
			UnitCostMinorUnits: line.UnitCostMinorUnits,
			LotID:              line.LotID,
			OccurredAt:         in.OccurredAt,
			ReferenceID:        in.ReferenceID,
			CreatedBy:          in.ActorUserID,
		}
		if err := r.Ledger.Create(entry); err != nil {
			return nil, err
		}
	}
	return plan, nil
}
