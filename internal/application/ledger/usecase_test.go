package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/transfers-api/internal/application/ledger"
	"github.com/tu-usuario/transfers-api/internal/domain"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/infrastructure/memory"
)

const (
	testTenant  = "tenant-1"
	testUser    = "user-bodega"
	testBranch  = "suc-1"
	testProduct = "prod-1"
)

func newFixture(t *testing.T) (*memory.Store, *ledger.LedgerUseCase) {
	t.Helper()
	store := memory.NewStore()
	now := time.Now()
	require.NoError(t, store.Branches().Create(&entity.Branch{
		ID: testBranch, TenantID: testTenant, Name: "bodega central", CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.Products().Create(&entity.Product{
		ID: testProduct, TenantID: testTenant, SKU: "SKU-1", Name: "producto",
		Unit: "und", IsActive: true, CreatedAt: now, UpdatedAt: now,
	}))
	uc := ledger.NewLedgerUseCase(store.TxRunner(), store.Branches(), store.Products(), store.Lots(), store.Ledger())
	return store, uc
}

func adjust(t *testing.T, uc *ledger.LedgerUseCase, qty, cost int64) {
	t.Helper()
	require.NoError(t, uc.Adjust(context.Background(), testTenant, testUser, ledger.AdjustmentInput{
		BranchID:           testBranch,
		ProductID:          testProduct,
		Qty:                qty,
		UnitCostMinorUnits: cost,
		Reason:             "conteo físico",
	}))
}

// Un ajuste positivo crea siempre un lote nuevo con su asiento; dos ajustes al
// mismo costo no se fusionan.
func TestAdjust_PositivoCreaLote(t *testing.T) {
	store, uc := newFixture(t)
	ctx := context.Background()

	adjust(t, uc, 5, 100)
	adjust(t, uc, 3, 100)

	lots, err := uc.ListLots(ctx, testTenant, testBranch, testProduct)
	require.NoError(t, err)
	require.Len(t, lots, 2, "mismo costo, lotes separados")
	assert.Equal(t, int64(5), lots[0].RemainingQty)
	assert.Equal(t, int64(3), lots[1].RemainingQty)

	onHand, err := uc.OnHand(ctx, testTenant, testBranch, testProduct)
	require.NoError(t, err)
	assert.Equal(t, int64(8), onHand)

	entries, err := store.Ledger().ListByBranchProduct(testTenant, testBranch, testProduct, 50, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, entity.LedgerKindAdjustment, e.Kind)
		assert.Positive(t, e.QtyDelta)
		assert.NotEmpty(t, e.LotID)
	}
}

// Un ajuste negativo consume en FIFO estricto: agota el lote más antiguo antes
// de tocar el siguiente, con un asiento negativo por lote tocado.
func TestAdjust_NegativoConsumeFIFO(t *testing.T) {
	store, uc := newFixture(t)
	ctx := context.Background()

	adjust(t, uc, 5, 100)
	adjust(t, uc, 5, 120)
	adjust(t, uc, -7, 0)

	lots, err := uc.ListLots(ctx, testTenant, testBranch, testProduct)
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, int64(0), lots[0].RemainingQty, "el lote más antiguo se agota primero")
	assert.Equal(t, int64(3), lots[1].RemainingQty)

	outs := 0
	entries, err := store.Ledger().ListByBranchProduct(testTenant, testBranch, testProduct, 50, 0)
	require.NoError(t, err)
	for _, e := range entries {
		if e.QtyDelta < 0 {
			outs++
		}
	}
	assert.Equal(t, 2, outs, "un asiento de salida por lote consumido")
}

// Stock insuficiente: el ajuste negativo no aplica nada.
func TestAdjust_NegativoInsuficiente(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()

	adjust(t, uc, 5, 100)

	err := uc.Adjust(ctx, testTenant, testUser, ledger.AdjustmentInput{
		BranchID:  testBranch,
		ProductID: testProduct,
		Qty:       -6,
		Reason:    "merma",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	onHand, err := uc.OnHand(ctx, testTenant, testBranch, testProduct)
	require.NoError(t, err)
	assert.Equal(t, int64(5), onHand, "nada debe consumirse parcialmente")
}

func TestAdjust_Validaciones(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()

	err := uc.Adjust(ctx, testTenant, testUser, ledger.AdjustmentInput{
		BranchID: testBranch, ProductID: testProduct, Qty: 0,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = uc.Adjust(ctx, testTenant, testUser, ledger.AdjustmentInput{
		BranchID: testBranch, ProductID: testProduct, Qty: 5, UnitCostMinorUnits: -1,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = uc.Adjust(ctx, testTenant, testUser, ledger.AdjustmentInput{
		BranchID: "suc-fantasma", ProductID: testProduct, Qty: 5,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Tras cualquier secuencia de ajustes el libro reconcilia con los lotes.
func TestReconcile_InvarianteTrasSecuencia(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()

	adjust(t, uc, 10, 100)
	adjust(t, uc, -4, 0)
	adjust(t, uc, 7, 150)
	adjust(t, uc, -8, 0)

	report, err := uc.Reconcile(ctx, testTenant, testBranch, testProduct)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, int64(5), report.OnHandQty)
	assert.Equal(t, report.OnHandQty, report.LedgerQty)
}

// Los lotes agotados siguen listándose (historia de costos), pero no cuentan
// para las existencias.
func TestListLots_IncluyeAgotados(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()

	adjust(t, uc, 5, 100)
	adjust(t, uc, -5, 0)

	lots, err := uc.ListLots(ctx, testTenant, testBranch, testProduct)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Depleted())

	onHand, err := uc.OnHand(ctx, testTenant, testBranch, testProduct)
	require.NoError(t, err)
	assert.Equal(t, int64(0), onHand)
}
