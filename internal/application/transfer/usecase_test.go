package transfer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/transfers-api/internal/application/dto"
	"github.com/tu-usuario/transfers-api/internal/application/transfer"
	"github.com/tu-usuario/transfers-api/internal/domain"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/infrastructure/memory"
)

const (
	testTenant  = "tenant-1"
	testUser    = "user-bodega"
	testSource  = "suc-origen"
	testDest    = "suc-destino"
	testProduct = "prod-1"
)

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	now := time.Now()
	for _, id := range []string{testSource, testDest} {
		require.NoError(t, store.Branches().Create(&entity.Branch{
			ID: id, TenantID: testTenant, Name: id, CreatedAt: now, UpdatedAt: now,
		}))
	}
	require.NoError(t, store.Branches().AddMember(&entity.BranchMembership{
		UserID: testUser, BranchID: testSource, TenantID: testTenant, CreatedAt: now,
	}))
	require.NoError(t, store.Products().Create(&entity.Product{
		ID: testProduct, TenantID: testTenant, SKU: "SKU-1", Name: "producto",
		Unit: "und", IsActive: true, CreatedAt: now, UpdatedAt: now,
	}))
	return store
}

func newUseCase(store *memory.Store) *transfer.TransferUseCase {
	return transfer.NewTransferUseCase(store.TxRunner(), store.Branches(), store.Products(), store.Lots())
}

func createRequest(qty int64) dto.CreateTransferRequest {
	return dto.CreateTransferRequest{
		SourceBranchID:      testSource,
		DestinationBranchID: testDest,
		Items: []dto.CreateTransferItemRequest{
			{ProductID: testProduct, QtyRequested: qty},
		},
	}
}

// Sin reglas activas el traslado nace REQUESTED sin regla aplicada y una sola
// aprobación basta: fija QtyApproved = QtyRequested y sube la versión.
func TestCreateYAprobar_SinRegla(t *testing.T) {
	store := newStore(t)
	uc := newUseCase(store)
	ctx := context.Background()

	created, err := uc.Create(ctx, testTenant, testUser, createRequest(10))
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusRequested, created.Status)
	assert.Equal(t, entity.PriorityNormal, created.Priority, "prioridad por defecto")
	assert.Empty(t, created.MatchedRuleID)
	assert.NotEmpty(t, created.TransferNumber)
	assert.Equal(t, int64(1), created.EntityVersion)

	approved, err := uc.Approve(ctx, testTenant, created.ID, testUser, dto.ApproveTransferRequest{
		EntityVersion: created.EntityVersion,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusApproved, approved.Status)
	assert.Equal(t, int64(2), approved.EntityVersion)
	assert.NotNil(t, approved.ReviewedAt)
	require.NotNil(t, approved.Items[0].QtyApproved)
	assert.Equal(t, int64(10), *approved.Items[0].QtyApproved)
}

func TestCreate_Validaciones(t *testing.T) {
	store := newStore(t)
	uc := newUseCase(store)
	ctx := context.Background()

	cases := []struct {
		nombre string
		mutate func(*dto.CreateTransferRequest)
		want   error
	}{
		{"sin líneas", func(r *dto.CreateTransferRequest) { r.Items = nil }, domain.ErrValidation},
		{"origen igual a destino", func(r *dto.CreateTransferRequest) { r.DestinationBranchID = testSource }, domain.ErrValidation},
		{"prioridad desconocida", func(r *dto.CreateTransferRequest) { r.Priority = "EXTREMA" }, domain.ErrValidation},
		{"cantidad no positiva", func(r *dto.CreateTransferRequest) { r.Items[0].QtyRequested = 0 }, domain.ErrValidation},
		{"producto inexistente", func(r *dto.CreateTransferRequest) { r.Items[0].ProductID = "prod-fantasma" }, domain.ErrNotFound},
		{"sucursal inexistente", func(r *dto.CreateTransferRequest) { r.SourceBranchID = "suc-fantasma" }, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.nombre, func(t *testing.T) {
			req := createRequest(10)
			tc.mutate(&req)
			_, err := uc.Create(ctx, testTenant, testUser, req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

// El solicitante debe pertenecer a origen o destino.
func TestCreate_RequiereMembresia(t *testing.T) {
	store := newStore(t)
	uc := newUseCase(store)

	_, err := uc.Create(context.Background(), testTenant, "user-ajeno", createRequest(10))
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

// Con una regla aplicada, aprobar exige todos los niveles firmados.
func TestApprove_BloqueadoPorReglaSinFirmar(t *testing.T) {
	store := newStore(t)
	uc := newUseCase(store)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, store.Rules().Create(&entity.ApprovalRule{
		ID: "rule-1", TenantID: testTenant, Name: "traslados grandes",
		ApprovalMode: entity.ApprovalModeSequential, IsActive: true,
		Conditions: []*entity.ApprovalCondition{
			{ID: "c1", RuleID: "rule-1", Type: entity.ConditionTotalQtyThreshold, QtyThreshold: 5},
		},
		Levels: []*entity.ApprovalLevel{
			{ID: "l1", RuleID: "rule-1", Level: 1, RequiredRoleID: entity.RoleSupervisor},
		},
		CreatedAt: now, UpdatedAt: now,
	}))

	created, err := uc.Create(ctx, testTenant, testUser, createRequest(10))
	require.NoError(t, err)
	assert.Equal(t, "rule-1", created.MatchedRuleID)

	_, err = uc.Approve(ctx, testTenant, created.ID, testUser, dto.ApproveTransferRequest{
		EntityVersion: created.EntityVersion,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Una cantidad por debajo del umbral no dispara la regla.
	small, err := uc.Create(ctx, testTenant, testUser, createRequest(4))
	require.NoError(t, err)
	assert.Empty(t, small.MatchedRuleID)
}

// Overrides por línea: se puede aprobar menos de lo solicitado, nunca más.
func TestApprove_Overrides(t *testing.T) {
	store := newStore(t)
	uc := newUseCase(store)
	ctx := context.Background()

	created, err := uc.Create(ctx, testTenant, testUser, createRequest(10))
	require.NoError(t, err)
	itemID := created.Items[0].ID

	_, err = uc.Approve(ctx, testTenant, created.ID, testUser, dto.ApproveTransferRequest{
		EntityVersion: created.EntityVersion,
		Overrides:     map[string]int64{itemID: 11},
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "no se puede aprobar más de lo solicitado")

	approved, err := uc.Approve(ctx, testTenant, created.ID, testUser, dto.ApproveTransferRequest{
		EntityVersion: created.EntityVersion,
		Overrides:     map[string]int64{itemID: 3},
	})
	require.NoError(t, err)
	require.NotNil(t, approved.Items[0].QtyApproved)
	assert.Equal(t, int64(3), *approved.Items[0].QtyApproved)
}

// Dos escritores contra la misma versión: el segundo recibe StaleVersion y el
// estado no se corrompe.
func TestApprove_VersionDesactualizada(t *testing.T) {
	store := newStore(t)
	uc := newUseCase(store)
	ctx := context.Background()

	created, err := uc.Create(ctx, testTenant, testUser, createRequest(10))
	require.NoError(t, err)

	_, err = uc.UpdatePriority(ctx, testTenant, created.ID, testUser, dto.UpdatePriorityRequest{
		EntityVersion: created.EntityVersion,
		Priority:      entity.PriorityHigh,
	})
	require.NoError(t, err)

	_, err = uc.Approve(ctx, testTenant, created.ID, testUser, dto.ApproveTransferRequest{
		EntityVersion: created.EntityVersion, // versión ya consumida
	})
	assert.ErrorIs(t, err, domain.ErrStaleVersion)

	after, err := uc.Get(ctx, testTenant, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusRequested, after.Status)
	assert.Equal(t, entity.PriorityHigh, after.Priority)
	assert.Equal(t, int64(2), after.EntityVersion)
}

func TestReject_SoloDesdeRequested(t *testing.T) {
	store := newStore(t)
	uc := newUseCase(store)
	ctx := context.Background()

	created, err := uc.Create(ctx, testTenant, testUser, createRequest(10))
	require.NoError(t, err)

	rejected, err := uc.Reject(ctx, testTenant, created.ID, testUser, dto.RejectTransferRequest{
		EntityVersion: created.EntityVersion,
		Reason:        "sin capacidad en destino",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusRejected, rejected.Status)
	assert.Equal(t, "sin capacidad en destino", rejected.RejectionReason)

	_, err = uc.Reject(ctx, testTenant, created.ID, testUser, dto.RejectTransferRequest{
		EntityVersion: rejected.EntityVersion,
		Reason:        "de nuevo",
	})
	assert.ErrorIs(t, err, domain.ErrConflict, "un estado terminal no admite transiciones")
}

func TestCancel_DesdeRequestedYAprobado(t *testing.T) {
	store := newStore(t)
	uc := newUseCase(store)
	ctx := context.Background()

	created, err := uc.Create(ctx, testTenant, testUser, createRequest(10))
	require.NoError(t, err)
	approved, err := uc.Approve(ctx, testTenant, created.ID, testUser, dto.ApproveTransferRequest{
		EntityVersion: created.EntityVersion,
	})
	require.NoError(t, err)

	cancelled, err := uc.Cancel(ctx, testTenant, created.ID, testUser, dto.CancelTransferRequest{
		EntityVersion: approved.EntityVersion,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCancelled, cancelled.Status)
}

func TestUpdatePriority_InmutableTrasDespacho(t *testing.T) {
	store := newStore(t)
	uc := newUseCase(store)
	ctx := context.Background()

	created, err := uc.Create(ctx, testTenant, testUser, createRequest(10))
	require.NoError(t, err)

	// Forzamos IN_TRANSIT directamente en el almacén para aislar la regla.
	tr, err := store.Transfers().GetByID(testTenant, created.ID)
	require.NoError(t, err)
	tr.Status = entity.TransferStatusInTransit
	require.NoError(t, store.Transfers().UpdateVersioned(tr, tr.EntityVersion))

	_, err = uc.UpdatePriority(ctx, testTenant, created.ID, testUser, dto.UpdatePriorityRequest{
		EntityVersion: 2,
		Priority:      entity.PriorityUrgent,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// El listado ordena URGENT primero y luego por fecha de solicitud descendente.
func TestList_OrdenCanonico(t *testing.T) {
	store := newStore(t)
	uc := newUseCase(store)
	ctx := context.Background()

	for _, p := range []string{entity.PriorityLow, entity.PriorityUrgent, entity.PriorityHigh, entity.PriorityNormal} {
		req := createRequest(1)
		req.Priority = p
		_, err := uc.Create(ctx, testTenant, testUser, req)
		require.NoError(t, err)
	}

	out, err := uc.List(ctx, testTenant, dto.ListTransfersRequest{})
	require.NoError(t, err)
	require.Len(t, out.Items, 4)
	got := make([]string, 0, 4)
	for _, it := range out.Items {
		got = append(got, it.Priority)
	}
	assert.Equal(t, []string{
		entity.PriorityUrgent, entity.PriorityHigh, entity.PriorityNormal, entity.PriorityLow,
	}, got)
}

func TestList_FiltroPorEstado(t *testing.T) {
	store := newStore(t)
	uc := newUseCase(store)
	ctx := context.Background()

	first, err := uc.Create(ctx, testTenant, testUser, createRequest(1))
	require.NoError(t, err)
	_, err = uc.Create(ctx, testTenant, testUser, createRequest(2))
	require.NoError(t, err)
	_, err = uc.Approve(ctx, testTenant, first.ID, testUser, dto.ApproveTransferRequest{
		EntityVersion: first.EntityVersion,
	})
	require.NoError(t, err)

	out, err := uc.List(ctx, testTenant, dto.ListTransfersRequest{Status: entity.TransferStatusApproved})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, first.ID, out.Items[0].ID)

	_, err = uc.List(ctx, testTenant, dto.ListTransfersRequest{Status: "PENDIENTE"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// Un tenant nunca ve traslados de otro.
func TestGet_AislamientoPorTenant(t *testing.T) {
	store := newStore(t)
	uc := newUseCase(store)
	ctx := context.Background()

	created, err := uc.Create(ctx, testTenant, testUser, createRequest(10))
	require.NoError(t, err)

	_, err = uc.Get(ctx, "otro-tenant", created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
