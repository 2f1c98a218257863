package approval_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/transfers-api/internal/application/approval"
	"github.com/tu-usuario/transfers-api/internal/application/dto"
	"github.com/tu-usuario/transfers-api/internal/application/transfer"
	"github.com/tu-usuario/transfers-api/internal/domain"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/infrastructure/memory"
)

const (
	testTenant = "tenant-1"
	testSource = "suc-origen"
	testDest   = "suc-destino"
	testProd   = "prod-1"

	userBodeguero  = "user-bodega"
	userSupervisor = "user-super"
	userGerente    = "user-gerente"
)

type fixture struct {
	store      *memory.Store
	approvalUC *approval.ApprovalUseCase
	transferUC *transfer.TransferUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	now := time.Now()

	for _, id := range []string{testSource, testDest} {
		require.NoError(t, store.Branches().Create(&entity.Branch{
			ID: id, TenantID: testTenant, Name: id, CreatedAt: now, UpdatedAt: now,
		}))
	}
	require.NoError(t, store.Branches().AddMember(&entity.BranchMembership{
		UserID: userBodeguero, BranchID: testSource, TenantID: testTenant, CreatedAt: now,
	}))
	require.NoError(t, store.Products().Create(&entity.Product{
		ID: testProd, TenantID: testTenant, SKU: "SKU-1", Name: "producto",
		Unit: "und", IsActive: true, CreatedAt: now, UpdatedAt: now,
	}))

	users := []struct{ id, role string }{
		{userBodeguero, entity.RoleBodeguero},
		{userSupervisor, entity.RoleSupervisor},
		{userGerente, entity.RoleAdmin},
	}
	for _, u := range users {
		require.NoError(t, store.Users().Create(&entity.User{
			ID: u.id, TenantID: testTenant, Name: u.id, Email: u.id + "@acme.test",
			Role: u.role, CreatedAt: now, UpdatedAt: now,
		}))
	}

	return &fixture{
		store:      store,
		approvalUC: approval.NewApprovalUseCase(store.TxRunner(), store.Rules(), store.Progress(), store.Transfers(), store.Users()),
		transferUC: transfer.NewTransferUseCase(store.TxRunner(), store.Branches(), store.Products(), store.Lots()),
	}
}

func (f *fixture) twoLevelRule(t *testing.T, mode string) *dto.ApprovalRuleResponse {
	t.Helper()
	rule, err := f.approvalUC.CreateRule(context.Background(), testTenant, dto.CreateApprovalRuleRequest{
		Name:         "traslados grandes",
		ApprovalMode: mode,
		Conditions: []dto.ConditionRequest{
			{Type: entity.ConditionTotalQtyThreshold, QtyThreshold: 5},
		},
		Levels: []dto.LevelRequest{
			{Level: 1, Name: "supervisor de bodega", RequiredRoleID: entity.RoleSupervisor},
			{Level: 2, Name: "gerencia", RequiredUserID: userGerente},
		},
	})
	require.NoError(t, err)
	return rule
}

func (f *fixture) newTransfer(t *testing.T, qty int64) *dto.TransferResponse {
	t.Helper()
	tr, err := f.transferUC.Create(context.Background(), testTenant, userBodeguero, dto.CreateTransferRequest{
		SourceBranchID:      testSource,
		DestinationBranchID: testDest,
		Items: []dto.CreateTransferItemRequest{
			{ProductID: testProd, QtyRequested: qty},
		},
	})
	require.NoError(t, err)
	return tr
}

// Flujo secuencial completo: nivel 2 antes que nivel 1 es fuera de orden, un
// rol insuficiente es denegado, y solo con ambos niveles firmados el traslado
// puede aprobarse.
func TestSubmitApproval_FlujoSecuencial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.twoLevelRule(t, entity.ApprovalModeSequential)

	tr := f.newTransfer(t, 10)
	require.NotEmpty(t, tr.MatchedRuleID)

	progress, err := f.approvalUC.GetProgress(ctx, testTenant, tr.ID)
	require.NoError(t, err)
	assert.False(t, progress.FullyApproved)
	require.Len(t, progress.Records, 2)

	_, err = f.approvalUC.SubmitApproval(ctx, testTenant, tr.ID, userGerente, dto.SubmitApprovalRequest{Level: 2})
	assert.ErrorIs(t, err, domain.ErrOutOfOrder, "nivel 2 no puede firmar antes que el 1")

	_, err = f.approvalUC.SubmitApproval(ctx, testTenant, tr.ID, userBodeguero, dto.SubmitApprovalRequest{Level: 1})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied, "el nivel 1 exige rol supervisor")

	after1, err := f.approvalUC.SubmitApproval(ctx, testTenant, tr.ID, userSupervisor, dto.SubmitApprovalRequest{Level: 1})
	require.NoError(t, err)
	assert.False(t, after1.FullyApproved)

	_, err = f.transferUC.Approve(ctx, testTenant, tr.ID, userSupervisor, dto.ApproveTransferRequest{
		EntityVersion: tr.EntityVersion,
	})
	assert.ErrorIs(t, err, domain.ErrConflict, "falta el nivel 2")

	_, err = f.approvalUC.SubmitApproval(ctx, testTenant, tr.ID, userSupervisor, dto.SubmitApprovalRequest{Level: 2})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied, "el nivel 2 exige un usuario específico")

	after2, err := f.approvalUC.SubmitApproval(ctx, testTenant, tr.ID, userGerente, dto.SubmitApprovalRequest{Level: 2})
	require.NoError(t, err)
	assert.True(t, after2.FullyApproved)

	approved, err := f.transferUC.Approve(ctx, testTenant, tr.ID, userGerente, dto.ApproveTransferRequest{
		EntityVersion: tr.EntityVersion,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusApproved, approved.Status)
}

// En modo paralelo los niveles firman en cualquier orden.
func TestSubmitApproval_ParaleloSinOrden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.twoLevelRule(t, entity.ApprovalModeParallel)

	tr := f.newTransfer(t, 10)

	_, err := f.approvalUC.SubmitApproval(ctx, testTenant, tr.ID, userGerente, dto.SubmitApprovalRequest{Level: 2})
	require.NoError(t, err)
	out, err := f.approvalUC.SubmitApproval(ctx, testTenant, tr.ID, userSupervisor, dto.SubmitApprovalRequest{Level: 1})
	require.NoError(t, err)
	assert.True(t, out.FullyApproved)
}

// Refirmar un nivel satisfecho es idempotente: conserva el firmante original.
func TestSubmitApproval_RefirmaIdempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.twoLevelRule(t, entity.ApprovalModeParallel)

	tr := f.newTransfer(t, 10)

	_, err := f.approvalUC.SubmitApproval(ctx, testTenant, tr.ID, userSupervisor, dto.SubmitApprovalRequest{Level: 1})
	require.NoError(t, err)

	out, err := f.approvalUC.SubmitApproval(ctx, testTenant, tr.ID, userGerente, dto.SubmitApprovalRequest{Level: 1})
	require.NoError(t, err)
	for _, rec := range out.Records {
		if rec.Level == 1 {
			assert.Equal(t, userSupervisor, rec.ApprovedByUserID)
		}
	}
}

// Sin regla aplicada no hay niveles que firmar.
func TestSubmitApproval_SinReglaEsConflicto(t *testing.T) {
	f := newFixture(t)
	tr := f.newTransfer(t, 10)

	_, err := f.approvalUC.SubmitApproval(context.Background(), testTenant, tr.ID, userSupervisor, dto.SubmitApprovalRequest{Level: 1})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateRule_RechazaInvalidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		nombre string
		mutate func(*dto.CreateApprovalRuleRequest)
	}{
		{"sin nombre", func(r *dto.CreateApprovalRuleRequest) { r.Name = "" }},
		{"modo desconocido", func(r *dto.CreateApprovalRuleRequest) { r.ApprovalMode = "MIXTO" }},
		{"sin condiciones", func(r *dto.CreateApprovalRuleRequest) { r.Conditions = nil }},
		{"sin niveles", func(r *dto.CreateApprovalRuleRequest) { r.Levels = nil }},
		{"niveles no contiguos", func(r *dto.CreateApprovalRuleRequest) { r.Levels[0].Level = 3 }},
		{"nivel sin rol ni usuario", func(r *dto.CreateApprovalRuleRequest) { r.Levels[0].RequiredRoleID = "" }},
		{"umbral de valor no positivo", func(r *dto.CreateApprovalRuleRequest) {
			r.Conditions = []dto.ConditionRequest{{Type: entity.ConditionTotalValueThreshold, ValueThreshold: decimal.Zero}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.nombre, func(t *testing.T) {
			req := dto.CreateApprovalRuleRequest{
				Name:         "regla",
				ApprovalMode: entity.ApprovalModeSequential,
				Conditions:   []dto.ConditionRequest{{Type: entity.ConditionTotalQtyThreshold, QtyThreshold: 5}},
				Levels:       []dto.LevelRequest{{Level: 1, RequiredRoleID: entity.RoleSupervisor}},
			}
			tc.mutate(&req)
			_, err := f.approvalUC.CreateRule(ctx, testTenant, req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	rules, err := f.approvalUC.ListRules(ctx, testTenant, true, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, rules.Items, "ninguna regla inválida debe persistirse")
}

// El borrado es lógico: la regla deja de aplicar a traslados nuevos y puede
// restaurarse.
func TestDeleteRule_BorradoLogicoYRestauracion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rule := f.twoLevelRule(t, entity.ApprovalModeSequential)

	require.NoError(t, f.approvalUC.DeleteRule(ctx, testTenant, rule.ID))

	tr := f.newTransfer(t, 10)
	assert.Empty(t, tr.MatchedRuleID, "una regla inactiva no aplica")

	active, err := f.approvalUC.ListRules(ctx, testTenant, false, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, active.Items)
	all, err := f.approvalUC.ListRules(ctx, testTenant, true, 50, 0)
	require.NoError(t, err)
	assert.Len(t, all.Items, 1)

	require.NoError(t, f.approvalUC.RestoreRule(ctx, testTenant, rule.ID))
	tr2 := f.newTransfer(t, 10)
	assert.Equal(t, rule.ID, tr2.MatchedRuleID)
}

// La actualización reemplaza condiciones y niveles completos y revalida.
func TestUpdateRule_ReemplazaYRevalida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rule := f.twoLevelRule(t, entity.ApprovalModeSequential)

	nuevoNombre := "traslados urgentes"
	updated, err := f.approvalUC.UpdateRule(ctx, testTenant, rule.ID, dto.UpdateApprovalRuleRequest{
		Name: &nuevoNombre,
		Conditions: []dto.ConditionRequest{
			{Type: entity.ConditionPriorityAtLeast, Priority: entity.PriorityHigh},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, nuevoNombre, updated.Name)
	require.Len(t, updated.Conditions, 1)
	assert.Equal(t, entity.ConditionPriorityAtLeast, updated.Conditions[0].Type)
	assert.Len(t, updated.Levels, 2, "los niveles no enviados no se tocan")

	_, err = f.approvalUC.UpdateRule(ctx, testTenant, rule.ID, dto.UpdateApprovalRuleRequest{
		Levels: []dto.LevelRequest{{Level: 2, RequiredRoleID: entity.RoleSupervisor}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "niveles deben ser contiguos desde 1")

	_, err = f.approvalUC.UpdateRule(ctx, testTenant, "regla-fantasma", dto.UpdateApprovalRuleRequest{Name: &nuevoNombre})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
