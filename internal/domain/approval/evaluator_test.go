package approval_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/transfers-api/internal/domain/approval"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
)

func TestComputeTotals(t *testing.T) {
	items := []*entity.TransferItem{
		{ProductID: "p1", QtyRequested: 10},
		{ProductID: "p2", QtyRequested: 3},
	}
	costs := map[string]int64{"p1": 100, "p2": 500}

	totals := approval.ComputeTotals(items, costs)
	assert.Equal(t, int64(13), totals.TotalQty)
	assert.True(t, totals.TotalValueMinor.Equal(decimal.NewFromInt(10*100+3*500)),
		"valor total = suma de qty*costo por línea")
}

// Una regla aplica solo si TODAS sus condiciones se cumplen (conjunción).
func TestMatches_Conjuncion(t *testing.T) {
	tr := &entity.StockTransfer{
		SourceBranchID:      "suc-a",
		DestinationBranchID: "suc-b",
		Priority:            entity.PriorityHigh,
	}
	totals := approval.TransferTotals{TotalQty: 20, TotalValueMinor: decimal.NewFromInt(5000)}

	rule := &entity.ApprovalRule{
		IsActive: true,
		Conditions: []*entity.ApprovalCondition{
			{Type: entity.ConditionTotalQtyThreshold, QtyThreshold: 10},
			{Type: entity.ConditionSourceBranch, BranchID: "suc-a"},
		},
	}
	assert.True(t, approval.Matches(rule, tr, totals))

	rule.Conditions = append(rule.Conditions,
		&entity.ApprovalCondition{Type: entity.ConditionDestinationBranch, BranchID: "suc-x"})
	assert.False(t, approval.Matches(rule, tr, totals), "una condición falsa descarta la regla")
}

func TestMatches_ReglaInactivaNoAplica(t *testing.T) {
	rule := &entity.ApprovalRule{
		IsActive: false,
		Conditions: []*entity.ApprovalCondition{
			{Type: entity.ConditionTotalQtyThreshold, QtyThreshold: 1},
		},
	}
	tr := &entity.StockTransfer{Priority: entity.PriorityNormal}
	totals := approval.TransferTotals{TotalQty: 100, TotalValueMinor: decimal.Zero}
	assert.False(t, approval.Matches(rule, tr, totals))
}

func TestMatches_UmbralDeValor(t *testing.T) {
	rule := &entity.ApprovalRule{
		IsActive: true,
		Conditions: []*entity.ApprovalCondition{
			{Type: entity.ConditionTotalValueThreshold, ValueThreshold: decimal.NewFromInt(10000)},
		},
	}
	tr := &entity.StockTransfer{}

	under := approval.TransferTotals{TotalValueMinor: decimal.NewFromInt(9999)}
	assert.False(t, approval.Matches(rule, tr, under))

	exact := approval.TransferTotals{TotalValueMinor: decimal.NewFromInt(10000)}
	assert.True(t, approval.Matches(rule, tr, exact), "el umbral es inclusivo")
}

// PRIORITY_AT_LEAST: aplica cuando la prioridad del traslado es igual o más
// urgente que la de la condición.
func TestMatches_PrioridadMinima(t *testing.T) {
	rule := &entity.ApprovalRule{
		IsActive: true,
		Conditions: []*entity.ApprovalCondition{
			{Type: entity.ConditionPriorityAtLeast, Priority: entity.PriorityHigh},
		},
	}
	totals := approval.TransferTotals{TotalValueMinor: decimal.Zero}

	assert.True(t, approval.Matches(rule, &entity.StockTransfer{Priority: entity.PriorityUrgent}, totals))
	assert.True(t, approval.Matches(rule, &entity.StockTransfer{Priority: entity.PriorityHigh}, totals))
	assert.False(t, approval.Matches(rule, &entity.StockTransfer{Priority: entity.PriorityNormal}, totals))
	assert.False(t, approval.Matches(rule, &entity.StockTransfer{Priority: entity.PriorityLow}, totals))
}

func TestCanApproveLevel(t *testing.T) {
	porUsuario := &entity.ApprovalProgressRecord{RequiredUserID: "u-1"}
	assert.True(t, approval.CanApproveLevel(porUsuario, "u-1", entity.RoleBodeguero))
	assert.False(t, approval.CanApproveLevel(porUsuario, "u-2", entity.RoleAdmin),
		"el requisito por usuario no se satisface con otro usuario, sin importar el rol")

	porRol := &entity.ApprovalProgressRecord{RequiredRoleID: entity.RoleSupervisor}
	assert.True(t, approval.CanApproveLevel(porRol, "cualquiera", entity.RoleSupervisor))
	assert.False(t, approval.CanApproveLevel(porRol, "cualquiera", entity.RoleBodeguero))

	ambos := &entity.ApprovalProgressRecord{RequiredUserID: "u-1", RequiredRoleID: entity.RoleSupervisor}
	assert.True(t, approval.CanApproveLevel(ambos, "u-1", entity.RoleBodeguero),
		"usuario específico satisface aunque el rol no coincida")
	assert.True(t, approval.CanApproveLevel(ambos, "u-9", entity.RoleSupervisor),
		"rol requerido satisface aunque no sea el usuario específico")
}

func TestFullyApprovedYLowestUnsatisfied(t *testing.T) {
	assert.False(t, approval.FullyApproved(nil), "sin registros no hay aprobación")

	records := []*entity.ApprovalProgressRecord{
		{Level: 1, Satisfied: true},
		{Level: 2, Satisfied: false},
		{Level: 3, Satisfied: false},
	}
	assert.False(t, approval.FullyApproved(records))
	assert.Equal(t, 2, approval.LowestUnsatisfied(records))

	records[1].Satisfied = true
	assert.Equal(t, 3, approval.LowestUnsatisfied(records))

	records[2].Satisfied = true
	assert.True(t, approval.FullyApproved(records))
	assert.Equal(t, 0, approval.LowestUnsatisfied(records), "0 = nada pendiente")
}
