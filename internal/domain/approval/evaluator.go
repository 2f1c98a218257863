package approval

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/domain/transfer"
)

// TransferTotals totales calculados de un traslado contra los que se evalúan
// las condiciones de las reglas.
type TransferTotals struct {
	TotalQty        int64
	TotalValueMinor decimal.Decimal // cantidad solicitada * costo unitario estimado
}

// ComputeTotals suma cantidades y valor estimado de las líneas. El valor usa
// el costo promedio ponderado vigente del producto en la sucursal origen.
func ComputeTotals(items []*entity.TransferItem, unitCostMinor map[string]int64) TransferTotals {
	t := TransferTotals{TotalValueMinor: decimal.Zero}
	for _, it := range items {
		t.TotalQty += it.QtyRequested
		cost := unitCostMinor[it.ProductID]
		t.TotalValueMinor = t.TotalValueMinor.Add(
			decimal.NewFromInt(it.QtyRequested).Mul(decimal.NewFromInt(cost)))
	}
	return t
}

// Matches evalúa si la regla aplica al traslado: TODAS las condiciones deben
// cumplirse. Una regla sin condiciones nunca llega aquí (Validate lo impide).
func Matches(rule *entity.ApprovalRule, tr *entity.StockTransfer, totals TransferTotals) bool {
	if !rule.IsActive {
		return false
	}
	for _, c := range rule.Conditions {
		if !conditionHolds(c, tr, totals) {
			return false
		}
	}
	return true
}

func conditionHolds(c *entity.ApprovalCondition, tr *entity.StockTransfer, totals TransferTotals) bool {
	switch c.Type {
	case entity.ConditionTotalValueThreshold:
		return totals.TotalValueMinor.GreaterThanOrEqual(c.ValueThreshold)
	case entity.ConditionTotalQtyThreshold:
		return totals.TotalQty >= c.QtyThreshold
	case entity.ConditionSourceBranch:
		return tr.SourceBranchID == c.BranchID
	case entity.ConditionDestinationBranch:
		return tr.DestinationBranchID == c.BranchID
	case entity.ConditionPriorityAtLeast:
		return transfer.PriorityRank(tr.Priority) <= transfer.PriorityRank(c.Priority)
	}
	return false
}

// CanApproveLevel verifica si el aprobador satisface el requisito del nivel:
// usuario específico o rol requerido.
func CanApproveLevel(rec *entity.ApprovalProgressRecord, approverUserID, approverRole string) bool {
	if rec.RequiredUserID != "" && rec.RequiredUserID == approverUserID {
		return true
	}
	if rec.RequiredRoleID != "" && rec.RequiredRoleID == approverRole {
		return true
	}
	return false
}

// FullyApproved indica si todos los registros de progreso están satisfechos.
func FullyApproved(records []*entity.ApprovalProgressRecord) bool {
	if len(records) == 0 {
		return false
	}
	for _, r := range records {
		if !r.Satisfied {
			return false
		}
	}
	return true
}

// LowestUnsatisfied devuelve el nivel pendiente más bajo (0 si no hay pendientes).
// En modo SEQUENTIAL un nivel superior no puede firmarse antes que este.
func LowestUnsatisfied(records []*entity.ApprovalProgressRecord) int {
	low := 0
	for _, r := range records {
		if r.Satisfied {
			continue
		}
		if low == 0 || r.Level < low {
			low = r.Level
		}
	}
	return low
}
