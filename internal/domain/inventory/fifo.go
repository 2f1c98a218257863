package inventory

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/transfers-api/internal/domain"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
)

// ConsumptionLine cantidad tomada de un lote y su costo unitario.
type ConsumptionLine struct {
	LotID              string
	Qty                int64
	UnitCostMinorUnits int64
}

// ConsumptionResult plan de consumo FIFO sobre uno o más lotes.
type ConsumptionResult struct {
	Lines            []ConsumptionLine
	TotalCostMinor   int64
	WeightedUnitCost int64
	TotalQty         int64
}

// PlanConsumption selecciona lotes en orden FIFO estricto (ReceivedAt ascendente,
// desempate por Seq) y arma el plan de consumo para qty unidades.
// Falla con domain.ErrInsufficientStock si la suma de RemainingQty no alcanza;
// en ese caso no se devuelve plan parcial. No muta los lotes: el caller aplica
// los decrementos dentro de su transacción.
func PlanConsumption(lots []*entity.StockLot, qty int64) (*ConsumptionResult, error) {
	if qty <= 0 {
		return nil, domain.ErrValidation
	}
	ordered := make([]*entity.StockLot, 0, len(lots))
	for _, l := range lots {
		if l.RemainingQty > 0 {
			ordered = append(ordered, l)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].ReceivedAt.Equal(ordered[j].ReceivedAt) {
			return ordered[i].ReceivedAt.Before(ordered[j].ReceivedAt)
		}
		return ordered[i].Seq < ordered[j].Seq
	})

	var available int64
	for _, l := range ordered {
		available += l.RemainingQty
	}
	if available < qty {
		return nil, domain.ErrInsufficientStock
	}

	res := &ConsumptionResult{}
	remaining := qty
	for _, l := range ordered {
		if remaining == 0 {
			break
		}
		take := l.RemainingQty
		if take > remaining {
			take = remaining
		}
		res.Lines = append(res.Lines, ConsumptionLine{
			LotID:              l.ID,
			Qty:                take,
			UnitCostMinorUnits: l.UnitCostMinorUnits,
		})
		res.TotalCostMinor += take * l.UnitCostMinorUnits
		remaining -= take
	}
	res.TotalQty = qty
	res.WeightedUnitCost = weightedUnitCost(res.TotalCostMinor, qty)
	return res, nil
}

// weightedUnitCost = costo total / cantidad, redondeado half-up a unidades menores.
// El costo promedio ponderado viaja con la mercancía al recibir el traslado.
func weightedUnitCost(totalCostMinor, qty int64) int64 {
	if qty == 0 {
		return 0
	}
	avg := decimal.NewFromInt(totalCostMinor).Div(decimal.NewFromInt(qty))
	return avg.Round(0).IntPart()
}
