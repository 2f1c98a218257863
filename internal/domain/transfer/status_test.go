package transfer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/domain/transfer"
)

func item(approved, shipped, received int64) *entity.TransferItem {
	return &entity.TransferItem{
		QtyRequested: approved,
		QtyApproved:  &approved,
		QtyShipped:   shipped,
		QtyReceived:  received,
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		legal    bool
	}{
		{entity.TransferStatusRequested, entity.TransferStatusApproved, true},
		{entity.TransferStatusRequested, entity.TransferStatusRejected, true},
		{entity.TransferStatusRequested, entity.TransferStatusCancelled, true},
		{entity.TransferStatusRequested, entity.TransferStatusInTransit, false},
		{entity.TransferStatusApproved, entity.TransferStatusInTransit, true},
		{entity.TransferStatusApproved, entity.TransferStatusCancelled, true},
		{entity.TransferStatusApproved, entity.TransferStatusRejected, false},
		{entity.TransferStatusInTransit, entity.TransferStatusCompleted, true},
		{entity.TransferStatusInTransit, entity.TransferStatusCancelled, false},
		{entity.TransferStatusCompleted, entity.TransferStatusApproved, false},
		{entity.TransferStatusRejected, entity.TransferStatusApproved, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.legal, transfer.CanTransition(c.from, c.to),
			"%s -> %s", c.from, c.to)
	}
}

// Un despacho parcial mantiene APPROVED; IN_TRANSIT solo con despacho completo.
func TestStatusAfterShipment(t *testing.T) {
	parcial := []*entity.TransferItem{item(10, 6, 0)}
	assert.Equal(t, entity.TransferStatusApproved, transfer.StatusAfterShipment(parcial))

	completo := []*entity.TransferItem{item(10, 10, 0)}
	assert.Equal(t, entity.TransferStatusInTransit, transfer.StatusAfterShipment(completo))

	mixto := []*entity.TransferItem{item(10, 10, 0), item(5, 4, 0)}
	assert.Equal(t, entity.TransferStatusApproved, transfer.StatusAfterShipment(mixto))
}

// COMPLETED exige recepción total Y despacho total: con despacho parcial no se
// completa aunque todo lo despachado esté recibido.
func TestStatusAfterReceipt(t *testing.T) {
	recibidoParcial := []*entity.TransferItem{item(10, 10, 6)}
	assert.Equal(t, entity.TransferStatusInTransit, transfer.StatusAfterReceipt(recibidoParcial))

	despachoParcialTodoRecibido := []*entity.TransferItem{item(10, 6, 6)}
	assert.Equal(t, entity.TransferStatusInTransit, transfer.StatusAfterReceipt(despachoParcialTodoRecibido))

	completo := []*entity.TransferItem{item(10, 10, 10)}
	assert.Equal(t, entity.TransferStatusCompleted, transfer.StatusAfterReceipt(completo))
}

func TestPriorityMutableYCancelable(t *testing.T) {
	assert.True(t, transfer.PriorityMutable(entity.TransferStatusRequested))
	assert.True(t, transfer.PriorityMutable(entity.TransferStatusApproved))
	assert.False(t, transfer.PriorityMutable(entity.TransferStatusInTransit))
	assert.False(t, transfer.PriorityMutable(entity.TransferStatusCompleted))

	assert.True(t, transfer.Cancelable(entity.TransferStatusRequested))
	assert.True(t, transfer.Cancelable(entity.TransferStatusApproved))
	assert.False(t, transfer.Cancelable(entity.TransferStatusInTransit))
}

// El comparador canónico: URGENT primero, luego RequestedAt DESC, luego ID DESC.
func TestLess_OrdenCompuesto(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	mk := func(id, priority string, at time.Time) *entity.StockTransfer {
		return &entity.StockTransfer{ID: id, Priority: priority, RequestedAt: at}
	}

	urgent := mk("a", entity.PriorityUrgent, now)
	high := mk("b", entity.PriorityHigh, now.Add(time.Hour))
	assert.True(t, transfer.Less(urgent, high), "URGENT precede a HIGH aunque sea más viejo")

	newer := mk("c", entity.PriorityNormal, now.Add(time.Hour))
	older := mk("d", entity.PriorityNormal, now)
	assert.True(t, transfer.Less(newer, older), "a igual prioridad, el más reciente primero")

	x := mk("z", entity.PriorityLow, now)
	y := mk("a", entity.PriorityLow, now)
	assert.True(t, transfer.Less(x, y), "a igual prioridad y fecha, ID descendente")
}

func TestPriorityRank(t *testing.T) {
	assert.Equal(t, 0, transfer.PriorityRank(entity.PriorityUrgent))
	assert.Equal(t, 1, transfer.PriorityRank(entity.PriorityHigh))
	assert.Equal(t, 2, transfer.PriorityRank(entity.PriorityNormal))
	assert.Equal(t, 3, transfer.PriorityRank(entity.PriorityLow))
	assert.Greater(t, transfer.PriorityRank("DESCONOCIDA"), 3, "prioridades desconocidas al final")
}
