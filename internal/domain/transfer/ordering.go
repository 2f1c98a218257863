package transfer

import (
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
)

// priorityRank rango fijo de prioridades: menor = más urgente.
var priorityRank = map[string]int{
	entity.PriorityUrgent: 0,
	entity.PriorityHigh:   1,
	entity.PriorityNormal: 2,
	entity.PriorityLow:    3,
}

// PriorityRank devuelve el rango numérico de una prioridad (desconocidas al final).
func PriorityRank(priority string) int {
	if r, ok := priorityRank[priority]; ok {
		return r
	}
	return len(priorityRank)
}

// Less es el comparador canónico de listados y colas: prioridad más urgente
// primero, luego RequestedAt descendente, luego ID descendente. Cualquier
// motor de almacenamiento debe reproducir exactamente este orden compuesto.
func Less(a, b *entity.StockTransfer) bool {
	ra, rb := PriorityRank(a.Priority), PriorityRank(b.Priority)
	if ra != rb {
		return ra < rb
	}
	if !a.RequestedAt.Equal(b.RequestedAt) {
		return a.RequestedAt.After(b.RequestedAt)
	}
	return a.ID > b.ID
}
