package transfer

import (
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
)

// transitions transiciones legales de la máquina de estados.
// ship/receive parciales no cambian de estado: solo avanzan cantidades.
var transitions = map[string][]string{
	entity.TransferStatusRequested: {entity.TransferStatusApproved, entity.TransferStatusRejected, entity.TransferStatusCancelled},
	entity.TransferStatusApproved:  {entity.TransferStatusInTransit, entity.TransferStatusCancelled},
	entity.TransferStatusInTransit: {entity.TransferStatusCompleted},
}

// CanTransition indica si el paso from -> to es legal.
func CanTransition(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// StatusAfterShipment recalcula el estado tras un batch de despacho:
// IN_TRANSIT cuando toda línea despachó lo aprobado, APPROVED si queda pendiente.
func StatusAfterShipment(items []*entity.TransferItem) string {
	for _, it := range items {
		if !it.FullyShipped() {
			return entity.TransferStatusApproved
		}
	}
	return entity.TransferStatusInTransit
}

// StatusAfterReceipt recalcula el estado tras un batch de recepción:
// COMPLETED solo cuando toda línea recibió lo despachado Y el despacho está
// completo; un traslado no puede completarse con despacho aún parcial.
func StatusAfterReceipt(items []*entity.TransferItem) string {
	for _, it := range items {
		if !it.FullyShipped() || !it.FullyReceived() {
			return entity.TransferStatusInTransit
		}
	}
	return entity.TransferStatusCompleted
}

// PriorityMutable indica si la prioridad aún afecta trabajo pendiente; una vez
// iniciado el despacho deja de tener efecto y el cambio se rechaza.
func PriorityMutable(status string) bool {
	return status == entity.TransferStatusRequested || status == entity.TransferStatusApproved
}

// Cancelable indica si el traslado admite cancelación: solo antes de que exista
// cualquier despacho.
func Cancelable(status string) bool {
	return status == entity.TransferStatusRequested || status == entity.TransferStatusApproved
}
