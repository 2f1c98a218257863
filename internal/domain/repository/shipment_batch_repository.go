package repository

import "github.com/tu-usuario/transfers-api/internal/domain/entity"

// ShipmentBatchRepository puerto de persistencia para batches de despacho y recepción.
type ShipmentBatchRepository interface {
	Create(batch *entity.ShipmentBatch) error
	ListByTransfer(tenantID, transferID string) ([]*entity.ShipmentBatch, error)
	// NextBatchNumber siguiente consecutivo (desde 1) por traslado y tipo.
	NextBatchNumber(tenantID, transferID, kind string) (int, error)
	// CountByTransfer número de batches existentes (de cualquier tipo); usado
	// para vetar cancelaciones una vez iniciado el despacho.
	CountByTransfer(tenantID, transferID string) (int, error)
}
