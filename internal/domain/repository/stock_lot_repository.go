package repository

import "github.com/tu-usuario/transfers-api/internal/domain/entity"

// StockLotRepository puerto de persistencia para lotes de costo FIFO.
// Usado dentro de transacciones para garantizar consistencia.
type StockLotRepository interface {
	// Create inserta un lote nuevo (nunca fusiona con lotes existentes) y
	// asigna Seq de inserción.
	Create(lot *entity.StockLot) error
	// ListAvailableForUpdate devuelve los lotes con existencias del par
	// (sucursal, producto) en orden FIFO, bloqueando las filas (SELECT FOR UPDATE)
	// para serializar consumos concurrentes.
	ListAvailableForUpdate(tenantID, branchID, productID string) ([]*entity.StockLot, error)
	// DecrementRemaining aplica el decremento planificado a un lote.
	DecrementRemaining(lotID string, qty int64) error
	// List lotes del par (sucursal, producto), FIFO, incluyendo agotados.
	List(tenantID, branchID, productID string) ([]*entity.StockLot, error)
	// SumRemaining existencias actuales del par (sucursal, producto).
	SumRemaining(tenantID, branchID, productID string) (int64, error)
}
