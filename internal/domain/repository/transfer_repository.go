package repository

import "github.com/tu-usuario/transfers-api/internal/domain/entity"

// TransferFilter filtros de listado de traslados. Campos vacíos no filtran.
type TransferFilter struct {
	Status              string
	Priority            string
	SourceBranchID      string
	DestinationBranchID string
}

// TransferRepository puerto de persistencia del agregado StockTransfer
// (el traslado es dueño de sus líneas: se hidratan siempre completas).
type TransferRepository interface {
	Create(transfer *entity.StockTransfer) error
	// GetByID devuelve el traslado con sus líneas, o nil si no existe dentro
	// del tenant (indistinguible de inexistente, por diseño).
	GetByID(tenantID, id string) (*entity.StockTransfer, error)
	// List devuelve traslados del tenant ordenados por prioridad (URGENT primero),
	// luego requested_at DESC, luego id DESC.
	List(tenantID string, filter TransferFilter, limit, offset int) ([]*entity.StockTransfer, error)
	// UpdateVersioned persiste cabecera y líneas solo si expectedVersion coincide
	// con la versión almacenada; en ese caso incrementa EntityVersion. Si no
	// coincide devuelve domain.ErrStaleVersion.
	UpdateVersioned(transfer *entity.StockTransfer, expectedVersion int64) error
}
