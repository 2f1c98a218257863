package repository

import "github.com/tu-usuario/transfers-api/internal/domain/entity"

// ProductRepository puerto de persistencia para productos.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(tenantID, id string) (*entity.Product, error)
	ListByTenant(tenantID string, limit, offset int) ([]*entity.Product, error)
}
