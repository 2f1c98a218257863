package repository

import "github.com/tu-usuario/transfers-api/internal/domain/entity"

// UserRepository puerto de persistencia para usuarios.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(tenantID, id string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
}
