package entity

import "time"

// Roles de usuario dentro del tenant.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleBodeguero  = "bodeguero"
)

// User usuario de la aplicación, siempre ligado a un tenant.
type User struct {
	ID           string
	TenantID     string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
