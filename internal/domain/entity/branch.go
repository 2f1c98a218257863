package entity

import "time"

// Branch es una sucursal del tenant; los lotes y el libro de inventario
// pertenecen al par (sucursal, producto).
type Branch struct {
	ID        string
	TenantID  string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BranchMembership vincula un usuario con una sucursal. Respaldado por la
// validación de pertenencia del solicitante/actor en los traslados.
type BranchMembership struct {
	UserID    string
	BranchID  string
	TenantID  string
	CreatedAt time.Time
}
