package entity

import "time"

// Product es un producto del catálogo del tenant. El costo vive en los lotes
// FIFO, no aquí.
type Product struct {
	ID        string
	TenantID  string
	SKU       string
	Name      string
	Unit      string // unidad de medida: "und", "kg", etc.
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
