package domain

import "errors"

// Errores de dominio (sin dependencias externas). La capa HTTP los traduce
// al envelope estándar con su código y status.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrValidation        = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrPermissionDenied  = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrStaleVersion      = errors.New("versión de entidad desactualizada")
	ErrOutOfOrder        = errors.New("nivel de aprobación fuera de orden")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrBusy              = errors.New("recurso ocupado, reintente")
)
