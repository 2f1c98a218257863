package repository

// IdempotencyRepository deduplicación de operaciones por token externo.
// Evita doble despacho/doble recepción en reintentos de red.
type IdempotencyRepository interface {
	// Get devuelve la referencia registrada para la llave ("" si no existe).
	Get(tenantID, key string) (string, error)
	// Save registra la llave con la referencia del resultado (ej. ID del batch).
	// Falla con domain.ErrDuplicate si la llave ya existe.
	Save(tenantID, key, reference string) error
}
