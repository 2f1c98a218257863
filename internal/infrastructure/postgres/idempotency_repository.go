package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/transfers-api/internal/domain"
	"github.com/tu-usuario/transfers-api/internal/domain/repository"
)

var _ repository.IdempotencyRepository = (*IdempotencyRepo)(nil)

// IdempotencyRepo deduplicación de operaciones por token externo, llave
// compuesta (tenant, key).
type IdempotencyRepo struct {
	q Querier
}

// NewIdempotencyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIdempotencyRepository(q Querier) *IdempotencyRepo {
	return &IdempotencyRepo{q: q}
}

// Get devuelve la referencia registrada, o "" si la llave no existe.
func (r *IdempotencyRepo) Get(tenantID, key string) (string, error) {
	query := `
		SELECT reference
		FROM idempotency_keys
		WHERE tenant_id = $1 AND key = $2`
	var ref string
	err := r.q.QueryRow(context.Background(), query, tenantID, key).Scan(&ref)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get idempotency key: %w", err)
	}
	return ref, nil
}

// Save registra la llave; la restricción única hace cumplir un solo uso.
func (r *IdempotencyRepo) Save(tenantID, key, reference string) error {
	query := `
		INSERT INTO idempotency_keys (tenant_id, key, reference, created_at)
		VALUES ($1, $2, $3, NOW())`
	if _, err := r.q.Exec(context.Background(), query, tenantID, key, reference); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("idempotency key %s: %w", key, domain.ErrDuplicate)
		}
		return fmt.Errorf("save idempotency key: %w", err)
	}
	return nil
}
