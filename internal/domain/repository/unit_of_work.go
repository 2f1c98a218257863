package repository

import "context"

// TxRepos repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Transfers   TransferRepository
	Batches     ShipmentBatchRepository
	Lots        StockLotRepository
	Ledger      LedgerEntryRepository
	Rules       ApprovalRuleRepository
	Progress    ApprovalProgressRepository
	Audit       AuditRepository
	Idempotency IdempotencyRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Commit al retornar nil, Rollback en error.
// Garantiza atomicidad entre el estado del traslado y el libro de inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(r TxRepos) error) error
}
