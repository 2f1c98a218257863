package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/domain/repository"
)

// Store es un almacén en memoria para pruebas de la capa de aplicación.
// Implementa los mismos puertos que la capa PostgreSQL; el TxRunner toma un
// snapshot antes de cada callback y lo restaura en error, reproduciendo el
// rollback transaccional.
type Store struct {
	mu sync.Mutex

	lots        []*entity.StockLot
	entries     []*entity.LedgerEntry
	transfers   []*entity.StockTransfer
	batches     []*entity.ShipmentBatch
	rules       []*entity.ApprovalRule
	progress    []*entity.ApprovalProgressRecord
	branches    []*entity.Branch
	memberships []*entity.BranchMembership
	products    []*entity.Product
	users       []*entity.User
	audits      []*entity.AuditEvent
	idemKeys    map[string]string // tenant + "\x00" + key -> reference

	nextSeq int64
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{idemKeys: make(map[string]string), nextSeq: 1}
}

// Lots repositorio de lotes sobre el almacén.
func (s *Store) Lots() repository.StockLotRepository { return &lotRepo{s: s} }

// Ledger repositorio del libro sobre el almacén.
func (s *Store) Ledger() repository.LedgerEntryRepository { return &ledgerRepo{s: s} }

// Transfers repositorio de traslados sobre el almacén.
func (s *Store) Transfers() repository.TransferRepository { return &transferRepo{s: s} }

// Batches repositorio de batches sobre el almacén.
func (s *Store) Batches() repository.ShipmentBatchRepository { return &batchRepo{s: s} }

// Rules repositorio de reglas sobre el almacén.
func (s *Store) Rules() repository.ApprovalRuleRepository { return &ruleRepo{s: s} }

// Progress repositorio de progreso de aprobación sobre el almacén.
func (s *Store) Progress() repository.ApprovalProgressRepository { return &progressRepo{s: s} }

// Branches repositorio de sucursales sobre el almacén.
func (s *Store) Branches() repository.BranchRepository { return &branchRepo{s: s} }

// Products repositorio de productos sobre el almacén.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s: s} }

// Users repositorio de usuarios sobre el almacén.
func (s *Store) Users() repository.UserRepository { return &userRepo{s: s} }

// Audit repositorio de auditoría sobre el almacén.
func (s *Store) Audit() repository.AuditRepository { return &auditRepo{s: s} }

// Idempotency repositorio de llaves de idempotencia sobre el almacén.
func (s *Store) Idempotency() repository.IdempotencyRepository { return &idemRepo{s: s} }

// TxRunner devuelve un runner transaccional sobre el almacén.
func (s *Store) TxRunner() repository.TxRunner { return &txRunner{s: s} }

type txRunner struct {
	s *Store
}

// Run ejecuta fn sobre el estado del almacén; en error restaura el snapshot
// previo, igual que un rollback.
func (r *txRunner) Run(_ context.Context, fn func(repos repository.TxRepos) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	snap := r.s.snapshot()
	repos := repository.TxRepos{
		Transfers:   &transferRepo{s: r.s},
		Batches:     &batchRepo{s: r.s},
		Lots:        &lotRepo{s: r.s},
		Ledger:      &ledgerRepo{s: r.s},
		Rules:       &ruleRepo{s: r.s},
		Progress:    &progressRepo{s: r.s},
		Audit:       &auditRepo{s: r.s},
		Idempotency: &idemRepo{s: r.s},
	}
	if err := fn(repos); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

type storeSnapshot struct {
	lots      []*entity.StockLot
	entries   []*entity.LedgerEntry
	transfers []*entity.StockTransfer
	batches   []*entity.ShipmentBatch
	rules     []*entity.ApprovalRule
	progress  []*entity.ApprovalProgressRecord
	audits    []*entity.AuditEvent
	idemKeys  map[string]string
	nextSeq   int64
}

func (s *Store) snapshot() storeSnapshot {
	snap := storeSnapshot{
		idemKeys: make(map[string]string, len(s.idemKeys)),
		nextSeq:  s.nextSeq,
	}
	for _, l := range s.lots {
		snap.lots = append(snap.lots, cloneLot(l))
	}
	for _, e := range s.entries {
		snap.entries = append(snap.entries, cloneEntry(e))
	}
	for _, t := range s.transfers {
		snap.transfers = append(snap.transfers, cloneTransfer(t))
	}
	for _, b := range s.batches {
		snap.batches = append(snap.batches, cloneBatch(b))
	}
	for _, r := range s.rules {
		snap.rules = append(snap.rules, cloneRule(r))
	}
	for _, p := range s.progress {
		snap.progress = append(snap.progress, cloneProgress(p))
	}
	for _, a := range s.audits {
		av := *a
		snap.audits = append(snap.audits, &av)
	}
	for k, v := range s.idemKeys {
		snap.idemKeys[k] = v
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.lots = snap.lots
	s.entries = snap.entries
	s.transfers = snap.transfers
	s.batches = snap.batches
	s.rules = snap.rules
	s.progress = snap.progress
	s.audits = snap.audits
	s.idemKeys = snap.idemKeys
	s.nextSeq = snap.nextSeq
}

func cloneLot(l *entity.StockLot) *entity.StockLot {
	c := *l
	return &c
}

func cloneEntry(e *entity.LedgerEntry) *entity.LedgerEntry {
	c := *e
	return &c
}

func cloneTransfer(t *entity.StockTransfer) *entity.StockTransfer {
	c := *t
	c.ReviewedAt = cloneTime(t.ReviewedAt)
	c.ShippedAt = cloneTime(t.ShippedAt)
	c.CompletedAt = cloneTime(t.CompletedAt)
	c.Items = nil
	for _, it := range t.Items {
		ci := *it
		if it.QtyApproved != nil {
			v := *it.QtyApproved
			ci.QtyApproved = &v
		}
		c.Items = append(c.Items, &ci)
	}
	return &c
}

func cloneBatch(b *entity.ShipmentBatch) *entity.ShipmentBatch {
	c := *b
	c.Lines = nil
	for _, l := range b.Lines {
		cl := *l
		c.Lines = append(c.Lines, &cl)
	}
	return &c
}

func cloneRule(r *entity.ApprovalRule) *entity.ApprovalRule {
	c := *r
	c.Conditions = nil
	for _, cond := range r.Conditions {
		cc := *cond
		c.Conditions = append(c.Conditions, &cc)
	}
	c.Levels = nil
	for _, l := range r.Levels {
		cl := *l
		c.Levels = append(c.Levels, &cl)
	}
	return &c
}

func cloneProgress(p *entity.ApprovalProgressRecord) *entity.ApprovalProgressRecord {
	c := *p
	c.ApprovedAt = cloneTime(p.ApprovedAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
