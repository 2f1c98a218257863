package memory

import (
	"fmt"
	"sort"

	"github.com/tu-usuario/transfers-api/internal/domain"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/domain/repository"
	"github.com/tu-usuario/transfers-api/internal/domain/transfer"
)

type lotRepo struct{ s *Store }

func (r *lotRepo) Create(lot *entity.StockLot) error {
	lot.Seq = r.s.nextSeq
	r.s.nextSeq++
	r.s.lots = append(r.s.lots, cloneLot(lot))
	return nil
}

func (r *lotRepo) ListAvailableForUpdate(tenantID, branchID, productID string) ([]*entity.StockLot, error) {
	return r.list(tenantID, branchID, productID, true), nil
}

func (r *lotRepo) List(tenantID, branchID, productID string) ([]*entity.StockLot, error) {
	return r.list(tenantID, branchID, productID, false), nil
}

func (r *lotRepo) list(tenantID, branchID, productID string, onlyAvailable bool) []*entity.StockLot {
	var out []*entity.StockLot
	for _, l := range r.s.lots {
		if l.TenantID != tenantID || l.BranchID != branchID || l.ProductID != productID {
			continue
		}
		if onlyAvailable && l.RemainingQty <= 0 {
			continue
		}
		out = append(out, cloneLot(l))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReceivedAt.Equal(out[j].ReceivedAt) {
			return out[i].ReceivedAt.Before(out[j].ReceivedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

func (r *lotRepo) DecrementRemaining(lotID string, qty int64) error {
	for _, l := range r.s.lots {
		if l.ID != lotID {
			continue
		}
		if l.RemainingQty < qty {
			return fmt.Errorf("decrement lot %s: saldo insuficiente", lotID)
		}
		l.RemainingQty -= qty
		return nil
	}
	return fmt.Errorf("lot %s: %w", lotID, domain.ErrNotFound)
}

func (r *lotRepo) SumRemaining(tenantID, branchID, productID string) (int64, error) {
	var sum int64
	for _, l := range r.s.lots {
		if l.TenantID == tenantID && l.BranchID == branchID && l.ProductID == productID {
			sum += l.RemainingQty
		}
	}
	return sum, nil
}

type ledgerRepo struct{ s *Store }

func (r *ledgerRepo) Create(e *entity.LedgerEntry) error {
	r.s.entries = append(r.s.entries, cloneEntry(e))
	return nil
}

func (r *ledgerRepo) SumQtyDelta(tenantID, branchID, productID string) (int64, error) {
	var sum int64
	for _, e := range r.s.entries {
		if e.TenantID == tenantID && e.BranchID == branchID && e.ProductID == productID {
			sum += e.QtyDelta
		}
	}
	return sum, nil
}

func (r *ledgerRepo) ListByBranchProduct(tenantID, branchID, productID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	for _, e := range r.s.entries {
		if e.TenantID == tenantID && e.BranchID == branchID && e.ProductID == productID {
			out = append(out, cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, limit, offset), nil
}

type transferRepo struct{ s *Store }

func (r *transferRepo) Create(tr *entity.StockTransfer) error {
	for _, t := range r.s.transfers {
		if t.TenantID == tr.TenantID && t.TransferNumber == tr.TransferNumber {
			return fmt.Errorf("transfer %s: %w", tr.TransferNumber, domain.ErrDuplicate)
		}
	}
	r.s.transfers = append(r.s.transfers, cloneTransfer(tr))
	return nil
}

func (r *transferRepo) GetByID(tenantID, id string) (*entity.StockTransfer, error) {
	for _, t := range r.s.transfers {
		if t.TenantID == tenantID && t.ID == id {
			return cloneTransfer(t), nil
		}
	}
	return nil, nil
}

func (r *transferRepo) List(tenantID string, f repository.TransferFilter, limit, offset int) ([]*entity.StockTransfer, error) {
	var out []*entity.StockTransfer
	for _, t := range r.s.transfers {
		if t.TenantID != tenantID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.SourceBranchID != "" && t.SourceBranchID != f.SourceBranchID {
			continue
		}
		if f.DestinationBranchID != "" && t.DestinationBranchID != f.DestinationBranchID {
			continue
		}
		out = append(out, cloneTransfer(t))
	}
	sort.Slice(out, func(i, j int) bool { return transfer.Less(out[i], out[j]) })
	return page(out, limit, offset), nil
}

func (r *transferRepo) UpdateVersioned(tr *entity.StockTransfer, expectedVersion int64) error {
	for i, t := range r.s.transfers {
		if t.TenantID != tr.TenantID || t.ID != tr.ID {
			continue
		}
		if t.EntityVersion != expectedVersion {
			return fmt.Errorf("transfer %s version %d: %w", tr.ID, expectedVersion, domain.ErrStaleVersion)
		}
		tr.EntityVersion = expectedVersion + 1
		r.s.transfers[i] = cloneTransfer(tr)
		return nil
	}
	return fmt.Errorf("transfer %s: %w", tr.ID, domain.ErrNotFound)
}

type batchRepo struct{ s *Store }

func (r *batchRepo) Create(b *entity.ShipmentBatch) error {
	r.s.batches = append(r.s.batches, cloneBatch(b))
	return nil
}

func (r *batchRepo) ListByTransfer(tenantID, transferID string) ([]*entity.ShipmentBatch, error) {
	var out []*entity.ShipmentBatch
	for _, b := range r.s.batches {
		if b.TenantID == tenantID && b.TransferID == transferID {
			out = append(out, cloneBatch(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return out[i].BatchNumber < out[j].BatchNumber
	})
	return out, nil
}

func (r *batchRepo) NextBatchNumber(tenantID, transferID, kind string) (int, error) {
	max := 0
	for _, b := range r.s.batches {
		if b.TenantID == tenantID && b.TransferID == transferID && b.Kind == kind && b.BatchNumber > max {
			max = b.BatchNumber
		}
	}
	return max + 1, nil
}

func (r *batchRepo) CountByTransfer(tenantID, transferID string) (int, error) {
	n := 0
	for _, b := range r.s.batches {
		if b.TenantID == tenantID && b.TransferID == transferID {
			n++
		}
	}
	return n, nil
}

type ruleRepo struct{ s *Store }

func (r *ruleRepo) Create(rule *entity.ApprovalRule) error {
	r.s.rules = append(r.s.rules, cloneRule(rule))
	return nil
}

func (r *ruleRepo) Update(rule *entity.ApprovalRule) error {
	for i, x := range r.s.rules {
		if x.TenantID == rule.TenantID && x.ID == rule.ID {
			r.s.rules[i] = cloneRule(rule)
			return nil
		}
	}
	return fmt.Errorf("rule %s: %w", rule.ID, domain.ErrNotFound)
}

func (r *ruleRepo) GetByID(tenantID, id string) (*entity.ApprovalRule, error) {
	for _, x := range r.s.rules {
		if x.TenantID == tenantID && x.ID == id {
			return cloneRule(x), nil
		}
	}
	return nil, nil
}

func (r *ruleRepo) ListActive(tenantID string) ([]*entity.ApprovalRule, error) {
	var out []*entity.ApprovalRule
	for _, x := range r.s.rules {
		if x.TenantID == tenantID && x.IsActive {
			out = append(out, cloneRule(x))
		}
	}
	sortRules(out)
	return out, nil
}

func (r *ruleRepo) List(tenantID string, includeInactive bool, limit, offset int) ([]*entity.ApprovalRule, error) {
	var out []*entity.ApprovalRule
	for _, x := range r.s.rules {
		if x.TenantID != tenantID {
			continue
		}
		if !x.IsActive && !includeInactive {
			continue
		}
		out = append(out, cloneRule(x))
	}
	sortRules(out)
	return page(out, limit, offset), nil
}

func (r *ruleRepo) SetActive(tenantID, id string, active bool) error {
	for _, x := range r.s.rules {
		if x.TenantID == tenantID && x.ID == id {
			x.IsActive = active
			return nil
		}
	}
	return fmt.Errorf("rule %s: %w", id, domain.ErrNotFound)
}

func sortRules(rules []*entity.ApprovalRule) {
	sort.Slice(rules, func(i, j int) bool {
		if !rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].CreatedAt.After(rules[j].CreatedAt)
		}
		return rules[i].ID > rules[j].ID
	})
}

type progressRepo struct{ s *Store }

func (r *progressRepo) CreateAll(records []*entity.ApprovalProgressRecord) error {
	for _, rec := range records {
		r.s.progress = append(r.s.progress, cloneProgress(rec))
	}
	return nil
}

func (r *progressRepo) ListByTransfer(tenantID, transferID string) ([]*entity.ApprovalProgressRecord, error) {
	var out []*entity.ApprovalProgressRecord
	for _, rec := range r.s.progress {
		if rec.TenantID == tenantID && rec.TransferID == transferID {
			out = append(out, cloneProgress(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

func (r *progressRepo) Update(rec *entity.ApprovalProgressRecord) error {
	for i, x := range r.s.progress {
		if x.TenantID == rec.TenantID && x.ID == rec.ID {
			r.s.progress[i] = cloneProgress(rec)
			return nil
		}
	}
	return fmt.Errorf("approval progress %s: %w", rec.ID, domain.ErrNotFound)
}

type branchRepo struct{ s *Store }

func (r *branchRepo) Create(b *entity.Branch) error {
	bc := *b
	r.s.branches = append(r.s.branches, &bc)
	return nil
}

func (r *branchRepo) GetByID(tenantID, id string) (*entity.Branch, error) {
	for _, b := range r.s.branches {
		if b.TenantID == tenantID && b.ID == id {
			bc := *b
			return &bc, nil
		}
	}
	return nil, nil
}

func (r *branchRepo) ListByTenant(tenantID string, limit, offset int) ([]*entity.Branch, error) {
	var out []*entity.Branch
	for _, b := range r.s.branches {
		if b.TenantID == tenantID {
			bc := *b
			out = append(out, &bc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r *branchRepo) AddMember(m *entity.BranchMembership) error {
	for _, x := range r.s.memberships {
		if x.TenantID == m.TenantID && x.UserID == m.UserID && x.BranchID == m.BranchID {
			return fmt.Errorf("membership: %w", domain.ErrDuplicate)
		}
	}
	mc := *m
	r.s.memberships = append(r.s.memberships, &mc)
	return nil
}

func (r *branchRepo) IsMember(tenantID, userID, branchID string) (bool, error) {
	for _, m := range r.s.memberships {
		if m.TenantID == tenantID && m.UserID == userID && m.BranchID == branchID {
			return true, nil
		}
	}
	return false, nil
}

type productRepo struct{ s *Store }

func (r *productRepo) Create(p *entity.Product) error {
	for _, x := range r.s.products {
		if x.TenantID == p.TenantID && x.SKU == p.SKU {
			return fmt.Errorf("product %s: %w", p.SKU, domain.ErrDuplicate)
		}
	}
	pc := *p
	r.s.products = append(r.s.products, &pc)
	return nil
}

func (r *productRepo) GetByID(tenantID, id string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.TenantID == tenantID && p.ID == id {
			pc := *p
			return &pc, nil
		}
	}
	return nil, nil
}

func (r *productRepo) ListByTenant(tenantID string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.TenantID == tenantID {
			pc := *p
			out = append(out, &pc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return page(out, limit, offset), nil
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(u *entity.User) error {
	for _, x := range r.s.users {
		if x.Email == u.Email {
			return fmt.Errorf("user %s: %w", u.Email, domain.ErrDuplicate)
		}
	}
	uc := *u
	r.s.users = append(r.s.users, &uc)
	return nil
}

func (r *userRepo) GetByID(tenantID, id string) (*entity.User, error) {
	for _, u := range r.s.users {
		if u.TenantID == tenantID && u.ID == id {
			uc := *u
			return &uc, nil
		}
	}
	return nil, nil
}

func (r *userRepo) GetByEmail(email string) (*entity.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			uc := *u
			return &uc, nil
		}
	}
	return nil, nil
}

type auditRepo struct{ s *Store }

func (r *auditRepo) Create(ev *entity.AuditEvent) error {
	ec := *ev
	r.s.audits = append(r.s.audits, &ec)
	return nil
}

func (r *auditRepo) ListByEntity(tenantID, entityType, entityID string, limit, offset int) ([]*entity.AuditEvent, error) {
	var out []*entity.AuditEvent
	for _, ev := range r.s.audits {
		if ev.TenantID == tenantID && ev.EntityType == entityType && ev.EntityID == entityID {
			ec := *ev
			out = append(out, &ec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, limit, offset), nil
}

type idemRepo struct{ s *Store }

func idemKey(tenantID, key string) string { return tenantID + "\x00" + key }

func (r *idemRepo) Get(tenantID, key string) (string, error) {
	return r.s.idemKeys[idemKey(tenantID, key)], nil
}

func (r *idemRepo) Save(tenantID, key, reference string) error {
	k := idemKey(tenantID, key)
	if _, ok := r.s.idemKeys[k]; ok {
		return fmt.Errorf("idempotency key %s: %w", key, domain.ErrDuplicate)
	}
	r.s.idemKeys[k] = reference
	return nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
