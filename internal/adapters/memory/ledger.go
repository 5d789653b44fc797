package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/n0madsky/profile-api-assignment/internal/domain"
	"github.com/n0madsky/profile-api-assignment/internal/ports"
)

const serialCodeLength = 15

// Ledger is an append-only store of product registrations. A registration's
// id is its position in the arena plus one.
type Ledger struct {
	mu            sync.RWMutex
	graph         ports.ProductGraph
	registrations []domain.ProductRegistration
	roots         map[uint64][]uint64
	children      map[uint64][]uint64
	serialFn      func() string
	logger        *slog.Logger
}

type LedgerOption func(*Ledger)

func WithSerialGenerator(fn func() string) LedgerOption {
	return func(l *Ledger) {
		if fn != nil {
			l.serialFn = fn
		}
	}
}

func WithLedgerLogger(logger *slog.Logger) LedgerOption {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func NewLedger(graph ports.ProductGraph, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		graph:    graph,
		roots:    map[uint64][]uint64{},
		children: map[uint64][]uint64{},
		serialFn: NewSerialCode,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewSerialCode returns an opaque upper-case token derived from a random uuid.
func NewSerialCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:serialCodeLength]
}

func (l *Ledger) Get(_ context.Context, id uint64) (domain.ProductRegistrationRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.recordLocked(id)
}

func (l *Ledger) recordLocked(id uint64) (domain.ProductRegistrationRecord, bool) {
	if id == 0 || id > uint64(len(l.registrations)) {
		return domain.ProductRegistrationRecord{}, false
	}
	childIDs := l.children[id]
	kids := make([]domain.ProductRegistration, 0, len(childIDs))
	for _, childID := range childIDs {
		kids = append(kids, l.registrations[childID-1])
	}
	return domain.ProductRegistrationRecord{Registration: l.registrations[id-1], Children: kids}, true
}

func (l *Ledger) ListForProfile(_ context.Context, profileID uint64, start uint64, count int) []domain.ProductRegistrationRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := l.roots[profileID]
	total := uint64(len(ids))
	if count <= 0 || start >= total {
		return []domain.ProductRegistrationRecord{}
	}
	end := start + uint64(count)
	if end > total || end < start {
		end = total
	}
	out := make([]domain.ProductRegistrationRecord, 0, end-start)
	for _, id := range ids[start:end] {
		rec, _ := l.recordLocked(id)
		out = append(out, rec)
	}
	return out
}

func (l *Ledger) ActiveProductsFor(_ context.Context, profileID uint64, now time.Time) domain.SKUSet {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.activeLocked(profileID, now)
}

func (l *Ledger) activeLocked(profileID uint64, now time.Time) domain.SKUSet {
	out := domain.NewSKUSet()
	for _, rootID := range l.roots[profileID] {
		root := l.registrations[rootID-1]
		if domain.IsActive(root, now) {
			out.Add(root.Product)
		}
		for _, childID := range l.children[rootID] {
			child := l.registrations[childID-1]
			if domain.IsActive(child, now) {
				out.Add(child.Product)
			}
		}
	}
	return out
}

func (l *Ledger) Transaction(ctx context.Context, fn func(tx ports.LedgerTx) error) error {
	l.mu.Lock()
	mark := len(l.registrations)
	committed := false
	defer func() {
		if !committed {
			l.rollbackLocked(mark)
		}
		l.mu.Unlock()
	}()

	if err := fn(&ledgerTx{ctx: ctx, ledger: l}); err != nil {
		return err
	}
	committed = true
	return nil
}

func (l *Ledger) rollbackLocked(mark int) {
	for i := len(l.registrations) - 1; i >= mark; i-- {
		reg := l.registrations[i]
		if reg.IsRoot() {
			l.roots[reg.ProfileID] = trimLast(l.roots[reg.ProfileID])
			if len(l.roots[reg.ProfileID]) == 0 {
				delete(l.roots, reg.ProfileID)
			}
			continue
		}
		l.children[*reg.ParentID] = trimLast(l.children[*reg.ParentID])
		if len(l.children[*reg.ParentID]) == 0 {
			delete(l.children, *reg.ParentID)
		}
	}
	if mark < len(l.registrations) {
		l.logger.Warn("ledger transaction rolled back",
			"module", "memory.ledger",
			"layer", "adapter",
			"operation", "transaction",
			"outcome", "rollback",
			"discarded", len(l.registrations)-mark,
		)
		l.registrations = l.registrations[:mark]
	}
}

func (l *Ledger) isRootLocked(id uint64) bool {
	return id != 0 && id <= uint64(len(l.registrations)) && l.registrations[id-1].IsRoot()
}

func trimLast(ids []uint64) []uint64 {
	if len(ids) == 0 {
		return ids
	}
	return ids[:len(ids)-1]
}

func (l *Ledger) appendLocked(ctx context.Context, profileID uint64, parentID *uint64, purchaseDate time.Time, sku string) (domain.ProductRegistration, error) {
	id := uint64(len(l.registrations)) + 1
	reg := domain.ProductRegistration{
		ID:           id,
		ProfileID:    profileID,
		PurchaseDate: purchaseDate,
		Product:      sku,
		SerialCode:   l.serialFn(),
	}
	if parentID != nil {
		if !l.isRootLocked(*parentID) {
			return domain.ProductRegistration{}, fmt.Errorf("%w: parent registration %d", domain.ErrNotFound, *parentID)
		}
		parent := *parentID
		reg.ParentID = &parent
	}
	if d, ok := l.graph.ActiveFor(ctx, sku); ok {
		expiry := purchaseDate.Add(d)
		reg.ExpiryAt = &expiry
	}
	l.insertLocked(reg)
	return reg, nil
}

func (l *Ledger) insertLocked(reg domain.ProductRegistration) {
	l.registrations = append(l.registrations, reg)
	if reg.IsRoot() {
		l.roots[reg.ProfileID] = append(l.roots[reg.ProfileID], reg.ID)
		return
	}
	l.children[*reg.ParentID] = append(l.children[*reg.ParentID], reg.ID)
}

// Restore loads historical registrations verbatim. Ids must continue the
// arena densely and parents must already be present.
func (l *Ledger) Restore(regs ...domain.ProductRegistration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	mark := len(l.registrations)
	for _, reg := range regs {
		want := uint64(len(l.registrations)) + 1
		if reg.ID != want {
			l.rollbackLocked(mark)
			return fmt.Errorf("%w: registration id %d, expected %d", domain.ErrInvalidInput, reg.ID, want)
		}
		if reg.ParentID != nil && !l.isRootLocked(*reg.ParentID) {
			l.rollbackLocked(mark)
			return fmt.Errorf("%w: registration %d references parent %d", domain.ErrInvalidInput, reg.ID, *reg.ParentID)
		}
		l.insertLocked(reg)
	}
	return nil
}

type ledgerTx struct {
	ctx    context.Context
	ledger *Ledger
}

func (tx *ledgerTx) ActiveProductsFor(profileID uint64, now time.Time) domain.SKUSet {
	return tx.ledger.activeLocked(profileID, now)
}

func (tx *ledgerTx) Append(profileID uint64, parentID *uint64, purchaseDate time.Time, sku string) (domain.ProductRegistration, error) {
	return tx.ledger.appendLocked(tx.ctx, profileID, parentID, purchaseDate, sku)
}
