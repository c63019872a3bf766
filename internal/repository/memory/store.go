// Package memory is an in-process ledger store. A single writer lock covers
// every write group, so groups are fully serialized while reads proceed
// against the last committed state.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/baharkarakas/ledger-core/internal/models"
	"github.com/baharkarakas/ledger-core/internal/repository"
	"github.com/shopspring/decimal"
)

type Store struct {
	mu       sync.RWMutex
	accounts map[int64]models.Account
	txns     []models.Transaction
	audit    []models.AuditLog

	lastAccountID int64
	lastTxnID     int64
	lastAuditID   int64
}

func New() *Store {
	return &Store{accounts: make(map[int64]models.Account)}
}

// NewRepositories exposes s through the repository interfaces.
func NewRepositories(s *Store) repository.Repositories {
	return repository.Repositories{
		Accounts:     accountsRepo{s},
		Transactions: transactionsRepo{s},
		AuditLogs:    auditLogsRepo{s},
		Atomic:       s,
	}
}

type accountsRepo struct{ s *Store }

func (r accountsRepo) Find(_ context.Context, userID int64) (models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[userID]
	if !ok {
		return models.Account{}, repository.ErrNotFound
	}
	return a, nil
}

func (r accountsRepo) Create(_ context.Context) (models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.lastAccountID++
	now := time.Now().UTC()
	a := models.Account{UserID: r.s.lastAccountID, Balance: decimal.Zero, CreatedAt: now, UpdatedAt: now}
	r.s.accounts[a.UserID] = a
	return a, nil
}

type transactionsRepo struct{ s *Store }

func (r transactionsRepo) ListByUser(_ context.Context, userID int64, f models.HistoryFilter) ([]models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Transaction, 0)
	for _, t := range r.s.txns {
		if t.UserID == userID && f.Match(t.Timestamp) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type auditLogsRepo struct{ s *Store }

func (r auditLogsRepo) Create(_ context.Context, l models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.lastAuditID++
	l.ID = r.s.lastAuditID
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	r.s.audit = append(r.s.audit, l)
	return nil
}

// AuditLogs returns a copy of the stored audit entries.
func (s *Store) AuditLogs() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AuditLog(nil), s.audit...)
}

// WithTx stages fn's writes and applies them only if fn succeeds and ctx is
// still live.
func (s *Store) WithTx(ctx context.Context, fn func(repository.Writer) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	w := &writer{s: s, accounts: make(map[int64]models.Account), nextTxnID: s.lastTxnID}
	if err := fn(w); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for id, a := range w.accounts {
		s.accounts[id] = a
	}
	s.txns = append(s.txns, w.txns...)
	s.lastTxnID = w.nextTxnID
	return nil
}

// writer runs with s.mu held.
type writer struct {
	s         *Store
	accounts  map[int64]models.Account
	txns      []models.Transaction
	nextTxnID int64
}

func (w *writer) LockAccounts(_ context.Context, ids ...int64) (map[int64]models.Account, error) {
	out := make(map[int64]models.Account, len(ids))
	for _, id := range repository.LockOrder(ids...) {
		if a, ok := w.accounts[id]; ok {
			out[id] = a
			continue
		}
		if a, ok := w.s.accounts[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (w *writer) SaveAccount(_ context.Context, a models.Account) (models.Account, error) {
	prev, ok := w.accounts[a.UserID]
	if !ok {
		prev, ok = w.s.accounts[a.UserID]
	}
	if !ok {
		return models.Account{}, repository.ErrNotFound
	}
	a.CreatedAt = prev.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	w.accounts[a.UserID] = a
	return a, nil
}

func (w *writer) SaveTransaction(_ context.Context, t models.Transaction) (models.Transaction, error) {
	w.nextTxnID++
	t.ID = w.nextTxnID
	w.txns = append(w.txns, t)
	return t, nil
}
