package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/baharkarakas/ledger-core/internal/events"
	"github.com/baharkarakas/ledger-core/internal/models"
	repo "github.com/baharkarakas/ledger-core/internal/repository"
	"github.com/baharkarakas/ledger-core/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var errDisk = errors.New("disk full")

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

// faultyAtomic injects storage failures into write groups.
type faultyAtomic struct {
	inner repo.Atomic
	// failTxnAt fails the n-th SaveTransaction call of a group (1-based).
	failTxnAt     int
	failAccountAt int
}

func (f *faultyAtomic) WithTx(ctx context.Context, fn func(repo.Writer) error) error {
	return f.inner.WithTx(ctx, func(w repo.Writer) error {
		return fn(&faultyWriter{Writer: w, f: f})
	})
}

type faultyWriter struct {
	repo.Writer
	f            *faultyAtomic
	txnCalls     int
	accountCalls int
}

func (w *faultyWriter) SaveAccount(ctx context.Context, a models.Account) (models.Account, error) {
	w.accountCalls++
	if w.accountCalls == w.f.failAccountAt {
		return models.Account{}, errDisk
	}
	return w.Writer.SaveAccount(ctx, a)
}

func (w *faultyWriter) SaveTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	w.txnCalls++
	if w.txnCalls == w.f.failTxnAt {
		return models.Transaction{}, errDisk
	}
	return w.Writer.SaveTransaction(ctx, t)
}

type fixture struct {
	store    *memory.Store
	repos    repo.Repositories
	ledger   *LedgerService
	query    *QueryService
	accounts *AccountService
	pub      *recordingPublisher
	clock    *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	repos := memory.NewRepositories(store)
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	pub := &recordingPublisher{}
	return &fixture{
		store:    store,
		repos:    repos,
		ledger:   NewLedgerService(repos, pub, nil, quietLogger(), WithClock(clock.Now)),
		query:    NewQueryService(repos.Transactions),
		accounts: NewAccountService(repos.Accounts, quietLogger()),
		pub:      pub,
		clock:    clock,
	}
}

// withAtomic rebuilds the ledger on top of a different write group.
func (f *fixture) withAtomic(a repo.Atomic) *LedgerService {
	r := f.repos
	r.Atomic = a
	return NewLedgerService(r, f.pub, nil, quietLogger(), WithClock(f.clock.Now))
}

// open provisions an account and funds it with balance.
func (f *fixture) open(t *testing.T, balance string) int64 {
	t.Helper()
	ctx := context.Background()
	a, err := f.accounts.Open(ctx)
	require.NoError(t, err)
	if b := dec(balance); b.IsPositive() {
		_, err := f.ledger.Deposit(ctx, a.UserID, b)
		require.NoError(t, err)
	}
	return a.UserID
}

func (f *fixture) balance(t *testing.T, userID int64) decimal.Decimal {
	t.Helper()
	b, err := f.ledger.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return b
}

func (f *fixture) history(t *testing.T, userID int64) []models.Transaction {
	t.Helper()
	txns, err := f.query.ListTransactions(context.Background(), userID, models.HistoryFilter{})
	require.NoError(t, err)
	return txns
}
