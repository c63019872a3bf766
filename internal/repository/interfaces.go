package repository

import (
	"context"
	"errors"

	"github.com/baharkarakas/ledger-core/internal/models"
)

// ErrNotFound is returned by stores when a row does not exist.
var ErrNotFound = errors.New("record not found")

type Accounts interface {
	Find(ctx context.Context, userID int64) (models.Account, error)
	// Create opens a new account with a zero balance.
	Create(ctx context.Context) (models.Account, error)
}

type Transactions interface {
	// ListByUser returns the user's records matching f, oldest first.
	ListByUser(ctx context.Context, userID int64, f models.HistoryFilter) ([]models.Transaction, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}

// Writer is the view of the store available inside an atomic write group.
type Writer interface {
	// LockAccounts locks the given accounts for the rest of the group, in
	// ascending id order. Ids without an account are absent from the map.
	LockAccounts(ctx context.Context, ids ...int64) (map[int64]models.Account, error)
	SaveAccount(ctx context.Context, a models.Account) (models.Account, error)
	// SaveTransaction appends a record and returns it with its id set.
	SaveTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)
}

// Atomic runs fn in a single write group. Everything fn wrote is committed
// when it returns nil and discarded otherwise.
type Atomic interface {
	WithTx(ctx context.Context, fn func(Writer) error) error
}

// Repositories bundles one backend's stores.
type Repositories struct {
	Accounts     Accounts
	Transactions Transactions
	AuditLogs    AuditLogs
	Atomic       Atomic
}
