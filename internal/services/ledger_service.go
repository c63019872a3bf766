package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/baharkarakas/ledger-core/internal/events"
	"github.com/baharkarakas/ledger-core/internal/models"
	repo "github.com/baharkarakas/ledger-core/internal/repository"
	"github.com/baharkarakas/ledger-core/internal/worker"
	"github.com/shopspring/decimal"
)

const postCommitTimeout = 5 * time.Second

// LedgerService is the only writer of balances and transaction records.
type LedgerService struct {
	atomic   repo.Atomic
	accounts repo.Accounts
	audit    repo.AuditLogs
	events   events.Publisher
	wp       *worker.Pool
	log      *slog.Logger
	now      func() time.Time
}

type Option func(*LedgerService)

// WithClock replaces the clock used to stamp transaction records.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

// NewLedgerService wires the engine. Audit entries and events are handed to
// wp after each operation; with a nil pool they run inline.
func NewLedgerService(r repo.Repositories, pub events.Publisher, wp *worker.Pool, log *slog.Logger, opts ...Option) *LedgerService {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	s := &LedgerService{
		atomic:   r.Atomic,
		accounts: r.Accounts,
		audit:    r.AuditLogs,
		events:   pub,
		wp:       wp,
		log:      log,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *LedgerService) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	a, err := s.accounts.Find(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return decimal.Decimal{}, &models.NotFoundError{Role: models.RoleAccount, UserID: userID}
	}
	if err != nil {
		return decimal.Decimal{}, &models.PersistenceError{Op: "get_balance", Err: err}
	}
	return a.Balance, nil
}

func (s *LedgerService) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (models.Transaction, error) {
	op := newOperation(events.KindDeposit, userID, nil, amount)
	recs, err := s.apply(ctx, op, func() error { return models.ValidateAmount(amount) },
		func(w repo.Writer) ([]models.Transaction, error) {
			locked, err := w.LockAccounts(ctx, userID)
			if err != nil {
				return nil, err
			}
			acc, ok := locked[userID]
			if !ok {
				return nil, &models.NotFoundError{Role: models.RoleAccount, UserID: userID}
			}
			acc.Credit(amount)
			if _, err := w.SaveAccount(ctx, acc); err != nil {
				return nil, err
			}
			rec, err := w.SaveTransaction(ctx, models.Transaction{
				OperationID:  op.id,
				UserID:       userID,
				Amount:       amount,
				Type:         models.TxnDeposit,
				Timestamp:    s.stamp(),
				BalanceAfter: acc.Balance,
			})
			if err != nil {
				return nil, err
			}
			return []models.Transaction{rec}, nil
		})
	if err != nil {
		return models.Transaction{}, err
	}
	return recs[0], nil
}

func (s *LedgerService) Withdraw(ctx context.Context, userID int64, amount decimal.Decimal) (models.Transaction, error) {
	op := newOperation(events.KindWithdraw, userID, nil, amount)
	recs, err := s.apply(ctx, op, func() error { return models.ValidateAmount(amount) },
		func(w repo.Writer) ([]models.Transaction, error) {
			locked, err := w.LockAccounts(ctx, userID)
			if err != nil {
				return nil, err
			}
			acc, ok := locked[userID]
			if !ok {
				return nil, &models.NotFoundError{Role: models.RoleAccount, UserID: userID}
			}
			if _, err := acc.Debit(amount); err != nil {
				return nil, err
			}
			if _, err := w.SaveAccount(ctx, acc); err != nil {
				return nil, err
			}
			rec, err := w.SaveTransaction(ctx, models.Transaction{
				OperationID:  op.id,
				UserID:       userID,
				Amount:       amount,
				Type:         models.TxnWithdraw,
				Timestamp:    s.stamp(),
				BalanceAfter: acc.Balance,
			})
			if err != nil {
				return nil, err
			}
			return []models.Transaction{rec}, nil
		})
	if err != nil {
		return models.Transaction{}, err
	}
	return recs[0], nil
}

// Transfer moves amount from sender to receiver. Checks run in a fixed
// order: amount, self-transfer, sender, receiver, funds.
func (s *LedgerService) Transfer(ctx context.Context, senderID, receiverID int64, amount decimal.Decimal) (models.Transfer, error) {
	op := newOperation(events.KindTransfer, senderID, &receiverID, amount)
	check := func() error {
		if err := models.ValidateAmount(amount); err != nil {
			return err
		}
		if senderID == receiverID {
			return models.ErrSelfTransfer
		}
		return nil
	}
	recs, err := s.apply(ctx, op, check, func(w repo.Writer) ([]models.Transaction, error) {
		locked, err := w.LockAccounts(ctx, senderID, receiverID)
		if err != nil {
			return nil, err
		}
		sender, ok := locked[senderID]
		if !ok {
			return nil, &models.NotFoundError{Role: models.RoleSender, UserID: senderID}
		}
		receiver, ok := locked[receiverID]
		if !ok {
			return nil, &models.NotFoundError{Role: models.RoleReceiver, UserID: receiverID}
		}
		if _, err := sender.Debit(amount); err != nil {
			return nil, err
		}
		receiver.Credit(amount)
		for _, a := range []models.Account{sender, receiver} {
			if _, err := w.SaveAccount(ctx, a); err != nil {
				return nil, err
			}
		}

		ts := s.stamp()
		out, err := w.SaveTransaction(ctx, models.Transaction{
			OperationID:   op.id,
			UserID:        senderID,
			Amount:        amount,
			Type:          models.TxnTransferOut,
			Timestamp:     ts,
			BalanceAfter:  sender.Balance,
			RelatedUserID: &receiverID,
		})
		if err != nil {
			return nil, err
		}
		in, err := w.SaveTransaction(ctx, models.Transaction{
			OperationID:   op.id,
			UserID:        receiverID,
			Amount:        amount,
			Type:          models.TxnTransferIn,
			Timestamp:     ts,
			BalanceAfter:  receiver.Balance,
			RelatedUserID: &senderID,
		})
		if err != nil {
			return nil, err
		}
		return []models.Transaction{out, in}, nil
	})
	if err != nil {
		return models.Transfer{}, err
	}
	return models.Transfer{Out: recs[0], In: recs[1]}, nil
}

// stamp returns the record timestamp in the precision every backend keeps.
func (s *LedgerService) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
