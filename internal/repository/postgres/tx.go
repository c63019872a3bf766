package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/baharkarakas/ledger-core/internal/models"
	"github.com/baharkarakas/ledger-core/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type atomic struct{ pool *pgxpool.Pool }

// WithTx runs fn in one database transaction. Row locks taken by
// LockAccounts serialize conflicting groups, so READ COMMITTED is enough.
func (r *atomic) WithTx(ctx context.Context, fn func(repository.Writer) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(&writer{tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type writer struct{ tx pgx.Tx }

func (w *writer) LockAccounts(ctx context.Context, ids ...int64) (map[int64]models.Account, error) {
	out := make(map[int64]models.Account, len(ids))
	for _, id := range repository.LockOrder(ids...) {
		a, err := scanAccount(w.tx.QueryRow(ctx,
			`SELECT `+accountColumns+`
			   FROM accounts
			  WHERE user_id=$1
			    FOR UPDATE`,
			id,
		))
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lock account %d: %w", id, err)
		}
		out[id] = a
	}
	return out, nil
}

func (w *writer) SaveAccount(ctx context.Context, a models.Account) (models.Account, error) {
	saved, err := scanAccount(w.tx.QueryRow(ctx,
		`UPDATE accounts
		    SET balance = $2::numeric,
		        updated_at = now()
		  WHERE user_id = $1
		  RETURNING `+accountColumns,
		a.UserID, a.Balance.String(),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Account{}, repository.ErrNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("save account %d: %w", a.UserID, err)
	}
	return saved, nil
}

func (w *writer) SaveTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	err := w.tx.QueryRow(ctx,
		`INSERT INTO transactions (
		   operation_id, user_id, amount, type, timestamp, balance_after, related_user_id
		 ) VALUES ($1::uuid, $2, $3::numeric, $4, $5, $6::numeric, $7)
		 RETURNING id`,
		t.OperationID.String(), t.UserID, t.Amount.String(), string(t.Type), t.Timestamp, t.BalanceAfter.String(), t.RelatedUserID,
	).Scan(&t.ID)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	return t, nil
}
