package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/baharkarakas/ledger-core/internal/models"
	"github.com/baharkarakas/ledger-core/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `user_id, balance::text, created_at, updated_at`

type accountsRepo struct{ pool *pgxpool.Pool }

func (r *accountsRepo) Find(ctx context.Context, userID int64) (models.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+`
		   FROM accounts
		  WHERE user_id=$1`,
		userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Account{}, repository.ErrNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("accounts.find: %w", err)
	}
	return a, nil
}

func (r *accountsRepo) Create(ctx context.Context) (models.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`INSERT INTO accounts DEFAULT VALUES
		 RETURNING `+accountColumns,
	))
	if err != nil {
		return models.Account{}, fmt.Errorf("accounts.create: %w", err)
	}
	return a, nil
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var (
		a   models.Account
		bal string
	)
	if err := row.Scan(&a.UserID, &bal, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return models.Account{}, err
	}
	d, err := decimal.NewFromString(bal)
	if err != nil {
		return models.Account{}, fmt.Errorf("parse balance %q: %w", bal, err)
	}
	a.Balance = d
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}
