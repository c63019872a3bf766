package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/baharkarakas/ledger-core/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, operation_id::text, user_id, amount::text, type, timestamp, balance_after::text, related_user_id`

type transactionsRepo struct{ pool *pgxpool.Pool }

func (r *transactionsRepo) ListByUser(ctx context.Context, userID int64, f models.HistoryFilter) ([]models.Transaction, error) {
	q, args := historyQuery(userID, f)
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("transactions.list: %w", err)
	}
	defer rows.Close()

	out := make([]models.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("transactions.list: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transactions.list: %w", err)
	}
	return out, nil
}

// historyQuery builds the SELECT for f. A lone bound is exclusive, a pair
// of bounds is inclusive, matching models.HistoryFilter.Match.
func historyQuery(userID int64, f models.HistoryFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT ` + transactionColumns + `
		   FROM transactions
		  WHERE user_id=$1`)
	args := []any{userID}
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	switch {
	case f.Start != nil && f.End != nil:
		b.WriteString(" AND timestamp BETWEEN " + arg(*f.Start) + " AND " + arg(*f.End))
	case f.Start != nil:
		b.WriteString(" AND timestamp > " + arg(*f.Start))
	case f.End != nil:
		b.WriteString(" AND timestamp < " + arg(*f.End))
	}
	b.WriteString(" ORDER BY timestamp, id")
	return b.String(), args
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var (
		t                     models.Transaction
		opID, amount, balance string
		typ                   string
	)
	if err := row.Scan(&t.ID, &opID, &t.UserID, &amount, &typ, &t.Timestamp, &balance, &t.RelatedUserID); err != nil {
		return models.Transaction{}, err
	}
	var err error
	if t.OperationID, err = uuid.Parse(opID); err != nil {
		return models.Transaction{}, fmt.Errorf("parse operation_id: %w", err)
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return models.Transaction{}, fmt.Errorf("parse amount: %w", err)
	}
	if t.BalanceAfter, err = decimal.NewFromString(balance); err != nil {
		return models.Transaction{}, fmt.Errorf("parse balance_after: %w", err)
	}
	t.Type = models.TransactionType(typ)
	t.Timestamp = t.Timestamp.UTC()
	return t, nil
}
