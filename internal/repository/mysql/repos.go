// Package mysql stores the ledger in MySQL through GORM.
package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/baharkarakas/ledger-core/internal/models"
	"github.com/baharkarakas/ledger-core/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewRepositories(db *gorm.DB) repository.Repositories {
	return repository.Repositories{
		Accounts:     &accountsRepo{db},
		Transactions: &transactionsRepo{db},
		AuditLogs:    &auditLogsRepo{db},
		Atomic:       &atomic{db},
	}
}

type accountsRepo struct{ db *gorm.DB }

func (r *accountsRepo) Find(ctx context.Context, userID int64) (models.Account, error) {
	var row accountRow
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Account{}, repository.ErrNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("accounts.find: %w", err)
	}
	return row.model(), nil
}

func (r *accountsRepo) Create(ctx context.Context) (models.Account, error) {
	row := accountRow{Balance: decimal.Zero}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Account{}, fmt.Errorf("accounts.create: %w", err)
	}
	return row.model(), nil
}

type transactionsRepo struct{ db *gorm.DB }

func (r *transactionsRepo) ListByUser(ctx context.Context, userID int64, f models.HistoryFilter) ([]models.Transaction, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	switch {
	case f.Start != nil && f.End != nil:
		q = q.Where("timestamp BETWEEN ? AND ?", *f.Start, *f.End)
	case f.Start != nil:
		q = q.Where("timestamp > ?", *f.Start)
	case f.End != nil:
		q = q.Where("timestamp < ?", *f.End)
	}

	var rows []transactionRow
	if err := q.Order("timestamp").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("transactions.list: %w", err)
	}
	out := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := row.model()
		if err != nil {
			return nil, fmt.Errorf("transactions.list: row %d: %w", row.ID, err)
		}
		out = append(out, t)
	}
	return out, nil
}

type auditLogsRepo struct{ db *gorm.DB }

func (r *auditLogsRepo) Create(ctx context.Context, l models.AuditLog) error {
	details, err := json.Marshal(l.Details)
	if err != nil {
		return fmt.Errorf("audit_logs.create: %w", err)
	}
	row := auditLogRow{EntityType: l.EntityType, EntityID: l.EntityID, Action: l.Action, Details: details}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("audit_logs.create: %w", err)
	}
	return nil
}

type atomic struct{ db *gorm.DB }

func (r *atomic) WithTx(ctx context.Context, fn func(repository.Writer) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&writer{tx})
	})
}

type writer struct{ tx *gorm.DB }

// LockAccounts takes the row locks with one SELECT ... FOR UPDATE ordered
// by primary key, so InnoDB acquires them in ascending id order.
func (w *writer) LockAccounts(ctx context.Context, ids ...int64) (map[int64]models.Account, error) {
	ordered := repository.LockOrder(ids...)
	out := make(map[int64]models.Account, len(ordered))
	if len(ordered) == 0 {
		return out, nil
	}
	var rows []accountRow
	err := w.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id IN ?", ordered).
		Order("user_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("lock accounts: %w", err)
	}
	for _, row := range rows {
		out[row.UserID] = row.model()
	}
	return out, nil
}

func (w *writer) SaveAccount(ctx context.Context, a models.Account) (models.Account, error) {
	now := w.tx.NowFunc()
	err := w.tx.WithContext(ctx).
		Model(&accountRow{}).
		Where("user_id = ?", a.UserID).
		Updates(map[string]any{"balance": a.Balance, "updated_at": now}).Error
	if err != nil {
		return models.Account{}, fmt.Errorf("save account %d: %w", a.UserID, err)
	}
	a.UpdatedAt = now.UTC()
	return a, nil
}

func (w *writer) SaveTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	row := toTransactionRow(t)
	if err := w.tx.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	t.ID = row.ID
	return t, nil
}
