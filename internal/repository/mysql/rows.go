package mysql

import (
	"time"

	"github.com/baharkarakas/ledger-core/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type accountRow struct {
	UserID    int64           `gorm:"column:user_id;primaryKey;autoIncrement"`
	Balance   decimal.Decimal `gorm:"type:decimal(36,8);not null"`
	CreatedAt time.Time       `gorm:"type:datetime(6)"`
	UpdatedAt time.Time       `gorm:"type:datetime(6)"`
}

func (accountRow) TableName() string { return "accounts" }

func (r accountRow) model() models.Account {
	return models.Account{UserID: r.UserID, Balance: r.Balance, CreatedAt: r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC()}
}

type transactionRow struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	OperationID   string          `gorm:"type:char(36);not null;index"`
	UserID        int64           `gorm:"not null;index:idx_transactions_user_ts,priority:1"`
	Amount        decimal.Decimal `gorm:"type:decimal(36,8);not null"`
	Type          string          `gorm:"type:varchar(16);not null"`
	Timestamp     time.Time       `gorm:"type:datetime(6);not null;index:idx_transactions_user_ts,priority:2"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(36,8);not null"`
	RelatedUserID *int64
}

func (transactionRow) TableName() string { return "transactions" }

func toTransactionRow(t models.Transaction) transactionRow {
	return transactionRow{
		ID:            t.ID,
		OperationID:   t.OperationID.String(),
		UserID:        t.UserID,
		Amount:        t.Amount,
		Type:          string(t.Type),
		Timestamp:     t.Timestamp,
		BalanceAfter:  t.BalanceAfter,
		RelatedUserID: t.RelatedUserID,
	}
}

func (r transactionRow) model() (models.Transaction, error) {
	opID, err := uuid.Parse(r.OperationID)
	if err != nil {
		return models.Transaction{}, err
	}
	return models.Transaction{
		ID:            r.ID,
		OperationID:   opID,
		UserID:        r.UserID,
		Amount:        r.Amount,
		Type:          models.TransactionType(r.Type),
		Timestamp:     r.Timestamp.UTC(),
		BalanceAfter:  r.BalanceAfter,
		RelatedUserID: r.RelatedUserID,
	}, nil
}

type auditLogRow struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	EntityType string `gorm:"type:varchar(64);not null"`
	EntityID   string `gorm:"type:varchar(64);not null"`
	Action     string `gorm:"type:varchar(64);not null"`
	Details    []byte `gorm:"type:json"`
	CreatedAt  time.Time
}

func (auditLogRow) TableName() string { return "audit_logs" }

// Migrate creates or updates the ledger tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&accountRow{}, &transactionRow{}, &auditLogRow{})
}
