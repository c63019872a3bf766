package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxnDeposit     TransactionType = "DEPOSIT"
	TxnWithdraw    TransactionType = "WITHDRAW"
	TxnTransferOut TransactionType = "TRANSFER_OUT"
	TxnTransferIn  TransactionType = "TRANSFER_IN"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TxnDeposit, TxnWithdraw, TxnTransferOut, TxnTransferIn:
		return true
	}
	return false
}

// Transaction is an immutable ledger record. Records written by the same
// operation share OperationID and Timestamp.
type Transaction struct {
	ID            int64           `json:"id"`
	OperationID   uuid.UUID       `json:"operation_id"`
	UserID        int64           `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Type          TransactionType `json:"type"`
	Timestamp     time.Time       `json:"timestamp"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	RelatedUserID *int64          `json:"related_user_id"`
}

// Transfer holds both legs of a committed transfer.
type Transfer struct {
	Out Transaction `json:"out"`
	In  Transaction `json:"in"`
}
