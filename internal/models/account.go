package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	UserID    int64           `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount decimal.Decimal) decimal.Decimal {
	a.Balance = a.Balance.Add(amount)
	return a.Balance
}

// Debit subtracts amount from the balance. The balance is left untouched
// when it does not cover amount.
func (a *Account) Debit(amount decimal.Decimal) (decimal.Decimal, error) {
	if a.Balance.LessThan(amount) {
		return a.Balance, ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return a.Balance, nil
}

// AmountScale is the number of fractional digits the ledger stores.
const AmountScale = 8

// ValidateAmount accepts strictly positive amounts with at most
// AmountScale fractional digits.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return fmt.Errorf("%w: more than %d decimal places", ErrInvalidAmount, AmountScale)
	}
	return nil
}
