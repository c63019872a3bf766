package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_Debit(t *testing.T) {
	t.Run("covers amount", func(t *testing.T) {
		a := Account{UserID: 1, Balance: decimal.RequireFromString("1000.00")}
		bal, err := a.Debit(decimal.RequireFromString("250.50"))
		require.NoError(t, err)
		assert.True(t, bal.Equal(decimal.RequireFromString("749.50")))
		assert.True(t, a.Balance.Equal(bal))
	})

	t.Run("exact balance", func(t *testing.T) {
		a := Account{UserID: 1, Balance: decimal.RequireFromString("10")}
		bal, err := a.Debit(decimal.RequireFromString("10.00"))
		require.NoError(t, err)
		assert.True(t, bal.IsZero())
	})

	t.Run("insufficient", func(t *testing.T) {
		a := Account{UserID: 1, Balance: decimal.RequireFromString("500.00")}
		_, err := a.Debit(decimal.RequireFromString("1000.00"))
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.True(t, a.Balance.Equal(decimal.RequireFromString("500.00")))
	})
}

func TestAccount_CreditIsExact(t *testing.T) {
	a := Account{Balance: decimal.Zero}
	step := decimal.RequireFromString("0.10")
	for i := 0; i < 1000; i++ {
		a.Credit(step)
	}
	assert.Equal(t, "100", a.Balance.String())
}

func TestHistoryFilter_Match(t *testing.T) {
	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	start := base.Add(-time.Hour)
	end := base.Add(time.Hour)

	tests := []struct {
		name   string
		filter HistoryFilter
		ts     time.Time
		want   bool
	}{
		{"no bounds", HistoryFilter{}, base, true},
		{"start only, after", HistoryFilter{Start: &start}, base, true},
		{"start only, equal is excluded", HistoryFilter{Start: &start}, start, false},
		{"end only, before", HistoryFilter{End: &end}, base, true},
		{"end only, equal is excluded", HistoryFilter{End: &end}, end, false},
		{"range, inside", HistoryFilter{Start: &start, End: &end}, base, true},
		{"range, lower edge included", HistoryFilter{Start: &start, End: &end}, start, true},
		{"range, upper edge included", HistoryFilter{Start: &start, End: &end}, end, true},
		{"range, outside", HistoryFilter{Start: &start, End: &end}, end.Add(time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(tt.ts))
		})
	}
}

func TestErrors(t *testing.T) {
	assert.ErrorIs(t, ErrSelfTransfer, ErrInvalidAmount)

	var err error = &NotFoundError{Role: RoleReceiver, UserID: 7}
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "receiver not found: user_id=7", err.Error())

	cause := errors.New("connection reset")
	err = &PersistenceError{Op: "transfer", Err: cause}
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsBusiness(err))

	assert.True(t, IsBusiness(ErrInsufficientFunds))
	assert.True(t, IsBusiness(ErrSelfTransfer))
}

func TestTransactionType_Valid(t *testing.T) {
	assert.True(t, TxnTransferIn.Valid())
	assert.False(t, TransactionType("credit").Valid())
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"0.01", true},
		{"1000", true},
		{"0.00000001", true},
		{"1.500000000", true},
		{"0", false},
		{"-5", false},
		{"0.000000001", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.in))
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidAmount)
			}
		})
	}
	assert.ErrorIs(t, ValidateAmount(decimal.Decimal{}), ErrInvalidAmount)
}
