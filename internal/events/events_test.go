package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/baharkarakas/ledger-core/internal/models"
	"github.com/go-redis/redismock/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() Event {
	opID := uuid.MustParse("6f1c1c7e-8d7e-4a53-9d7b-1f5a4e0f7a11")
	ts := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	return Event{
		OperationID: opID,
		Kind:        KindDeposit,
		CommittedAt: ts,
		Records: []models.Transaction{{
			ID:           1,
			OperationID:  opID,
			UserID:       3,
			Amount:       decimal.RequireFromString("200.00"),
			Type:         models.TxnDeposit,
			Timestamp:    ts,
			BalanceAfter: decimal.RequireFromString("1200.00"),
		}},
	}
}

func TestRedisPublisher_Publish(t *testing.T) {
	e := sampleEvent()
	payload, err := json.Marshal(e)
	require.NoError(t, err)

	t.Run("ok", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectPublish("ledger.events", string(payload)).SetVal(1)

		err := NewRedisPublisher(rdb, "ledger.events").Publish(context.Background(), e)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis error", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectPublish("ledger.events", string(payload)).SetErr(errors.New("connection refused"))

		err := NewRedisPublisher(rdb, "ledger.events").Publish(context.Background(), e)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "publish ledger.events")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), sampleEvent()))
}
