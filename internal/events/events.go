// Package events announces committed ledger operations to other services.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/baharkarakas/ledger-core/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

type Kind string

const (
	KindDeposit  Kind = "deposit"
	KindWithdraw Kind = "withdraw"
	KindTransfer Kind = "transfer"
)

// Event describes one committed operation and the records it appended.
type Event struct {
	OperationID uuid.UUID            `json:"operation_id"`
	Kind        Kind                 `json:"kind"`
	Records     []models.Transaction `json:"records"`
	CommittedAt time.Time            `json:"committed_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// RedisPublisher publishes events as JSON on a Redis pub/sub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, string(payload)).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}
