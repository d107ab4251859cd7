package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bancore/backend/pkg/redis"
)

// Guard tracks processed event IDs per consumer using Redis SETNX with a TTL.
// Keys follow the `bancore:idempotency:evt:processed:<consumer>:<event_id>`
// pattern. It is a fast-path filter only; the durable dedup record lives in
// the database.
type Guard struct {
	store redis.DedupStore
	ttl   time.Duration
}

// NewGuard builds a dedup guard that marks events as seen for the given TTL.
func NewGuard(store redis.DedupStore, ttl time.Duration) (*Guard, error) {
	if store == nil {
		return nil, errors.New("dedup store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Guard{
		store: store,
		ttl:   ttl,
	}, nil
}

// CheckAndMark returns true if the event has already been seen and otherwise
// marks it as seen with the configured TTL.
func (g *Guard) CheckAndMark(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	key, err := g.seenKey(consumer, eventID)
	if err != nil {
		return false, err
	}
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Release removes the seen marker so a redelivery can retry the event.
func (g *Guard) Release(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := g.seenKey(consumer, eventID)
	if err != nil {
		return err
	}
	return g.store.Del(ctx, key)
}

func (g *Guard) seenKey(consumer string, eventID uuid.UUID) (string, error) {
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if eventID == uuid.Nil {
		return "", errors.New("event id is required")
	}
	scope := fmt.Sprintf("evt:processed:%s", consumer)
	return g.store.IdempotencyKey(scope, eventID.String()), nil
}
