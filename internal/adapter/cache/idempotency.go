package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// IdempotencyStore parks gateway idempotency keys in Redis so a supervisor
// can re-query the gateway for purchases left pending by a transient charge
// failure.
type IdempotencyStore struct {
	rdb *redis.Client
}

func NewIdempotencyStore(rdb *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb}
}

func chargeKeyKey(purchaseID uuid.UUID) string {
	return fmt.Sprintf("payment:charge-key:%s", purchaseID)
}

func (s *IdempotencyStore) PutChargeKey(ctx context.Context, purchaseID uuid.UUID, key string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, chargeKeyKey(purchaseID), key, ttl).Err(); err != nil {
		return fmt.Errorf("store charge key: %w", err)
	}

	return nil
}

func (s *IdempotencyStore) GetChargeKey(ctx context.Context, purchaseID uuid.UUID) (string, error) {
	key, err := s.rdb.Get(ctx, chargeKeyKey(purchaseID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load charge key: %w", err)
	}

	return key, nil
}
