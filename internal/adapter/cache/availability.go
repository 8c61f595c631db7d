package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ingressolabs/ticketsales/internal/core/domain"
)

// AvailabilityCache caches per-event ticket listings in Redis. The purchase
// workflow never reads it; transitions invalidate the key and the next
// listing request repopulates it from the database.
type AvailabilityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAvailabilityCache(rdb *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{rdb: rdb, ttl: ttl}
}

func eventTicketsKey(eventID uuid.UUID) string {
	return fmt.Sprintf("tickets:event:%s", eventID)
}

// GetEventTickets returns the cached listing, or (nil, nil) on a miss.
func (c *AvailabilityCache) GetEventTickets(ctx context.Context, eventID uuid.UUID) ([]domain.Ticket, error) {
	data, err := c.rdb.Get(ctx, eventTicketsKey(eventID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached tickets: %w", err)
	}

	var tickets []domain.Ticket
	if err := json.Unmarshal(data, &tickets); err != nil {
		// Corrupt entry: treat as a miss, the writer will replace it.
		return nil, nil
	}

	return tickets, nil
}

func (c *AvailabilityCache) SetEventTickets(ctx context.Context, eventID uuid.UUID, tickets []domain.Ticket) error {
	data, err := json.Marshal(tickets)
	if err != nil {
		return fmt.Errorf("encode tickets for cache: %w", err)
	}

	if err := c.rdb.Set(ctx, eventTicketsKey(eventID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache tickets: %w", err)
	}

	return nil
}

func (c *AvailabilityCache) InvalidateEvent(ctx context.Context, eventID uuid.UUID) error {
	if err := c.rdb.Del(ctx, eventTicketsKey(eventID)).Err(); err != nil {
		return fmt.Errorf("invalidate ticket cache: %w", err)
	}

	return nil
}
