package navigation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// BadgesKey is the Redis key holding the latest badge counts.
const BadgesKey = "artstock:nav:badges"

// Counts maps badge keys to counts.
type Counts map[string]int

// Counter computes badge counts from the underlying records.
type Counter interface {
	CountBadges(ctx context.Context) (Counts, error)
}

// BadgeSource provides badge counts for rendering.
type BadgeSource interface {
	Badges(ctx context.Context) (Counts, error)
}

// BadgeCache serves badge counts from Redis, computing them once on a miss
// no matter how many requests are waiting.
type BadgeCache struct {
	client  *redis.Client
	counter Counter
	ttl     time.Duration
	group   singleflight.Group
}

// NewBadgeCache constructs a BadgeCache. A nil client disables caching.
func NewBadgeCache(client *redis.Client, counter Counter, ttl time.Duration) *BadgeCache {
	return &BadgeCache{client: client, counter: counter, ttl: ttl}
}

// Badges returns cached counts or computes and stores them.
func (c *BadgeCache) Badges(ctx context.Context) (Counts, error) {
	if counts, ok, err := c.cached(ctx); err != nil || ok {
		return counts, err
	}
	ch := c.group.DoChan(BadgesKey, func() (interface{}, error) {
		flightCtx := context.WithoutCancel(ctx)
		// A flight that finished just before this one may have filled the key.
		if counts, ok, err := c.cached(flightCtx); err != nil || ok {
			return counts, err
		}
		return c.Refresh(flightCtx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Counts), nil
	}
}

func (c *BadgeCache) cached(ctx context.Context) (Counts, bool, error) {
	if c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, BadgesKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("navigation: read badges: %w", err)
	}
	var counts Counts
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, false, nil
	}
	return counts, true, nil
}

// Refresh recomputes the counts and stores them.
func (c *BadgeCache) Refresh(ctx context.Context) (Counts, error) {
	if c.counter == nil {
		return nil, errors.New("navigation: badge counter not configured")
	}
	counts, err := c.counter.CountBadges(ctx)
	if err != nil {
		return nil, err
	}
	if c.client == nil {
		return counts, nil
	}
	data, err := json.Marshal(counts)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, BadgesKey, data, c.ttl).Err(); err != nil {
		return nil, fmt.Errorf("navigation: store badges: %w", err)
	}
	return counts, nil
}
