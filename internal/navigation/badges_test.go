package navigation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCounter struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (c *countingCounter) CountBadges(ctx context.Context) (Counts, error) {
	c.calls.Add(1)
	time.Sleep(c.delay)
	if c.err != nil {
		return nil, c.err
	}
	return Counts{"alerts": 7, "subscriptions": 4, "billing": 1}, nil
}

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestBadgeCacheComputesOnceOnMiss(t *testing.T) {
	client, mr := newRedis(t)
	counter := &countingCounter{delay: 20 * time.Millisecond}
	cache := NewBadgeCache(client, counter, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counts, err := cache.Badges(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, 7, counts["alerts"])
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), counter.calls.Load())
	assert.True(t, mr.Exists(BadgesKey))

	_, err := cache.Badges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), counter.calls.Load(), "cached counts are reused")

	mr.FastForward(2 * time.Minute)
	_, err = cache.Badges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), counter.calls.Load())
}

func TestBadgeCacheRefreshOverwrites(t *testing.T) {
	client, mr := newRedis(t)
	require.NoError(t, mr.Set(BadgesKey, `{"alerts":1}`))
	cache := NewBadgeCache(client, &countingCounter{}, time.Minute)

	counts, err := cache.Badges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts["alerts"])

	counts, err = cache.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, counts["alerts"])
	got, err := cache.Badges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, got["alerts"])
}

func TestBadgeCacheWithoutRedis(t *testing.T) {
	counter := &countingCounter{}
	counts, err := NewBadgeCache(nil, counter, time.Minute).Badges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, counts["subscriptions"])
}

func TestServiceFallsBackToStaticBadges(t *testing.T) {
	tree, err := DefaultTree()
	require.NoError(t, err)
	failing := NewBadgeCache(nil, &countingCounter{err: errors.New("down")}, time.Minute)
	view := NewService(tree, failing, nil).Build(context.Background(), "admin", "", "/billing")

	for _, s := range view.Sections {
		for _, item := range s.Items {
			if item.Path == "/billing" {
				assert.Equal(t, 2, item.Badge)
				assert.True(t, item.Active)
			}
		}
	}
}
