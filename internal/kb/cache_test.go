package kb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKB(id string) *KnowledgeBase {
	return &KnowledgeBase{
		Business: Business{Name: "Test"},
		Links:    LinkTable{"x": {URL: "https://example.com"}},
		Intents:  []Intent{{ID: id, Triggers: []Trigger{ParseTrigger("hello")}}},
		Policy:   Policy{Grounding: "KB only"},
	}
}

func TestCacheTTL(t *testing.T) {
	now := time.Unix(1000, 0)
	loads := 0
	load := func(ctx context.Context) (*KnowledgeBase, error) {
		loads++
		return testKB("v1"), nil
	}

	cache := NewCache(load, 5*time.Minute, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := cache.Get(ctx)
	require.NoError(t, err)
	_, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loads, "within TTL the snapshot is reused")

	now = now.Add(6 * time.Minute)
	_, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loads, "past TTL the snapshot is refreshed")
}

func TestCacheInvalidate(t *testing.T) {
	loads := 0
	load := func(ctx context.Context) (*KnowledgeBase, error) {
		loads++
		return testKB("v1"), nil
	}
	cache := NewCache(load, time.Hour)
	ctx := context.Background()

	_, err := cache.Get(ctx)
	require.NoError(t, err)
	cache.Invalidate()
	_, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestCacheServesStaleOnRefreshFailure(t *testing.T) {
	now := time.Unix(1000, 0)
	loads := 0
	load := func(ctx context.Context) (*KnowledgeBase, error) {
		loads++
		if loads > 1 {
			return nil, errors.New("source offline")
		}
		return testKB("v1"), nil
	}
	cache := NewCache(load, time.Minute, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	first, err := cache.Get(ctx)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	second, err := cache.Get(ctx)
	require.NoError(t, err, "refresh failure keeps serving the previous snapshot")
	assert.Same(t, first, second)
}

func TestCacheFirstLoadFailure(t *testing.T) {
	load := func(ctx context.Context) (*KnowledgeBase, error) {
		return nil, errors.New("no such file")
	}
	cache := NewCache(load, time.Minute)
	_, err := cache.Get(context.Background())
	require.Error(t, err)
}
