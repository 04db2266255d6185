package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akilalakshman/esignet/internal/ratelimit/models"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore() (*InMemoryBucketStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := NewInMemoryBucketStore()
	s.now = clock.now
	return s, clock
}

func TestInMemoryAllowSlidingWindow(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()
	limit := models.Limit{Requests: 3, Window: time.Minute}
	key := models.Key(models.ClassAuth, "ip:10.0.0.1")

	for want := 2; want >= 0; want-- {
		res, err := store.Allow(ctx, key, limit)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, want, res.Remaining)
		clock.advance(10 * time.Second)
	}

	res, err := store.Allow(ctx, key, limit)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 30, res.RetryAfter)
	assert.Equal(t, clock.t.Add(30*time.Second), res.ResetAt)

	// The first request leaves the window.
	clock.advance(30 * time.Second)
	res, err = store.Allow(ctx, key, limit)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestInMemoryAllowKeysAreIndependent(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	limit := models.Limit{Requests: 1, Window: time.Minute}

	res, err := store.Allow(ctx, "a", limit)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = store.Allow(ctx, "b", limit)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = store.Allow(ctx, "a", limit)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestInMemoryDeleteExpired(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()

	_, err := store.Allow(ctx, "old", models.Limit{Requests: 5, Window: time.Second})
	require.NoError(t, err)
	_, err = store.Allow(ctx, "fresh", models.Limit{Requests: 5, Window: time.Hour})
	require.NoError(t, err)

	clock.advance(time.Minute)
	removed, err := store.DeleteExpired(ctx, clock.t)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Len(t, store.buckets, 1)
	assert.Contains(t, store.buckets, "fresh")
}
