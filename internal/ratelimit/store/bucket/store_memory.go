package bucket

import (
	"context"
	"sync"
	"time"

	"github.com/akilalakshman/esignet/internal/ratelimit/models"
)

// InMemoryBucketStore keeps sliding windows in process memory. Counters are
// per replica; use RedisBucketStore when running more than one.
type InMemoryBucketStore struct {
	mu      sync.Mutex
	buckets map[string]*slidingWindow
	now     func() time.Time
}

type slidingWindow struct {
	timestamps []time.Time
	window     time.Duration
}

func (sw *slidingWindow) tryConsume(limit int, now time.Time) (bool, int, time.Time) {
	sw.dropExpired(now)
	if len(sw.timestamps) >= limit {
		return false, 0, sw.timestamps[0].Add(sw.window)
	}
	sw.timestamps = append(sw.timestamps, now)
	return true, limit - len(sw.timestamps), sw.timestamps[0].Add(sw.window)
}

func (sw *slidingWindow) dropExpired(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for i < len(sw.timestamps) && !sw.timestamps[i].After(cutoff) {
		i++
	}
	sw.timestamps = sw.timestamps[i:]
}

// NewInMemoryBucketStore creates an empty store.
func NewInMemoryBucketStore() *InMemoryBucketStore {
	return &InMemoryBucketStore{
		buckets: make(map[string]*slidingWindow),
		now:     time.Now,
	}
}

// Allow records one request against key if the window has room.
func (s *InMemoryBucketStore) Allow(_ context.Context, key string, limit models.Limit) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sw, ok := s.buckets[key]
	if !ok || sw.window != limit.Window {
		sw = &slidingWindow{window: limit.Window}
		s.buckets[key] = sw
	}
	allowed, remaining, resetAt := sw.tryConsume(limit.Requests, now)
	return newResult(allowed, limit.Requests, remaining, resetAt, now), nil
}

// DeleteExpired drops buckets with no requests left in their window.
func (s *InMemoryBucketStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, sw := range s.buckets {
		sw.dropExpired(now)
		if len(sw.timestamps) == 0 {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed, nil
}

func newResult(allowed bool, limit, remaining int, resetAt, now time.Time) *models.Result {
	res := &models.Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if !allowed {
		res.RetryAfter = max(int(resetAt.Sub(now).Round(time.Second).Seconds()), 1)
	}
	return res
}
