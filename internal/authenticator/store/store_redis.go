package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/akilalakshman/esignet/internal/authenticator/metrics"
)

const redisPayloadKeyPrefix = "kyc:identity:"

// RedisStore persists payloads in Redis with TTL-based eviction.
type RedisStore struct {
	client  redis.Cmdable
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewRedisStore constructs a Redis-backed payload store; metrics may be nil.
func NewRedisStore(client redis.Cmdable, ttl time.Duration, m *metrics.Metrics) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl, metrics: m}
}

// Put writes blob with TTL eviction, overwriting any existing entry.
func (s *RedisStore) Put(ctx context.Context, token, subject, blob string) error {
	if err := s.client.Set(ctx, redisKey(token, subject), blob, s.ttl).Err(); err != nil {
		return fmt.Errorf("save kyc payload: %w", err)
	}
	return nil
}

// Get loads a payload without consuming it.
//
// Errors: returns ErrNotFound on miss; wraps Redis errors.
func (s *RedisStore) Get(ctx context.Context, token, subject string) (string, error) {
	start := time.Now()
	blob, err := s.client.Get(ctx, redisKey(token, subject)).Result()
	return s.result("get", start, blob, err)
}

// Take loads and deletes a payload in one GETDEL round trip.
//
// Errors: returns ErrNotFound on miss; wraps Redis errors.
func (s *RedisStore) Take(ctx context.Context, token, subject string) (string, error) {
	start := time.Now()
	blob, err := s.client.GetDel(ctx, redisKey(token, subject)).Result()
	return s.result("take", start, blob, err)
}

func (s *RedisStore) result(op string, start time.Time, blob string, err error) (string, error) {
	if err != nil {
		if errors.Is(err, redis.Nil) {
			if s.metrics != nil {
				s.metrics.RecordStoreMiss(op, time.Since(start).Seconds())
			}
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%s kyc payload: %w", op, err)
	}
	if s.metrics != nil {
		s.metrics.RecordStoreHit(op, time.Since(start).Seconds())
	}
	return blob, nil
}

func redisKey(token, subject string) string {
	return fmt.Sprintf("%s%s:%s", redisPayloadKeyPrefix, token, subject)
}
