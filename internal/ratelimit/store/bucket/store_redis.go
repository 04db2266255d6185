package bucket

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/akilalakshman/esignet/internal/ratelimit/models"
)

// slidingWindowScript trims the window, then admits the request when there is
// room. It returns {allowed, count, oldest_ms}.
var slidingWindowScript = redis.NewScript(`
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit  = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  count = count + 1
  allowed = 1
end
redis.call('PEXPIRE', key, window)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local oldestScore = now
if oldest[2] then
  oldestScore = tonumber(oldest[2])
end
return {allowed, count, oldestScore}
`)

// RedisBucketStore keeps sliding windows in Redis sorted sets so every
// replica shares the same counters.
type RedisBucketStore struct {
	client redis.Scripter
	now    func() time.Time
}

// NewRedisBucketStore wraps a Redis client.
func NewRedisBucketStore(client redis.Scripter) *RedisBucketStore {
	return &RedisBucketStore{client: client, now: time.Now}
}

// Allow records one request against key if the window has room.
func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit models.Limit) (*models.Result, error) {
	now := s.now()
	nowMs := now.UnixMilli()
	windowMs := limit.Window.Milliseconds()

	raw, err := slidingWindowScript.Run(ctx, s.client, []string{key},
		nowMs, windowMs, limit.Requests, strconv.FormatInt(nowMs, 10)+"-"+uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if len(raw) != 3 {
		return nil, fmt.Errorf("rate limit %s: unexpected script reply %v", key, raw)
	}

	allowed := raw[0] == 1
	resetAt := time.UnixMilli(raw[2] + windowMs)
	return newResult(allowed, limit.Requests, max(limit.Requests-int(raw[1]), 0), resetAt, now), nil
}
