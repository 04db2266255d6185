//go:build integration

package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/akilalakshman/esignet/internal/ratelimit/models"
	"github.com/akilalakshman/esignet/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisBucketStore
	ctx   context.Context
}

func TestRedisBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = NewRedisBucketStore(s.redis.Client)
	s.ctx = context.Background()
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.Flush(s.ctx))
}

func (s *RedisBucketStoreSuite) TestAllowUntilLimit() {
	limit := models.Limit{Requests: 2, Window: time.Minute}
	key := models.Key(models.ClassOTP, "rp:rp-1")

	for want := 1; want >= 0; want-- {
		res, err := s.store.Allow(s.ctx, key, limit)
		s.Require().NoError(err)
		s.True(res.Allowed)
		s.Equal(want, res.Remaining)
	}

	res, err := s.store.Allow(s.ctx, key, limit)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Positive(res.RetryAfter)

	ttl, err := s.redis.Client.PTTL(s.ctx, key).Result()
	s.Require().NoError(err)
	s.Positive(ttl)
}

func (s *RedisBucketStoreSuite) TestWindowSlides() {
	base := time.Now()
	s.store.now = func() time.Time { return base }
	limit := models.Limit{Requests: 1, Window: time.Second}

	res, err := s.store.Allow(s.ctx, "slide", limit)
	s.Require().NoError(err)
	s.True(res.Allowed)

	res, err = s.store.Allow(s.ctx, "slide", limit)
	s.Require().NoError(err)
	s.False(res.Allowed)

	s.store.now = func() time.Time { return base.Add(1500 * time.Millisecond) }
	res, err = s.store.Allow(s.ctx, "slide", limit)
	s.Require().NoError(err)
	s.True(res.Allowed)
}
