package main

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/akilalakshman/esignet/internal/authenticator/handler"
	"github.com/akilalakshman/esignet/internal/platform/config"
	"github.com/akilalakshman/esignet/internal/platform/redis"
	ratemetrics "github.com/akilalakshman/esignet/internal/ratelimit/metrics"
	ratelimit "github.com/akilalakshman/esignet/internal/ratelimit/middleware"
	"github.com/akilalakshman/esignet/internal/ratelimit/models"
	"github.com/akilalakshman/esignet/internal/ratelimit/store/bucket"
)

// buildRateLimit returns the per-route limiters and, when counters are kept
// in process, the store the sweeper must prune.
func buildRateLimit(cfg config.RateLimitConfig, log *slog.Logger, reg prometheus.Registerer, rdb *redis.Client) (handler.RouteMiddleware, *bucket.InMemoryBucketStore) {
	if !cfg.Enabled {
		log.Warn("rate limiting disabled")
		return handler.RouteMiddleware{}, nil
	}

	var (
		store  ratelimit.BucketStore
		memory *bucket.InMemoryBucketStore
	)
	if rdb != nil {
		store = bucket.NewRedisBucketStore(rdb.Client)
	} else {
		memory = bucket.NewInMemoryBucketStore()
		store = memory
	}

	opts := []ratelimit.Option{ratelimit.WithMetrics(ratemetrics.NewWithRegisterer(reg))}
	if cfg.TrustHeader {
		opts = append(opts, ratelimit.WithKeyFunc(ratelimit.ByRelyingParty))
	}
	limiter := ratelimit.New(store, map[models.Class]models.Limit{
		models.ClassAuth: {Requests: cfg.AuthLimit, Window: cfg.Window},
		models.ClassOTP:  {Requests: cfg.OTPLimit, Window: cfg.Window},
	}, log, opts...)

	return handler.RouteMiddleware{
		Auth: []func(http.Handler) http.Handler{limiter.RateLimit(models.ClassAuth)},
		OTP:  []func(http.Handler) http.Handler{limiter.RateLimit(models.ClassOTP)},
	}, memory
}
