package middleware

//go:generate mockgen -source=ratelimit.go -destination=mocks/mocks.go -package=mocks BucketStore

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/akilalakshman/esignet/internal/platform/privacy"
	"github.com/akilalakshman/esignet/internal/ratelimit/metrics"
	"github.com/akilalakshman/esignet/internal/ratelimit/models"
	dErrors "github.com/akilalakshman/esignet/pkg/domain-errors"
	"github.com/akilalakshman/esignet/pkg/platform/httputil"
	"github.com/akilalakshman/esignet/pkg/platform/middleware/request"
)

// HeaderRelyingPartyID identifies the calling relying party. It matches the
// header read by the authenticator handler.
const HeaderRelyingPartyID = "X-Relying-Party-ID"

// BucketStore consumes from a sliding window bucket.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit models.Limit) (*models.Result, error)
}

// KeyFunc picks the caller a request is counted against.
type KeyFunc func(r *http.Request) string

// ByClientIP counts requests per remote address.
func ByClientIP(r *http.Request) string {
	return "ip:" + request.ClientIP(r)
}

// ByRelyingParty counts requests per relying party, falling back to the
// remote address when the header is absent.
func ByRelyingParty(r *http.Request) string {
	if rp := r.Header.Get(HeaderRelyingPartyID); rp != "" {
		return "rp:" + rp
	}
	return ByClientIP(r)
}

type Middleware struct {
	store   BucketStore
	limits  map[models.Class]models.Limit
	key     KeyFunc
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Middleware.
type Option func(*Middleware)

// WithKeyFunc overrides the default per-IP key.
func WithKeyFunc(fn KeyFunc) Option {
	return func(m *Middleware) { m.key = fn }
}

// WithMetrics records decisions in m.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) { m.metrics = mt }
}

func New(store BucketStore, limits map[models.Class]models.Limit, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		limits: limits,
		key:    ByClientIP,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RateLimit enforces the budget configured for class. Store failures let the
// request through.
func (m *Middleware) RateLimit(class models.Class) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limit, ok := m.limits[class]
		if !ok {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			caller := m.key(r)

			result, err := m.store.Allow(ctx, models.Key(class, caller), limit)
			if err != nil {
				m.logger.ErrorContext(ctx, "rate limit check failed",
					"error", err,
					"class", class,
					"request_id", middleware.GetReqID(ctx),
				)
				if m.metrics != nil {
					m.metrics.IncrementStoreError(string(class))
				}
				next.ServeHTTP(w, r)
				return
			}
			if m.metrics != nil {
				m.metrics.IncrementDecision(string(class), result.Allowed)
			}

			addHeaders(w, result)
			if !result.Allowed {
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"class", class,
					"remote_addr_prefix", privacy.AnonymizeIP(request.ClientIP(r)),
					"request_id", middleware.GetReqID(ctx),
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests, retry later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
