package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/akilalakshman/esignet/internal/ratelimit/metrics"
	"github.com/akilalakshman/esignet/internal/ratelimit/middleware/mocks"
	"github.com/akilalakshman/esignet/internal/ratelimit/models"
	"github.com/akilalakshman/esignet/internal/ratelimit/store/bucket"
)

type RateLimitSuite struct {
	suite.Suite
	logger  *slog.Logger
	metrics *metrics.Metrics
	limits  map[models.Class]models.Limit
}

func TestRateLimitSuite(t *testing.T) {
	suite.Run(t, new(RateLimitSuite))
}

func (s *RateLimitSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.limits = map[models.Class]models.Limit{
		models.ClassOTP: {Requests: 2, Window: time.Minute},
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func otpRequest(rp, addr string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/otp/send", nil)
	r.RemoteAddr = addr
	if rp != "" {
		r.Header.Set(HeaderRelyingPartyID, rp)
	}
	return r
}

func (s *RateLimitSuite) TestRejectsOnceBudgetIsSpent() {
	mw := New(bucket.NewInMemoryBucketStore(), s.limits, s.logger, WithMetrics(s.metrics))
	h := mw.RateLimit(models.ClassOTP)(okHandler())

	for i := range 2 {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, otpRequest("", "10.0.0.1:5000"))
		s.Require().Equal(http.StatusOK, w.Code, "request %d", i)
		s.Equal("2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, otpRequest("", "10.0.0.1:5001"))
	s.Equal(http.StatusTooManyRequests, w.Code)
	s.NotEmpty(w.Header().Get("Retry-After"))
	s.Equal("0", w.Header().Get("X-RateLimit-Remaining"))
	s.JSONEq(`{"error":"rate_limited","error_description":"too many requests, retry later"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, otpRequest("", "10.0.0.2:5000"))
	s.Equal(http.StatusOK, w.Code, "other callers keep their own budget")

	s.Equal(2.0, testutil.ToFloat64(s.metrics.Decisions.WithLabelValues("otp", "allowed")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Decisions.WithLabelValues("otp", "limited")))
}

func (s *RateLimitSuite) TestRelyingPartyKey() {
	mw := New(bucket.NewInMemoryBucketStore(), s.limits, s.logger, WithKeyFunc(ByRelyingParty))
	h := mw.RateLimit(models.ClassOTP)(okHandler())

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, otpRequest("rp-1", addr))
		s.Equal(http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, otpRequest("rp-1", "10.0.0.3:1"))
	s.Equal(http.StatusTooManyRequests, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, otpRequest("rp-2", "10.0.0.3:1"))
	s.Equal(http.StatusOK, w.Code)
}

func (s *RateLimitSuite) TestStoreFailureLetsRequestThrough() {
	ctrl := gomock.NewController(s.T())
	store := mocks.NewMockBucketStore(ctrl)
	store.EXPECT().
		Allow(gomock.Any(), "rl:otp:ip:10.0.0.1", s.limits[models.ClassOTP]).
		Return(nil, errors.New("redis: connection refused"))

	mw := New(store, s.limits, s.logger, WithMetrics(s.metrics))
	w := httptest.NewRecorder()
	mw.RateLimit(models.ClassOTP)(okHandler()).ServeHTTP(w, otpRequest("", "10.0.0.1:5000"))

	s.Equal(http.StatusOK, w.Code)
	s.Empty(w.Header().Get("X-RateLimit-Limit"))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.StoreErrors.WithLabelValues("otp")))
}

func (s *RateLimitSuite) TestUnconfiguredClassIsNotLimited() {
	ctrl := gomock.NewController(s.T())
	store := mocks.NewMockBucketStore(ctrl)

	mw := New(store, s.limits, s.logger)
	w := httptest.NewRecorder()
	mw.RateLimit(models.ClassAuth)(okHandler()).ServeHTTP(w, otpRequest("", "10.0.0.1:5000"))

	s.Equal(http.StatusOK, w.Code)
}
