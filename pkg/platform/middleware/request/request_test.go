package request

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureRequestID(id *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*id = middleware.GetReqID(r.Context())
	})
}

func TestRequestID(t *testing.T) {
	t.Run("generates a uuid when absent", func(t *testing.T) {
		var got string
		rec := httptest.NewRecorder()
		RequestID(captureRequestID(&got)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, got, 36)
		assert.Equal(t, got, rec.Header().Get(HeaderRequestID))
	})

	t.Run("keeps a safe client id", func(t *testing.T) {
		var got string
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "trace.span_1234")
		RequestID(captureRequestID(&got)).ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "trace.span_1234", got)
	})

	t.Run("replaces an unsafe client id", func(t *testing.T) {
		var got string
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "bad id;drop")
		RequestID(captureRequestID(&got)).ServeHTTP(httptest.NewRecorder(), req)

		assert.NotEqual(t, "bad id;drop", got)
		assert.Len(t, got, 36)
	})
}

func TestIsValidRequestID(t *testing.T) {
	for _, id := range []string{"abc123", "ABC-123", "trace.span.1", strings.Repeat("x", MaxRequestIDLength)} {
		assert.True(t, isValidRequestID(id), id)
	}
	for _, id := range []string{"", strings.Repeat("x", MaxRequestIDLength+1), "has space", "has\nnewline", `has"quote`} {
		assert.False(t, isValidRequestID(id), id)
	}
}

func TestRecovery(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, nil))
	h := RequestID(Recovery(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/kyc/auth", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal_error","error_description":"internal error"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "panic recovered")
}

func TestLogger(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	h := RequestID(Logger(log)(ok))

	req := httptest.NewRequest(http.MethodPost, "/kyc/auth", nil)
	req.RemoteAddr = "192.168.10.47:51234"
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &line))
	assert.Equal(t, float64(http.StatusAccepted), line["status"])
	assert.Equal(t, "192.168.10.0", line["remote_addr_prefix"])
	assert.NotEmpty(t, line["request_id"])
	assert.Equal(t, "unknown", line["agent"])

	logs.Reset()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Zero(t, logs.Len())
}

func TestDescribeAgent(t *testing.T) {
	assert.Equal(t, "unknown", DescribeAgent(""))

	chrome := DescribeAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	assert.True(t, strings.HasPrefix(chrome, "Chrome/120 on "), chrome)

	bot := DescribeAgent("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	assert.True(t, strings.HasSuffix(bot, "(bot)"), bot)
}

func TestContentTypeJSON(t *testing.T) {
	h := ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/kyc/auth", nil)
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInstrument(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(Instrument(m))
	r.Get("/otp/channels/{channel}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, ch := range []string{"email", "phone"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/otp/channels/"+ch, nil))
	}

	assert.Equal(t, 1, testutil.CollectAndCount(m.Latency))
	count, err := testutil.GatherAndCount(reg, "esignet_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
