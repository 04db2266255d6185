package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/akilalakshman/esignet/internal/authenticator/metrics"
	"github.com/akilalakshman/esignet/internal/authenticator/models"
	"github.com/akilalakshman/esignet/pkg/platform/circuit"
)

const (
	signatureHeader     = "signature"
	authorizationHeader = "Authorization"

	// RequestTimeLayout is the UTC timestamp format IDA expects.
	RequestTimeLayout = "2006-01-02T15:04:05.000Z"

	maxResponseBytes = 4 << 20
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestSigner produces the value of the signature header for a body.
type RequestSigner interface {
	Sign(ctx context.Context, body []byte) (string, error)
}

// Config holds the IDA endpoints and partner credentials.
type Config struct {
	KycURL        string
	AuthURL       string
	OTPURL        string
	PartnerID     string
	PartnerAPIKey string
	KycID         string
	AuthOnlyID    string
	OTPID         string
	Version       string
	DomainURI     string
	Env           string
	AuthOnly      bool
	Authorization string
	Timeout       time.Duration
}

// Client is an HTTP client for one IDA partner.
type Client struct {
	cfg     Config
	signer  RequestSigner
	http    HTTPDoer
	metrics *metrics.Metrics
	breaker *circuit.Breaker
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		c.http = doer
	}
}

// WithMetrics records request latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithBreaker fails calls fast while b is open. Timeouts and provider
// outages count as failures.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

// WithClock sets the time source for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a Client. The default HTTP client enforces cfg.Timeout.
func New(cfg Config, signer RequestSigner, opts ...Option) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Authorization == "" {
		cfg.Authorization = authorizationHeader
	}
	c := &Client{
		cfg:    cfg,
		signer: signer,
		http:   &http.Client{Timeout: cfg.Timeout},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildKycAuthRequest maps a user request onto the IDA wire format.
func (c *Client) BuildKycAuthRequest(req models.KycAuthRequest) (*KycAuthRequest, error) {
	id := c.cfg.KycID
	if c.cfg.AuthOnly {
		id = c.cfg.AuthOnlyID
	}
	ts := c.now().UTC().Format(RequestTimeLayout)
	out := &KycAuthRequest{
		ID:              id,
		Version:         c.cfg.Version,
		RequestTime:     ts,
		DomainURI:       c.cfg.DomainURI,
		Env:             c.cfg.Env,
		ConsentObtained: true,
		IndividualID:    req.IndividualID,
		TransactionID:   req.TransactionID,
		RequestedAuth:   make(map[string]bool),
		Request:         AuthRequestBody{Timestamp: ts},
	}
	if err := ApplyChallenges(req.Challenges, out); err != nil {
		return nil, err
	}
	return out, nil
}

// KycAuth posts a kyc-auth request. Any 2xx response is decoded and returned
// as is; callers interpret its status flags.
func (c *Client) KycAuth(ctx context.Context, req models.KycAuthRequest) (*ResponseWrapper[KycResponse], error) {
	body, err := c.BuildKycAuthRequest(req)
	if err != nil {
		return nil, err
	}
	base := c.cfg.KycURL
	if c.cfg.AuthOnly {
		base = c.cfg.AuthURL
	}
	var out ResponseWrapper[KycResponse]
	if err := c.post(ctx, "kyc_auth", base, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendOTP posts a send-otp request.
func (c *Client) SendOTP(ctx context.Context, req models.SendOTPRequest) (*ResponseWrapper[OTPResponse], error) {
	body := &SendOTPRequest{
		ID:            c.cfg.OTPID,
		Version:       c.cfg.Version,
		IndividualID:  req.IndividualID,
		TransactionID: req.TransactionID,
		RequestTime:   c.now().UTC().Format(RequestTimeLayout),
		OTPChannel:    req.OTPChannels,
	}
	var out ResponseWrapper[OTPResponse]
	if err := c.post(ctx, "send_otp", c.cfg.OTPURL, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, op, base string, payload, target any) (err error) {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.ObserveProvider(op, time.Since(start).Seconds())
		}
	}()

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return newTransportError(ErrorInternal, op, "failed to marshal request", 0, err)
	}
	endpoint, err := url.JoinPath(base, c.cfg.PartnerID, c.cfg.PartnerAPIKey)
	if err != nil {
		return newTransportError(ErrorInternal, op, "invalid endpoint", 0, err)
	}
	signature, err := c.signer.Sign(ctx, reqBody)
	if err != nil {
		return fmt.Errorf("sign %s request: %w: %w", op, models.ErrSigning, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return newTransportError(ErrorInternal, op, "failed to create request", 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signatureHeader, signature)
	req.Header.Set(authorizationHeader, c.cfg.Authorization)

	if c.breaker != nil {
		if !c.breaker.Allow() {
			return newTransportError(ErrorCircuitOpen, op, "circuit open", 0, nil)
		}
		defer func() { c.record(err) }()
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return newTransportError(ErrorTimeout, op, "request timeout", 0, err)
		}
		return newTransportError(ErrorProviderOutage, op, "failed to execute request", 0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return newTransportError(ErrorBadData, op, "failed to read response", resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return newTransportError(ErrorAuthentication, op, "partner authentication failed", resp.StatusCode, nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return newTransportError(ErrorRateLimited, op, "rate limited", resp.StatusCode, nil)
	case resp.StatusCode >= 500:
		return newTransportError(ErrorProviderOutage, op, "provider unavailable", resp.StatusCode, nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return newTransportError(ErrorInternal, op, "unexpected status", resp.StatusCode, nil)
	}

	if err := json.Unmarshal(respBody, target); err != nil {
		return newTransportError(ErrorBadData, op, "failed to parse response", resp.StatusCode, err)
	}
	return nil
}

func (c *Client) record(err error) {
	if cat := GetCategory(err); err != nil && (cat == ErrorTimeout || cat == ErrorProviderOutage) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}
