package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akilalakshman/esignet/internal/authenticator/combiner"
	"github.com/akilalakshman/esignet/internal/authenticator/models"
	"github.com/akilalakshman/esignet/internal/sentinel"
	"github.com/akilalakshman/esignet/pkg/platform/circuit"
)

type staticSigner struct {
	sig string
	err error
}

func (s staticSigner) Sign(context.Context, []byte) (string, error) {
	return s.sig, s.err
}

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 890_000_000, time.FixedZone("X", 3600))

func testConfig(base string) Config {
	return Config{
		KycURL:        base + "/kyc-auth",
		AuthURL:       base + "/auth",
		OTPURL:        base + "/otp",
		PartnerID:     "esignet-partner",
		PartnerAPIKey: "api-key-1",
		KycID:         "mosip.identity.kyc",
		AuthOnlyID:    "mosip.identity.auth",
		OTPID:         "mosip.identity.otp",
		Version:       "1.0",
		DomainURI:     "https://api.example.org",
		Env:           "Staging",
	}
}

func authRequest() models.KycAuthRequest {
	return models.KycAuthRequest{
		TransactionID: "txn-1",
		IndividualID:  "5860356276",
		Challenges:    []models.AuthChallenge{{AuthFactorType: models.FactorOTP, Challenge: "111111"}},
	}
}

func TestKycAuth(t *testing.T) {
	t.Run("posts signed request to partner scoped url", func(t *testing.T) {
		var captured KycAuthRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/kyc-auth/esignet-partner/api-key-1", r.URL.Path)
			assert.Equal(t, "detached-sig", r.Header.Get("signature"))
			assert.Equal(t, "Authorization", r.Header.Get("Authorization"))
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &captured))
			_, _ = w.Write([]byte(`{"transactionID":"txn-1","response":{"authStatus":true,"kycStatus":true,"identity":"abc","sessionKey":"def","thumbprint":"0a"}}`))
		}))
		defer srv.Close()

		c := New(testConfig(srv.URL), staticSigner{sig: "detached-sig"}, WithClock(func() time.Time { return fixedNow }))
		resp, err := c.KycAuth(context.Background(), authRequest())
		require.NoError(t, err)

		require.NotNil(t, resp.Response)
		assert.True(t, resp.Response.Succeeded())
		assert.Equal(t, "abc", resp.Response.Identity)
		assert.Equal(t, "txn-1", resp.TransactionID)

		assert.Equal(t, "mosip.identity.kyc", captured.ID)
		assert.Equal(t, "2025-03-04T04:06:07.890Z", captured.RequestTime)
		assert.True(t, captured.ConsentObtained)
		assert.Equal(t, "111111", captured.Request.OTP)
		assert.Equal(t, map[string]bool{"otp": true}, captured.RequestedAuth)
	})

	t.Run("auth only mode switches id and endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/esignet-partner/api-key-1", r.URL.Path)
			var req KycAuthRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "mosip.identity.auth", req.ID)
			_, _ = w.Write([]byte(`{"response":{"authStatus":true}}`))
		}))
		defer srv.Close()

		cfg := testConfig(srv.URL)
		cfg.AuthOnly = true
		resp, err := New(cfg, staticSigner{}).KycAuth(context.Background(), authRequest())
		require.NoError(t, err)
		assert.False(t, resp.Response.KycStatus)
	})

	t.Run("2xx with errors is returned for the caller to judge", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"response":{"authStatus":false},"errors":[{"errorCode":"IDA-MLC-002","errorMessage":"Invalid UIN"}]}`))
		}))
		defer srv.Close()

		resp, err := New(testConfig(srv.URL), staticSigner{}).KycAuth(context.Background(), authRequest())
		require.NoError(t, err)
		assert.False(t, resp.Response.Succeeded())
		assert.Equal(t, "IDA-MLC-002", resp.FirstErrorCode())
	})

	t.Run("non-2xx is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := New(testConfig(srv.URL), staticSigner{}).KycAuth(context.Background(), authRequest())
		require.ErrorIs(t, err, models.ErrTransport)
		assert.Equal(t, ErrorProviderOutage, GetCategory(err))
	})

	t.Run("malformed body is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		_, err := New(testConfig(srv.URL), staticSigner{}).KycAuth(context.Background(), authRequest())
		require.ErrorIs(t, err, models.ErrTransport)
		assert.Equal(t, ErrorBadData, GetCategory(err))
	})

	t.Run("signer failure", func(t *testing.T) {
		_, err := New(testConfig("http://unused.test"), staticSigner{err: errors.New("hsm")}).KycAuth(context.Background(), authRequest())
		assert.ErrorIs(t, err, models.ErrSigning)
	})
}

func TestSendOTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/otp/esignet-partner/api-key-1", r.URL.Path)
		var req SendOTPRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mosip.identity.otp", req.ID)
		assert.Equal(t, []string{"email", "phone"}, req.OTPChannel)
		_, _ = w.Write([]byte(`{"transactionID":"txn-9","response":{"maskedEmail":"j***@example.com","maskedMobile":"XXXXXX1234"}}`))
	}))
	defer srv.Close()

	resp, err := New(testConfig(srv.URL), staticSigner{}).SendOTP(context.Background(), models.SendOTPRequest{
		TransactionID: "txn-9",
		IndividualID:  "5860356276",
		OTPChannels:   []string{"email", "phone"},
	})
	require.NoError(t, err)
	assert.Equal(t, "j***@example.com", resp.Response.MaskedEmail)
	assert.Equal(t, "XXXXXX1234", resp.Response.MaskedMobile)
}

func TestApplyChallenges(t *testing.T) {
	t.Run("pin and bio", func(t *testing.T) {
		bio := combiner.EncodeURL([]byte(`[{"data":"x"},{"data":"y"}]`))
		req := &KycAuthRequest{}
		err := ApplyChallenges([]models.AuthChallenge{
			{AuthFactorType: models.FactorPIN, Challenge: "1234"},
			{AuthFactorType: models.FactorBIO, Challenge: bio},
		}, req)
		require.NoError(t, err)

		assert.Equal(t, "1234", req.Request.StaticPin)
		assert.Len(t, req.Request.Biometrics, 2)
		assert.Equal(t, map[string]bool{"pin": true, "bio": true}, req.RequestedAuth)
	})

	t.Run("bio that is not a list", func(t *testing.T) {
		err := ApplyChallenges([]models.AuthChallenge{
			{AuthFactorType: models.FactorBIO, Challenge: combiner.EncodeURL([]byte(`{}`))},
		}, &KycAuthRequest{})
		assert.ErrorIs(t, err, models.ErrDecode)
	})

	t.Run("unknown factor", func(t *testing.T) {
		err := ApplyChallenges([]models.AuthChallenge{{AuthFactorType: "KBI", Challenge: "x"}}, &KycAuthRequest{})
		assert.ErrorIs(t, err, sentinel.ErrInvalidInput)
	})
}

func TestBreakerFailsFastAfterOutages(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	breaker := circuit.New("ida", circuit.WithFailureThreshold(2), circuit.WithCoolDown(time.Hour))
	client := New(testConfig(srv.URL), staticSigner{}, WithBreaker(breaker))

	for range 2 {
		_, err := client.KycAuth(context.Background(), authRequest())
		assert.Equal(t, ErrorProviderOutage, GetCategory(err))
	}
	_, err := client.SendOTP(context.Background(), models.SendOTPRequest{TransactionID: "txn-1", IndividualID: "5860356276", OTPChannels: []string{"email"}})
	require.ErrorIs(t, err, models.ErrTransport)
	assert.Equal(t, ErrorCircuitOpen, GetCategory(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestBreakerIgnoresProviderRejections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"errorCode":"IDA-OTA-004","errorMessage":"OTP is invalid"}]}`))
	}))
	defer srv.Close()

	breaker := circuit.New("ida", circuit.WithFailureThreshold(1))
	client := New(testConfig(srv.URL), staticSigner{}, WithBreaker(breaker))

	for range 3 {
		_, err := client.KycAuth(context.Background(), authRequest())
		require.NoError(t, err)
	}
	assert.Equal(t, circuit.StateClosed, breaker.State())
}
