// Command ida-provider is a local stand-in for the IDA 1.1.5 kyc-auth and
// send-otp endpoints. It seals identity data for the partner certificate the
// same way the real provider does, so the authenticator can run end to end.
package main

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/akilalakshman/esignet/internal/authenticator/combiner"
	"github.com/akilalakshman/esignet/internal/authenticator/envelope"
	"github.com/akilalakshman/esignet/internal/authenticator/provider"
)

const (
	defaultPort = "8091"
	validOTP    = "111111"
	validPIN    = "1234"
)

// Error codes returned for the magic individual ids below.
const (
	codeInvalidOTP    = "IDA-OTA-004"
	codeUINNotFound   = "IDA-MLC-018"
	codeAuthLocked    = "IDA-MLC-019"
	codeOTPNotAllowed = "IDA-OTA-008"
)

type identity struct {
	record map[string]any
	email  string
	mobile string
}

// individuals drive the mock's behavior from the request's individual id.
var individuals = map[string]identity{
	"5860356276": {
		record: map[string]any{
			"fullName_eng":     "John Doe",
			"fullName_fra":     "Jean Dupont",
			"email":            "john.doe@example.org",
			"phone":            "+33612345678",
			"gender_eng":       "Male",
			"dateOfBirth":      "1990/01/01",
			"addressLine1_eng": "12 Rue de la Paix",
			"city_eng":         "Paris",
			"postalCode":       "75002",
		},
		email:  "j*******@example.org",
		mobile: "******5678",
	},
	"2154189532": {
		record: map[string]any{
			"fullName_eng": "Asha Rao",
			"email":        "asha.rao@example.org",
		},
		email: "a*******@example.org",
	},
}

type server struct {
	cert       *x509.Certificate
	thumbprint string
	latency    time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cert, err := loadCertificate(os.Getenv("PARTNER_CERT_FILE"))
	if err != nil {
		logger.Error("load partner certificate", "error", err)
		os.Exit(1)
	}
	latency, _ := strconv.Atoi(getEnv("LATENCY_MS", "50")) //nolint:errcheck // zero on bad input

	s := newServer(cert, time.Duration(latency)*time.Millisecond, logger)
	port := getEnv("PORT", defaultPort)
	logger.Info("mock ida provider starting", "port", port, "thumbprint", s.thumbprint)

	srv := &http.Server{Addr: ":" + port, Handler: s.routes(), ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("mock ida provider stopped", "error", err)
		os.Exit(1)
	}
}

func newServer(cert *x509.Certificate, latency time.Duration, logger *slog.Logger) *server {
	return &server{
		cert:       cert,
		thumbprint: hex.EncodeToString(envelope.Thumbprint(cert)),
		latency:    latency,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "healthy", "service": "ida-provider"})
	})
	r.Post("/kyc-auth/{partner}/{apiKey}", s.handleAuth(true))
	r.Post("/auth/{partner}/{apiKey}", s.handleAuth(false))
	r.Post("/otp/{partner}/{apiKey}", s.handleOTP)
	return r
}

func (s *server) handleAuth(withKyc bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(s.latency)

		var req provider.KycAuthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed request", http.StatusBadRequest)
			return
		}
		out := provider.ResponseWrapper[provider.KycResponse]{
			ID:            req.ID,
			Version:       req.Version,
			TransactionID: req.TransactionID,
			ResponseTime:  s.now().UTC().Format(provider.RequestTimeLayout),
		}

		person, ok := individuals[req.IndividualID]
		switch {
		case req.IndividualID == "LOCKED0001":
			out.Errors = []provider.Error{{ErrorCode: codeAuthLocked, ErrorMessage: "authentication locked"}}
		case !ok:
			out.Errors = []provider.Error{{ErrorCode: codeUINNotFound, ErrorMessage: "UIN not available in database"}}
		case !validProof(req.Request):
			out.Errors = []provider.Error{{ErrorCode: codeInvalidOTP, ErrorMessage: "OTP is invalid"}}
		default:
			resp := &provider.KycResponse{AuthStatus: true, AuthToken: "auth-" + req.TransactionID}
			if withKyc {
				if err := s.seal(resp, person); err != nil {
					s.logger.Error("seal identity", "error", err)
					http.Error(w, "internal error", http.StatusInternalServerError)
					return
				}
			}
			out.Response = resp
		}
		writeJSON(w, out)
	}
}

func (s *server) handleOTP(w http.ResponseWriter, r *http.Request) {
	time.Sleep(s.latency)

	var req provider.SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}
	out := provider.ResponseWrapper[provider.OTPResponse]{
		ID:            req.ID,
		Version:       req.Version,
		TransactionID: req.TransactionID,
		ResponseTime:  s.now().UTC().Format(provider.RequestTimeLayout),
	}
	person, ok := individuals[req.IndividualID]
	switch {
	case !ok:
		out.Errors = []provider.Error{{ErrorCode: codeUINNotFound, ErrorMessage: "UIN not available in database"}}
	case person.mobile == "" && slices.Contains(req.OTPChannel, "phone"):
		out.Errors = []provider.Error{{ErrorCode: codeOTPNotAllowed, ErrorMessage: "no phone registered"}}
	default:
		resp := &provider.OTPResponse{}
		if slices.Contains(req.OTPChannel, "email") {
			resp.MaskedEmail = person.email
		}
		if slices.Contains(req.OTPChannel, "phone") {
			resp.MaskedMobile = person.mobile
		}
		out.Response = resp
	}
	writeJSON(w, out)
}

func (s *server) seal(resp *provider.KycResponse, person identity) error {
	plaintext, err := json.Marshal(person.record)
	if err != nil {
		return err
	}
	pub, ok := s.cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("partner certificate is not RSA")
	}
	ciphertext, wrapped, err := envelope.Seal(pub, plaintext)
	if err != nil {
		return err
	}
	resp.KycStatus = true
	resp.Identity = combiner.EncodeURL(ciphertext)
	resp.SessionKey = combiner.EncodeURL(wrapped)
	resp.Thumbprint = s.thumbprint
	return nil
}

func validProof(body provider.AuthRequestBody) bool {
	return body.OTP == validOTP || body.StaticPin == validPIN || len(body.Biometrics) > 0
}

func loadCertificate(path string) (*x509.Certificate, error) {
	if path == "" {
		return nil, errors.New("PARTNER_CERT_FILE is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, errors.New("no certificate PEM block")
	}
	return x509.ParseCertificate(block.Bytes)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // response already started
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
