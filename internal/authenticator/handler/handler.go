package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/akilalakshman/esignet/internal/authenticator/models"
	"github.com/akilalakshman/esignet/internal/authenticator/tracer"
	dErrors "github.com/akilalakshman/esignet/pkg/domain-errors"
	"github.com/akilalakshman/esignet/pkg/platform/httputil"
)

// Headers identifying the calling relying party. The gateway in front of the
// bridge authenticates the relying party and sets them.
const (
	HeaderRelyingPartyID = "X-Relying-Party-ID"
	HeaderClientID       = "X-Client-ID"
)

// Authenticator is the KYC authenticator contract served over HTTP.
type Authenticator interface {
	KycAuth(ctx context.Context, relyingPartyID, clientID string, req models.KycAuthRequest) (*models.KycAuthResult, error)
	KycExchange(ctx context.Context, relyingPartyID, clientID string, req models.KycExchangeRequest) (*models.KycExchangeResult, error)
	SendOTP(ctx context.Context, relyingPartyID, clientID string, req models.SendOTPRequest) (*models.SendOTPResult, error)
	IsSupportedOTPChannel(channel string) bool
	KycSigningCertificates(ctx context.Context) ([]string, error)
}

// ChannelResponse reports whether an OTP channel is configured.
type ChannelResponse struct {
	Channel   string `json:"channel"`
	Supported bool   `json:"supported"`
}

// CertificatesResponse lists the claim signing certificates.
type CertificatesResponse struct {
	Certificates []string `json:"certificates"`
}

type Handler struct {
	auth   Authenticator
	logger *slog.Logger
}

func New(auth Authenticator, logger *slog.Logger) *Handler {
	return &Handler{auth: auth, logger: logger}
}

// RouteMiddleware adds middleware to the routes that reach the identity
// provider.
type RouteMiddleware struct {
	Auth []func(http.Handler) http.Handler
	OTP  []func(http.Handler) http.Handler
}

func (h *Handler) Register(r chi.Router) {
	h.RegisterWith(r, RouteMiddleware{})
}

// RegisterWith mounts the routes with per-route middleware.
func (h *Handler) RegisterWith(r chi.Router, mw RouteMiddleware) {
	r.With(mw.Auth...).Post("/kyc/auth", h.HandleKycAuth)
	r.Post("/kyc/exchange", h.HandleKycExchange)
	r.Get("/kyc/certificates", h.HandleCertificates)
	r.With(mw.OTP...).Post("/otp/send", h.HandleSendOTP)
	r.Get("/otp/channels/{channel}", h.HandleChannel)
}

// HandleKycAuth authenticates an individual and returns the kyc token.
func (h *Handler) HandleKycAuth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	rp, client, ok := h.caller(w, r, requestID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.KycAuthRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.auth.KycAuth(ctx, rp, client, *req)
	if err != nil {
		h.fail(ctx, w, "kyc auth failed", err, "request_id", requestID, "relying_party_id", rp)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleKycExchange redeems a kyc token for the signed claim set.
func (h *Handler) HandleKycExchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	rp, client, ok := h.caller(w, r, requestID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.KycExchangeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.auth.KycExchange(ctx, rp, client, *req)
	if err != nil {
		h.fail(ctx, w, "kyc exchange failed", err, "request_id", requestID, "relying_party_id", rp)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleSendOTP asks the provider to send an OTP.
func (h *Handler) HandleSendOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	rp, client, ok := h.caller(w, r, requestID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.SendOTPRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.auth.SendOTP(ctx, rp, client, *req)
	if err != nil {
		h.fail(ctx, w, "send otp failed", err, "request_id", requestID, "relying_party_id", rp)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleChannel(w http.ResponseWriter, r *http.Request) {
	channel := strings.TrimSpace(chi.URLParam(r, "channel"))
	httputil.WriteJSON(w, http.StatusOK, ChannelResponse{
		Channel:   channel,
		Supported: h.auth.IsSupportedOTPChannel(channel),
	})
}

func (h *Handler) HandleCertificates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	certs, err := h.auth.KycSigningCertificates(ctx)
	if err != nil {
		h.fail(ctx, w, "list signing certificates failed", err, "request_id", middleware.GetReqID(ctx))
		return
	}
	if certs == nil {
		certs = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, CertificatesResponse{Certificates: certs})
}

// fail logs err at a level matching the status it maps to and writes it.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	level := slog.LevelWarn
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	attrs = append(attrs, "error", err)
	if id := tracer.TraceID(ctx); id != "" {
		attrs = append(attrs, "trace_id", id)
	}
	h.logger.Log(ctx, level, msg, attrs...)
	httputil.WriteError(w, err)
}

// caller reads the relying party and client headers.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request, requestID string) (string, string, bool) {
	rp := strings.TrimSpace(r.Header.Get(HeaderRelyingPartyID))
	client := strings.TrimSpace(r.Header.Get(HeaderClientID))
	if rp == "" || client == "" {
		h.logger.WarnContext(r.Context(), "missing caller headers",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "relying party and client headers are required"))
		return "", "", false
	}
	return rp, client, true
}
