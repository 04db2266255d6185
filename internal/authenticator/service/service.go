// Package service implements the KYC authenticator: it drives the provider
// exchange, derives the correlation and subject tokens, parks the encrypted
// identity between the two phases and turns it into a signed claim set.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/akilalakshman/esignet/internal/authenticator/claims"
	"github.com/akilalakshman/esignet/internal/authenticator/envelope"
	"github.com/akilalakshman/esignet/internal/authenticator/metrics"
	"github.com/akilalakshman/esignet/internal/authenticator/models"
	"github.com/akilalakshman/esignet/internal/authenticator/provider"
	"github.com/akilalakshman/esignet/internal/authenticator/tracer"
	audit "github.com/akilalakshman/esignet/pkg/platform/audit"
)

// IDAClient performs the provider calls.
type IDAClient interface {
	KycAuth(ctx context.Context, req models.KycAuthRequest) (*provider.ResponseWrapper[provider.KycResponse], error)
	SendOTP(ctx context.Context, req models.SendOTPRequest) (*provider.ResponseWrapper[provider.OTPResponse], error)
}

// TokenService derives pseudonymous subjects and single-use kyc tokens.
type TokenService interface {
	DerivePseudonym(ctx context.Context, individualID, relyingPartyID string) (string, error)
	DeriveCorrelationToken(transactionID, subjectProof string) (string, error)
}

// PayloadStore parks encrypted identity payloads between auth and exchange.
type PayloadStore interface {
	Put(ctx context.Context, token, subject, blob string) error
	Take(ctx context.Context, token, subject string) (string, error)
}

// Decryptor opens a stored payload into base64url plaintext.
type Decryptor interface {
	Decrypt(ctx context.Context, blobB64 string) (string, error)
}

// ClaimSigner signs the resolved claim set.
type ClaimSigner interface {
	SignPayload(ctx context.Context, payload map[string]any, applicationID string, includeCertificate bool) (string, error)
}

// ClaimsResolver builds the consented claim set from an identity record.
type ClaimsResolver interface {
	Resolve(ctx context.Context, in claims.Input) map[string]any
}

// AuditPublisher records audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Config holds the orchestration settings.
type Config struct {
	KeySplitter        string
	ApplicationID      string
	IncludeCertificate bool
	OTPChannels        []string
	SubjectClaim       string
}

// Service is the Authenticator implementation. It holds no per-call state
// and is safe for concurrent use.
type Service struct {
	ida       IDAClient
	tokens    TokenService
	store     PayloadStore
	decryptor Decryptor
	signer    ClaimSigner
	resolver  ClaimsResolver
	cfg       Config
	channels  map[string]struct{}

	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
	publisher AuditPublisher
	auditor   *audit.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics enables Prometheus outcome counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the span tracer. Defaults to a no-op tracer.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithAuditPublisher sends audit events to p in addition to the log.
func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// New creates the service. All collaborators are required.
func New(
	ida IDAClient,
	tokens TokenService,
	store PayloadStore,
	decryptor Decryptor,
	signer ClaimSigner,
	resolver ClaimsResolver,
	cfg Config,
	opts ...Option,
) (*Service, error) {
	if ida == nil || tokens == nil || store == nil || decryptor == nil || signer == nil || resolver == nil {
		return nil, errors.New("authenticator service: missing collaborator")
	}
	if cfg.SubjectClaim == "" {
		cfg.SubjectClaim = "sub"
	}
	if cfg.KeySplitter == "" {
		cfg.KeySplitter = envelope.DefaultKeySplitter
	}
	s := &Service{
		ida:       ida,
		tokens:    tokens,
		store:     store,
		decryptor: decryptor,
		signer:    signer,
		resolver:  resolver,
		cfg:       cfg,
		channels:  make(map[string]struct{}, len(cfg.OTPChannels)),
		logger:    slog.Default(),
		tracer:    tracer.NewNoop(),
	}
	for _, ch := range cfg.OTPChannels {
		s.channels[strings.ToLower(strings.TrimSpace(ch))] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	s.auditor = audit.NewLogger(s.logger, s.publisher)
	return s, nil
}

// IsSupportedOTPChannel reports whether channel is configured, ignoring case.
func (s *Service) IsSupportedOTPChannel(channel string) bool {
	_, ok := s.channels[strings.ToLower(strings.TrimSpace(channel))]
	return ok
}

// KycSigningCertificates lists certificates relying parties can use to
// verify the claim signature. Claims are signed with the bridge's own key,
// which is published elsewhere, so the list is empty.
func (s *Service) KycSigningCertificates(context.Context) ([]string, error) {
	return []string{}, nil
}

// flow tracks one call's state and logs every transition.
type flow struct {
	s             *Service
	ctx           context.Context
	span          tracer.Span
	state         models.State
	transactionID string
}

func (s *Service) newFlow(ctx context.Context, span tracer.Span, transactionID string, start models.State) *flow {
	return &flow{s: s, ctx: ctx, span: span, state: start, transactionID: transactionID}
}

func (f *flow) to(next models.State) {
	if !f.state.CanTransition(next) {
		f.s.logger.ErrorContext(f.ctx, "invalid kyc flow transition",
			"transaction_id", f.transactionID,
			"from", f.state.String(),
			"to", next.String(),
		)
		return
	}
	f.s.logger.DebugContext(f.ctx, "kyc flow transition",
		"transaction_id", f.transactionID,
		"from", f.state.String(),
		"state", next.String(),
	)
	f.span.AddEvent(tracer.EventStateChanged, tracer.String(tracer.AttrState, next.String()))
	f.state = next
	if next.IsTerminal() || next == models.StateAuthenticated {
		f.s.recordState(next)
	}
}

func (s *Service) recordState(state models.State) {
	if s.metrics != nil {
		s.metrics.RecordState(state.String())
	}
}

func wrapStage(stage string, err error) error {
	return fmt.Errorf("%s: %w", stage, err)
}

func (s *Service) audit(ctx context.Context, span tracer.Span, action audit.AuditEvent, event audit.Event) {
	s.auditor.Log(ctx, action, event)
	span.AddEvent(tracer.EventAuditEmitted, tracer.String("audit.action", string(action)))
}
