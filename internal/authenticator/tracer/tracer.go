// Package tracer is the span abstraction used by the authenticator. Callers
// depend on Tracer; production wires the OpenTelemetry adapter and tests use
// the no-op tracer.
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span and marks it failed when err is non-nil.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to a span.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Strings(key string, values []string) Attribute {
	return Attribute{Key: key, Value: values}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: int64(value)}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashIdentifier returns a truncated SHA-256 of an individual id so traces
// can be correlated without carrying the id itself.
func HashIdentifier(individualID string) string {
	if individualID == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(individualID))
	return hex.EncodeToString(sum[:8])
}

const providerSpanPrefix = "kyc.provider."

const (
	SpanKycAuth      = "kyc.auth"
	SpanKycExchange  = "kyc.exchange"
	SpanSendOTP      = "kyc.send_otp"
	SpanProviderCall = providerSpanPrefix + "call"
	SpanResolve      = "kyc.claims.resolve"
)

const (
	AttrIndividual    = "individual_id_hash"
	AttrRelyingParty  = "relying_party_id"
	AttrTransactionID = "transaction_id"
	AttrKycStatus     = "kyc_status"
	AttrDegraded      = "degraded"
	AttrClaimCount    = "claims.count"
	AttrLocales       = "claims.locales"
	AttrState         = "state"
)

const (
	EventStateChanged = "state.changed"
	EventAuditEmitted = "audit.emitted"
)
