package audit

import (
	"context"
	"time"
)

// Event is emitted from the authenticator to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID            string
	Category      EventCategory
	Timestamp     time.Time
	Action        string
	Subject       string // pseudonymous subject id, never the individual id
	RelyingParty  string
	ClientID      string
	TransactionID string
	Decision      string
	Reason        string
	RequestID     string
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is the interface for audit event emission.
// Satisfied by publisher.Publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// EventCategory groups events by who consumes them.
type EventCategory string

const (
	CategoryCompliance EventCategory = "compliance" // identity data disclosed to a relying party
	CategorySecurity   EventCategory = "security"   // failed authentication
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	EventKycAuthSucceeded    AuditEvent = "kyc_auth_succeeded"
	EventKycAuthFailed       AuditEvent = "kyc_auth_failed"
	EventKycExchanged        AuditEvent = "kyc_exchanged"
	EventKycExchangeDegraded AuditEvent = "kyc_exchange_degraded"
	EventKycExchangeFailed   AuditEvent = "kyc_exchange_failed"
	EventOTPSent             AuditEvent = "otp_sent"
	EventOTPFailed           AuditEvent = "otp_failed"
)

// Category maps an event to its category. Unknown events are operational.
func (e AuditEvent) Category() EventCategory {
	switch e {
	case EventKycExchanged, EventKycExchangeDegraded:
		return CategoryCompliance
	case EventKycAuthFailed, EventKycExchangeFailed:
		return CategorySecurity
	default:
		return CategoryOperations
	}
}
