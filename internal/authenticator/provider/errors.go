package provider

import (
	"errors"
	"fmt"

	"github.com/akilalakshman/esignet/internal/authenticator/models"
)

// ErrorCategory classifies transport failures so logs and metrics agree on
// what went wrong.
type ErrorCategory string

const (
	ErrorTimeout        ErrorCategory = "timeout"
	ErrorBadData        ErrorCategory = "bad_data"
	ErrorAuthentication ErrorCategory = "authentication"
	ErrorProviderOutage ErrorCategory = "provider_outage"
	ErrorRateLimited    ErrorCategory = "rate_limited"
	ErrorCircuitOpen    ErrorCategory = "circuit_open"
	ErrorInternal       ErrorCategory = "internal"
)

// TransportError wraps a failed exchange with the identity provider: a
// network error, a non-2xx status or an unreadable body. It always matches
// models.ErrTransport.
type TransportError struct {
	Category   ErrorCategory
	Operation  string
	StatusCode int
	Message    string
	Underlying error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("ida %s [%s]: %s", e.Operation, e.Category, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Underlying != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Underlying)
	}
	return msg
}

func (e *TransportError) Unwrap() []error {
	if e.Underlying == nil {
		return []error{models.ErrTransport}
	}
	return []error{models.ErrTransport, e.Underlying}
}

func newTransportError(category ErrorCategory, op, message string, status int, underlying error) *TransportError {
	return &TransportError{
		Category:   category,
		Operation:  op,
		StatusCode: status,
		Message:    message,
		Underlying: underlying,
	}
}

// GetCategory extracts the category from a transport error.
func GetCategory(err error) ErrorCategory {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Category
	}
	return ErrorInternal
}
