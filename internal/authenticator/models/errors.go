package models

import (
	"errors"
	"fmt"

	"github.com/akilalakshman/esignet/internal/sentinel"
)

// Error kinds raised inside the authenticator. The service collapses all of
// them into domain errors before they reach a caller.
var (
	ErrTransport        = errors.New("provider transport failed")
	ErrProviderRejected = errors.New("provider rejected request")
	ErrDerivation       = errors.New("token derivation failed")
	ErrDecode           = errors.New("decode failed")
	ErrStorageMiss      = sentinel.ErrNotFound
	ErrSchemaLookup     = errors.New("unknown claim")
	ErrSigning          = errors.New("signing failed")
	ErrDecryption       = errors.New("decryption failed")
	ErrHashUnavailable  = errors.New("hash algorithm unavailable")
)

// RejectedError carries the provider's own error code for a negative
// authentication outcome.
type RejectedError struct {
	Code    string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider rejected: %s: %s", e.Code, e.Message)
	}
	return "provider rejected: " + e.Code
}

func (e *RejectedError) Unwrap() error {
	return ErrProviderRejected
}

// ProviderCode returns the provider error code carried by err, if any.
func ProviderCode(err error) (string, bool) {
	var re *RejectedError
	if errors.As(err, &re) && re.Code != "" {
		return re.Code, true
	}
	return "", false
}
