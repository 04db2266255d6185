// Package store keeps encrypted identity payloads between the auth and
// exchange phases, keyed by (kyc token, subject).
package store

import (
	"context"
	"time"

	"github.com/akilalakshman/esignet/internal/sentinel"
)

// ErrNotFound is returned when no payload exists for a key, including after
// expiry or a prior Take.
var ErrNotFound = sentinel.ErrNotFound

// DefaultTTL bounds how long a payload waits for its exchange.
const DefaultTTL = 2 * time.Minute

// Store is the payload store contract shared by all implementations.
type Store interface {
	Put(ctx context.Context, token, subject, blob string) error
	Get(ctx context.Context, token, subject string) (string, error)
	Take(ctx context.Context, token, subject string) (string, error)
}
