// Package token derives the correlation token handed out after a successful
// authentication and the pseudonymous subject identifier bound to a relying
// party.
package token

import (
	"context"
	"crypto/md5" //nolint:gosec // name-based UUID (version 3), not a security primitive
	"crypto/sha256"
	"fmt"
	"hash"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcutil/base58"
	"github.com/google/uuid"

	"github.com/akilalakshman/esignet/internal/authenticator/combiner"
	"github.com/akilalakshman/esignet/internal/authenticator/models"
)

// PseudonymGenerator maps an individual to a stable identifier scoped to one
// relying party.
type PseudonymGenerator interface {
	Generate(ctx context.Context, individualID, relyingPartyID string) (string, error)
}

// Service derives tokens. It is safe for concurrent use.
type Service struct {
	secret     []byte
	pseudonyms PseudonymGenerator
	newHash    func() hash.Hash
	now        func() time.Time
	lastNanos  atomic.Int64
}

// Option configures a Service.
type Option func(*Service)

// WithHash replaces the SHA-256 digest used by KeyedHash.
func WithHash(fn func() hash.Hash) Option {
	return func(s *Service) {
		s.newHash = fn
	}
}

// WithClock sets the time source used for nonces.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New builds a Service. secret is the base64url-encoded keyed-hash secret.
func New(secret string, pseudonyms PseudonymGenerator, opts ...Option) (*Service, error) {
	key, err := combiner.DecodeURL(secret)
	if err != nil {
		return nil, fmt.Errorf("token secret: %w", err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("token secret is empty: %w", models.ErrDecode)
	}
	if pseudonyms == nil {
		return nil, fmt.Errorf("pseudonym generator is required: %w", models.ErrDerivation)
	}
	s := &Service{
		secret:     key,
		pseudonyms: pseudonyms,
		newHash:    sha256.New,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newHash == nil || s.newHash() == nil {
		return nil, models.ErrHashUnavailable
	}
	return s, nil
}

// DerivePseudonym returns the partner-specific user token for an individual.
func (s *Service) DerivePseudonym(ctx context.Context, individualID, relyingPartyID string) (string, error) {
	psut, err := s.pseudonyms.Generate(ctx, individualID, relyingPartyID)
	if err != nil {
		return "", fmt.Errorf("generate pseudonym: %w: %w", models.ErrDerivation, err)
	}
	if psut == "" {
		return "", fmt.Errorf("generator returned empty pseudonym: %w", models.ErrDerivation)
	}
	return psut, nil
}

// DeriveCorrelationToken mints a single-use token for transactionID. Two calls
// with the same inputs never return the same token.
func (s *Service) DeriveCorrelationToken(transactionID, subjectProof string) (string, error) {
	proof, err := combiner.DecodeThumbprint(subjectProof)
	if err != nil {
		return "", fmt.Errorf("subject proof: %w", err)
	}
	nonce := nameUUID(transactionID + strconv.FormatInt(s.nextNanos(), 10))
	return s.KeyedHash(combiner.Combine([]byte(nonce), proof, "")), nil
}

// KeyedHash returns base58(SHA-256(data || secret)). This is a digest of the
// concatenation, not an HMAC; external verifiers depend on the exact layout.
func (s *Service) KeyedHash(data []byte) string {
	h := s.newHash()
	h.Write(data)
	h.Write(s.secret)
	return base58.Encode(h.Sum(nil))
}

// nextNanos returns a wall-clock nanosecond reading that is strictly greater
// than every previous reading from this Service.
func (s *Service) nextNanos() int64 {
	for {
		last := s.lastNanos.Load()
		n := s.now().UnixNano()
		if n <= last {
			n = last + 1
		}
		if s.lastNanos.CompareAndSwap(last, n) {
			return n
		}
	}
}

// nameUUID renders the version 3 UUID of name with no namespace prefix.
func nameUUID(name string) string {
	sum := md5.Sum([]byte(name)) //nolint:gosec
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	return uuid.UUID(sum).String()
}
