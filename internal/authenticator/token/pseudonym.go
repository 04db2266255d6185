package token

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

var errEmptyInput = errors.New("individual and relying party are required")

// HMACGenerator derives a per-relying-party key from a salt with HKDF and
// returns hex(HMAC-SHA256(key, individualID)). Output is stable for a given
// salt, so rotating the salt re-keys every pseudonym.
type HMACGenerator struct {
	salt []byte
}

// NewHMACGenerator builds a generator from a non-empty salt.
func NewHMACGenerator(salt []byte) (*HMACGenerator, error) {
	if len(salt) == 0 {
		return nil, errors.New("pseudonym salt is required")
	}
	return &HMACGenerator{salt: salt}, nil
}

// Generate implements PseudonymGenerator.
func (g *HMACGenerator) Generate(_ context.Context, individualID, relyingPartyID string) (string, error) {
	if individualID == "" || relyingPartyID == "" {
		return "", errEmptyInput
	}
	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, g.salt, nil, []byte(relyingPartyID)), key); err != nil {
		return "", fmt.Errorf("derive relying party key: %w", err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(individualID))
	return hex.EncodeToString(mac.Sum(nil)), nil
}
