// Package combiner joins and splits the byte fragments of an encrypted
// identity payload: ciphertext, wrapped session key and certificate
// thumbprint.
package combiner

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/akilalakshman/esignet/internal/authenticator/models"
)

// Combine returns primary || separator || secondary. The separator may be
// empty, in which case the fragments are concatenated.
func Combine(primary, secondary []byte, separator string) []byte {
	out := make([]byte, 0, len(primary)+len(separator)+len(secondary))
	out = append(out, primary...)
	out = append(out, separator...)
	return append(out, secondary...)
}

// Split reverses Combine. It splits on the last occurrence of separator so a
// primary fragment that happens to contain the separator bytes survives.
func Split(combined []byte, separator string) ([]byte, []byte, error) {
	if separator == "" {
		return nil, nil, fmt.Errorf("empty separator: %w", models.ErrDecode)
	}
	idx := bytes.LastIndex(combined, []byte(separator))
	if idx < 0 {
		return nil, nil, fmt.Errorf("separator not found: %w", models.ErrDecode)
	}
	return combined[:idx], combined[idx+len(separator):], nil
}

// SplitTrailing cuts a fixed-length fragment off the end of combined.
func SplitTrailing(combined []byte, n int) ([]byte, []byte, error) {
	if n < 0 || len(combined) < n {
		return nil, nil, fmt.Errorf("payload shorter than %d bytes: %w", n, models.ErrDecode)
	}
	cut := len(combined) - n
	return combined[:cut], combined[cut:], nil
}

// DecodeThumbprint decodes a textual thumbprint or subject proof. Hex is tried
// first; anything that is not valid hex is decoded as base64url.
func DecodeThumbprint(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("empty value: %w", models.ErrDecode)
	}
	if b, err := hex.DecodeString(s); err == nil {
		return b, nil
	}
	b, err := DecodeURL(s)
	if err != nil {
		return nil, fmt.Errorf("neither hex nor base64url: %w", models.ErrDecode)
	}
	return b, nil
}

// EncodeURL encodes b as base64url without padding.
func EncodeURL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeURL decodes base64url, with or without trailing padding.
func DecodeURL(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, fmt.Errorf("invalid base64url: %w", models.ErrDecode)
	}
	return b, nil
}

// Assemble builds the stored blob from the fragments returned by the
// provider: ciphertext, then splitter and session key when a session key is
// present, then thumbprint bytes when a thumbprint is present.
func Assemble(ciphertextB64, sessionKeyB64, thumbprint, splitter string) (string, error) {
	blob, err := DecodeURL(ciphertextB64)
	if err != nil {
		return "", fmt.Errorf("ciphertext: %w", err)
	}
	if sessionKeyB64 != "" {
		sk, err := DecodeURL(sessionKeyB64)
		if err != nil {
			return "", fmt.Errorf("session key: %w", err)
		}
		blob = Combine(blob, sk, splitter)
	}
	if thumbprint != "" {
		tp, err := DecodeThumbprint(thumbprint)
		if err != nil {
			return "", fmt.Errorf("thumbprint: %w", err)
		}
		blob = Combine(blob, tp, "")
	}
	return EncodeURL(blob), nil
}
