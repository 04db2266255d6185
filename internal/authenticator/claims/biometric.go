package claims

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/akilalakshman/esignet/internal/authenticator/combiner"
)

// BiometricConverter turns a stored face biometric into a displayable image.
// An empty result with a nil error means no image is available.
type BiometricConverter interface {
	Convert(ctx context.Context, raw string) (string, error)
}

// PassthroughConverter assumes the provider already sends a displayable
// image as base64url and re-encodes it as standard base64 for a data URI.
type PassthroughConverter struct{}

// Convert implements BiometricConverter.
func (PassthroughConverter) Convert(_ context.Context, raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	img, err := combiner.DecodeURL(raw)
	if err != nil {
		return "", fmt.Errorf("decode face image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(img), nil
}
