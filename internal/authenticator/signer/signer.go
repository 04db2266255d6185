// Package signer signs resolved claim sets as JWTs and produces the detached
// JWS carried in the provider request signature header.
package signer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/akilalakshman/esignet/internal/authenticator/combiner"
	"github.com/akilalakshman/esignet/internal/authenticator/models"
)

// JWTSigner signs with one RSA key pair.
type JWTSigner struct {
	keys *KeyPair
}

// New creates a signer. The certificate is optional unless callers ask for
// it to be embedded.
func New(keys *KeyPair) (*JWTSigner, error) {
	if keys == nil || keys.Key == nil {
		return nil, fmt.Errorf("signing key is required: %w", models.ErrSigning)
	}
	return &JWTSigner{keys: keys}, nil
}

// SignPayload returns an RS256 JWT over payload. The application id becomes
// the key id; includeCertificate adds the x5c header.
func (s *JWTSigner) SignPayload(_ context.Context, payload map[string]any, applicationID string, includeCertificate bool) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims(payload))
	if applicationID != "" {
		token.Header["kid"] = applicationID
	}
	if includeCertificate {
		x5c, err := s.x5c()
		if err != nil {
			return "", err
		}
		token.Header["x5c"] = x5c
	}
	signed, err := token.SignedString(s.keys.Key)
	if err != nil {
		return "", fmt.Errorf("sign claims: %w: %w", models.ErrSigning, err)
	}
	return signed, nil
}

// Sign returns a detached JWS over body: the compact serialization with the
// payload segment left empty.
func (s *JWTSigner) Sign(_ context.Context, body []byte) (string, error) {
	header := map[string]any{"alg": jwt.SigningMethodRS256.Alg()}
	if s.keys.Cert != nil {
		header["x5c"] = []string{base64.StdEncoding.EncodeToString(s.keys.Cert.Raw)}
	}
	rawHeader, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("encode header: %w: %w", models.ErrSigning, err)
	}
	protected := combiner.EncodeURL(rawHeader)
	sig, err := jwt.SigningMethodRS256.Sign(protected+"."+combiner.EncodeURL(body), s.keys.Key)
	if err != nil {
		return "", fmt.Errorf("sign request: %w: %w", models.ErrSigning, err)
	}
	return protected + ".." + combiner.EncodeURL(sig), nil
}

func (s *JWTSigner) x5c() ([]string, error) {
	if s.keys.Cert == nil {
		return nil, fmt.Errorf("no certificate configured: %w", models.ErrSigning)
	}
	return []string{base64.StdEncoding.EncodeToString(s.keys.Cert.Raw)}, nil
}
