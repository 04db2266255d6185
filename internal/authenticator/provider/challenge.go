package provider

import (
	"encoding/json"
	"fmt"

	"github.com/akilalakshman/esignet/internal/authenticator/combiner"
	"github.com/akilalakshman/esignet/internal/authenticator/models"
	"github.com/akilalakshman/esignet/internal/sentinel"
)

// ApplyChallenges copies each challenge into the request body and marks the
// matching requestedAuth flag. BIO challenges are base64url-encoded JSON
// arrays of biometric entries.
func ApplyChallenges(challenges []models.AuthChallenge, req *KycAuthRequest) error {
	if req.RequestedAuth == nil {
		req.RequestedAuth = make(map[string]bool)
	}
	for _, ch := range challenges {
		switch ch.AuthFactorType {
		case models.FactorOTP:
			req.Request.OTP = ch.Challenge
			req.RequestedAuth["otp"] = true
		case models.FactorPIN:
			req.Request.StaticPin = ch.Challenge
			req.RequestedAuth["pin"] = true
		case models.FactorBIO:
			raw, err := combiner.DecodeURL(ch.Challenge)
			if err != nil {
				return fmt.Errorf("biometric challenge: %w", err)
			}
			var entries []json.RawMessage
			if err := json.Unmarshal(raw, &entries); err != nil {
				return fmt.Errorf("biometric challenge is not a json list: %w", models.ErrDecode)
			}
			req.Request.Biometrics = append(req.Request.Biometrics, entries...)
			req.RequestedAuth["bio"] = true
		default:
			return fmt.Errorf("unsupported auth factor %q: %w", ch.AuthFactorType, sentinel.ErrInvalidInput)
		}
	}
	return nil
}
