package models

import (
	"fmt"
	"strings"

	"github.com/akilalakshman/esignet/internal/sentinel"
	s "github.com/akilalakshman/esignet/pkg/string"
	"github.com/akilalakshman/esignet/pkg/validation"
)

// Authentication factor types accepted in a challenge.
const (
	FactorOTP = "OTP"
	FactorPIN = "PIN"
	FactorBIO = "BIO"
)

// AuthChallenge is one proof supplied by the end user.
type AuthChallenge struct {
	AuthFactorType string `json:"authFactorType" validate:"required,oneof=OTP PIN BIO"`
	Challenge      string `json:"challenge" validate:"required"`
	Format         string `json:"format,omitempty"`
}

// KycAuthRequest asks the identity provider to authenticate an individual.
type KycAuthRequest struct {
	TransactionID string          `json:"transactionId" validate:"required,max=64"`
	IndividualID  string          `json:"individualId" validate:"required,max=256"`
	Challenges    []AuthChallenge `json:"challengeList" validate:"required,min=1,max=5,dive"`
}

// Normalize trims identifiers and upper-cases factor types.
func (r *KycAuthRequest) Normalize() {
	if r == nil {
		return
	}
	s.TrimStrings(&r.TransactionID, &r.IndividualID)
	for i := range r.Challenges {
		r.Challenges[i].AuthFactorType = strings.ToUpper(strings.TrimSpace(r.Challenges[i].AuthFactorType))
	}
}

// Validate checks that the request is well-formed.
func (r *KycAuthRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("request is required: %w", sentinel.ErrBadRequest)
	}
	return validation.Validate(r)
}

// KycAuthResult is returned after a successful authentication.
type KycAuthResult struct {
	KycToken                 string `json:"kycToken"`
	PartnerSpecificUserToken string `json:"partnerSpecificUserToken"`
}

// KycExchangeRequest redeems a kyc token for signed claims.
type KycExchangeRequest struct {
	TransactionID  string   `json:"transactionId" validate:"required,max=64"`
	IndividualID   string   `json:"individualId" validate:"required,max=256"`
	KycToken       string   `json:"kycToken" validate:"required,max=128"`
	AcceptedClaims []string `json:"acceptedClaims" validate:"max=50"`
	ClaimsLocales  []string `json:"claimsLocales" validate:"max=10"`
}

// Normalize trims identifiers and claim names. Locales are reduced later by
// the resolver.
func (r *KycExchangeRequest) Normalize() {
	if r == nil {
		return
	}
	s.TrimStrings(&r.TransactionID, &r.IndividualID, &r.KycToken)
	s.TrimSlice(r.AcceptedClaims)
}

// Validate checks that the request is well-formed.
func (r *KycExchangeRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("request is required: %w", sentinel.ErrBadRequest)
	}
	return validation.Validate(r)
}

// KycExchangeResult carries the signed claim set.
type KycExchangeResult struct {
	EncryptedKyc string `json:"encryptedKyc"`
}

// SendOTPRequest asks the identity provider to deliver an OTP.
type SendOTPRequest struct {
	TransactionID string   `json:"transactionId" validate:"required,max=64"`
	IndividualID  string   `json:"individualId" validate:"required,max=256"`
	OTPChannels   []string `json:"otpChannels" validate:"required,min=1,max=2,dive,notblank"`
}

// Normalize lower-cases channel names.
func (r *SendOTPRequest) Normalize() {
	if r == nil {
		return
	}
	s.TrimStrings(&r.TransactionID, &r.IndividualID)
	for i := range r.OTPChannels {
		r.OTPChannels[i] = strings.ToLower(strings.TrimSpace(r.OTPChannels[i]))
	}
}

// Validate checks that the request is well-formed.
func (r *SendOTPRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("request is required: %w", sentinel.ErrBadRequest)
	}
	return validation.Validate(r)
}

// SendOTPResult reports where the OTP was delivered.
type SendOTPResult struct {
	TransactionID string `json:"transactionId"`
	MaskedEmail   string `json:"maskedEmail,omitempty"`
	MaskedMobile  string `json:"maskedMobile,omitempty"`
}
