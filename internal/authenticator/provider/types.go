// Package provider speaks the IDA 1.1.5 KYC protocol: it builds signed auth
// and OTP requests and decodes the response envelopes.
package provider

import "encoding/json"

// KycAuthRequest is the body posted to the kyc-auth (or auth-only) endpoint.
type KycAuthRequest struct {
	ID              string          `json:"id"`
	Version         string          `json:"version"`
	RequestTime     string          `json:"requestTime"`
	DomainURI       string          `json:"domainUri"`
	Env             string          `json:"env"`
	ConsentObtained bool            `json:"consentObtained"`
	IndividualID    string          `json:"individualId"`
	TransactionID   string          `json:"transactionID"`
	RequestedAuth   map[string]bool `json:"requestedAuth"`
	Request         AuthRequestBody `json:"request"`
}

// AuthRequestBody carries the proofs mapped from the user's challenges.
type AuthRequestBody struct {
	OTP        string            `json:"otp,omitempty"`
	StaticPin  string            `json:"staticPin,omitempty"`
	Timestamp  string            `json:"timestamp"`
	Biometrics []json.RawMessage `json:"biometrics,omitempty"`
}

// SendOTPRequest is the body posted to the send-otp endpoint.
type SendOTPRequest struct {
	ID            string   `json:"id"`
	Version       string   `json:"version"`
	IndividualID  string   `json:"individualId"`
	TransactionID string   `json:"transactionID"`
	RequestTime   string   `json:"requestTime"`
	OTPChannel    []string `json:"otpChannel"`
}

// ResponseWrapper is the common IDA response envelope.
type ResponseWrapper[T any] struct {
	ID            string  `json:"id"`
	Version       string  `json:"version"`
	TransactionID string  `json:"transactionID"`
	ResponseTime  string  `json:"responseTime"`
	Response      *T      `json:"response"`
	Errors        []Error `json:"errors"`
}

// FirstErrorCode returns the code of the first reported error, if any.
func (w *ResponseWrapper[T]) FirstErrorCode() string {
	if w == nil || len(w.Errors) == 0 {
		return ""
	}
	return w.Errors[0].ErrorCode
}

// Error is one entry of the envelope's error list.
type Error struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// KycResponse is the payload of a kyc-auth response.
type KycResponse struct {
	AuthStatus bool   `json:"authStatus"`
	KycStatus  bool   `json:"kycStatus"`
	AuthToken  string `json:"authToken"`
	Identity   string `json:"identity"`
	SessionKey string `json:"sessionKey"`
	Thumbprint string `json:"thumbprint"`
}

// Succeeded reports a positive auth or kyc outcome.
func (r *KycResponse) Succeeded() bool {
	return r != nil && (r.AuthStatus || r.KycStatus)
}

// OTPResponse is the payload of a send-otp response.
type OTPResponse struct {
	MaskedEmail  string `json:"maskedEmail"`
	MaskedMobile string `json:"maskedMobile"`
}
