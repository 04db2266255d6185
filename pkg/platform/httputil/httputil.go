package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "github.com/akilalakshman/esignet/pkg/domain-errors"
)

// WriteJSON writes response with status. Responses may carry identity data,
// so they are never cacheable.
func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response) //nolint:errcheck // status already sent
}

type httpError struct {
	status int
	code   string
}

// errorTable maps domain codes to the status and public error code relying
// parties see. Codes missing here are internal errors.
var errorTable = map[dErrors.Code]httpError{
	dErrors.CodeNotFound:         {http.StatusNotFound, "not_found"},
	dErrors.CodeBadRequest:       {http.StatusBadRequest, "bad_request"},
	dErrors.CodeValidation:       {http.StatusBadRequest, "validation_error"},
	dErrors.CodeUnauthorized:     {http.StatusUnauthorized, "unauthorized"},
	dErrors.CodeAuthFailed:       {http.StatusUnauthorized, "auth_failed"},
	dErrors.CodeProviderRejected: {http.StatusUnauthorized, "auth_failed"},
	dErrors.CodeExchangeFailed:   {http.StatusInternalServerError, "data_exchange_failed"},
	dErrors.CodeSendOTPFailed:    {http.StatusInternalServerError, "send_otp_failed"},
	dErrors.CodeTimeout:          {http.StatusGatewayTimeout, "timeout"},
	dErrors.CodeUnavailable:      {http.StatusServiceUnavailable, "unavailable"},
	dErrors.CodeRateLimited:      {http.StatusTooManyRequests, "rate_limited"},
}

var internalError = httpError{http.StatusInternalServerError, "internal_error"}

func lookup(code dErrors.Code) httpError {
	if e, ok := errorTable[code]; ok {
		return e
	}
	return internalError
}

// WriteError writes err as {"error", "error_description"}. Errors without a
// domain code become a bare internal_error. A provider rejection carries the
// provider's own error code as "error".
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		WriteJSON(w, internalError.status, map[string]string{"error": internalError.code})
		return
	}

	mapped := lookup(domainErr.Code)
	if domainErr.Code == dErrors.CodeProviderRejected && domainErr.Message != "" {
		WriteJSON(w, mapped.status, map[string]string{"error": domainErr.Message})
		return
	}
	body := map[string]string{"error": mapped.code}
	if domainErr.Message != "" && domainErr.Message != mapped.code && domainErr.Message != string(domainErr.Code) {
		body["error_description"] = domainErr.Message
	}
	WriteJSON(w, mapped.status, body)
}

// StatusFor returns the HTTP status WriteError would use for code.
func StatusFor(code dErrors.Code) int {
	return lookup(code).status
}
