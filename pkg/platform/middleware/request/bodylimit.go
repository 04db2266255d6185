package request

import (
	"net/http"

	"github.com/akilalakshman/esignet/pkg/platform/httputil"
)

// BodyLimit caps request bodies at maxBytes. A declared Content-Length above
// the cap is refused with 413 before the handler runs; undeclared or chunked
// bodies are cut off by http.MaxBytesReader, which DecodeJSON reports.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				w.Header().Set("Connection", "close")
				httputil.WriteJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
					"error":             "request_too_large",
					"error_description": "request body too large",
				})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
