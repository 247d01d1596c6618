package middleware

import (
	"net/http"
)

// DefaultMaxRequestSize caps request bodies at 64KB. Entries are short free text.
const DefaultMaxRequestSize int64 = 64 << 10

// MaxRequestSize rejects bodies larger than maxBytes with 413. A non-positive maxBytes uses the default.
// GET, HEAD and OPTIONS requests pass through untouched.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > maxBytes {
				respondErrorJSON(w, r, http.StatusRequestEntityTooLarge, CodeRequestTooLarge, "Request body is too large", nil)
				return
			}
			// Chunked bodies are cut off by the reader while the handler decodes them
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
