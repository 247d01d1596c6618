package middleware

import (
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds request handling. It sits above the LLM timeout so an
// ingestion request can finish its classify and parse calls.
const DefaultRequestTimeout = 90 * time.Second

const timeoutBody = `{"success":false,"error":"` + CodeTimeout + `","message":"Request timed out"}`

// Timeout cancels the request context after timeout and answers 503 with a JSON envelope
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}
