// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
)

// StatusError reports a non-2xx HTTP response. Snippet holds the
// leading bytes of the error body, trimmed.
type StatusError struct {
	StatusCode int
	URL        string
	Snippet    string
}

func (e *StatusError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.URL, e.StatusCode, e.Snippet)
	}
	return fmt.Sprintf("%s returned status %d", e.URL, e.StatusCode)
}

// StatusCodeOf returns the HTTP status carried by err, or 0 when err
// carries none.
func StatusCodeOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// IsNotFound reports a 404 response.
func IsNotFound(err error) bool { return StatusCodeOf(err) == http.StatusNotFound }

// IsRateLimited reports a 429 response.
func IsRateLimited(err error) bool { return StatusCodeOf(err) == http.StatusTooManyRequests }

// IsAuth reports a 401 or 403 response.
func IsAuth(err error) bool {
	code := StatusCodeOf(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// IsServerError reports a 5xx response.
func IsServerError(err error) bool { return StatusCodeOf(err) >= 500 }

// IsCircuitOpen reports whether err came from an open circuit
// breaker rather than the backend itself.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
