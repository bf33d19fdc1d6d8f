package dreamapi

import (
	"fmt"
	"net/http"
)

// APIError is a non-2xx backend response. Transport-level failures are not
// APIErrors; they propagate from the HTTP stack unmodified.
type APIError struct {
	Message    string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" && e.Detail != e.Message {
		return fmt.Sprintf("%s (%d): %s", e.Message, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.StatusCode)
}

// IsForbidden reports a rejected or missing client key.
func (e *APIError) IsForbidden() bool { return e.StatusCode == http.StatusForbidden }

// IsUnauthorized reports a missing or expired user session.
func (e *APIError) IsUnauthorized() bool { return e.StatusCode == http.StatusUnauthorized }

func (e *APIError) IsRateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }

// MalformedResponseError is a 2xx response whose body does not match the
// endpoint's declared shape. Distinct from APIError so callers can tell a
// backend contract break from an ordinary failure.
type MalformedResponseError struct {
	Endpoint string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Endpoint, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
