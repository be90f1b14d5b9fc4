package registry

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnknown is returned when a resolution fails without a recorded cause.
var ErrUnknown = errors.New("unknown fetch error")

// TimeoutError indicates a fetch attempt exceeded its deadline or was
// cancelled mid-flight. It carries no status code: the request never
// completed.
type TimeoutError struct {
	Timeout time.Duration
	Err     error
}

// Error returns the error message with the configured deadline.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %s: %v", e.Timeout, e.Err)
}

// Unwrap returns the underlying cause (typically a context error).
func (e *TimeoutError) Unwrap() error { return e.Err }

// StatusError indicates a non-success HTTP response. Body holds a bounded,
// best-effort slice of the response body for diagnostics and may be empty.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error returns the error message with status code and body when present.
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// RateLimited reports whether the status indicates rate limiting or an
// access refusal that retrying cannot fix (403 or 429).
func (e *StatusError) RateLimited() bool {
	return e.StatusCode == http.StatusForbidden || e.StatusCode == http.StatusTooManyRequests
}

// DecodeError indicates a success response whose body could not be decoded.
// Upstream transient corruption is indistinguishable from a real failure at
// this layer, so callers retry it like any other attempt failure.
type DecodeError struct {
	Err error
}

// Error returns the error message of the wrapped decode failure.
func (e *DecodeError) Error() string { return "decode response: " + e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *DecodeError) Unwrap() error { return e.Err }

// IsRateLimit checks if an error carries a rate-limited HTTP status.
func IsRateLimit(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.RateLimited()
}

// IsTimeout checks if an error is a fetch timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
