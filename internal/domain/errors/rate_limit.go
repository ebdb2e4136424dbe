package errors

import (
	"net/http"
	"strconv"
)

// RateLimitError is returned when an action is attempted inside its cooldown
// window. It carries the remaining seconds so the boundary layer can emit a
// Retry-After header and the caller knows when to try again.
type RateLimitError struct {
	retryAfterSeconds int64
}

// NewRateLimitError creates a rate-limit error with the remaining cooldown.
func NewRateLimitError(retryAfterSeconds int64) *RateLimitError {
	return &RateLimitError{retryAfterSeconds: retryAfterSeconds}
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return e.Message()
}

// HTTPCode returns the HTTP status code.
func (e *RateLimitError) HTTPCode() int {
	return http.StatusTooManyRequests
}

// ErrorCode returns the business error code.
func (e *RateLimitError) ErrorCode() string {
	return "RATE_LIMITED"
}

// Message returns the user-friendly error message.
func (e *RateLimitError) Message() string {
	return "Too many requests - retry in: " + strconv.FormatInt(e.retryAfterSeconds, 10) + " seconds"
}

// RetryAfterSeconds returns the remaining cooldown in whole seconds.
func (e *RateLimitError) RetryAfterSeconds() int64 {
	return e.retryAfterSeconds
}
