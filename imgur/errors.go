package imgur

import (
	"errors"
	"fmt"
	"time"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid imgur configuration")
	// ErrRateLimited indicates an exhausted user or application credit pool
	ErrRateLimited = errors.New("imgur rate limit exceeded")
	// ErrRequestFailed indicates a structured error reported by the API
	ErrRequestFailed = errors.New("imgur request failed")
	// ErrUnclassified indicates a client error whose body could not be interpreted
	ErrUnclassified = errors.New("imgur client error")
)

// Scope identifies which credential's quota has been exhausted.
type Scope string

const (
	// ScopeUser is the end-user credential quota
	ScopeUser Scope = "user"
	// ScopeClient is the application credential quota
	ScopeClient Scope = "client"
)

// RateLimitError is returned when the API reports no remaining credits.
type RateLimitError struct {
	Scope Scope
	Limit Count
	// ResetAt is only set for ScopeClient.
	ResetAt time.Time
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	if e.Scope == ScopeUser {
		return fmt.Sprintf("No user credits available. The limit is %s", e.Limit)
	}
	return fmt.Sprintf("No application credits available. The limit is %s and will be reset at %s",
		e.Limit, formatDate(e.ResetAt))
}

// Unwrap allows errors.Is(err, ErrRateLimited)
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// ResetDate returns the reset time as a UTC calendar date.
func (e *RateLimitError) ResetDate() string {
	return formatDate(e.ResetAt)
}

// RequestError carries the endpoint and message from an API error body.
type RequestError struct {
	Request string
	Message string
}

// Error implements the error interface
func (e *RequestError) Error() string {
	return fmt.Sprintf("Request to: %s failed with: \"%s\"", e.Request, e.Message)
}

// Unwrap allows errors.Is(err, ErrRequestFailed)
func (e *RequestError) Unwrap() error {
	return ErrRequestFailed
}

// UnclassifiedError preserves the raw body of a client error that had no
// recognizable structure.
type UnclassifiedError struct {
	Body string
}

// Error implements the error interface
func (e *UnclassifiedError) Error() string {
	return e.Body
}

// Unwrap allows errors.Is(err, ErrUnclassified)
func (e *UnclassifiedError) Unwrap() error {
	return ErrUnclassified
}

// StatusError is returned for failed responses the error hook did not claim,
// typically 5xx.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("imgur API error: %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// IsServerError checks if the error is a 5xx response
func (e *StatusError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// AsRateLimit extracts a *RateLimitError from err.
func AsRateLimit(err error) (*RateLimitError, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}

// IsRateLimited reports whether err is a rate limit of any scope.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// Kind returns a short, stable label for err, used for metrics and logs.
func Kind(err error) string {
	if err == nil {
		return ""
	}

	var (
		rl *RateLimitError
		se *StatusError
	)
	switch {
	case errors.As(err, &rl):
		return "rate_limit_" + string(rl.Scope)
	case errors.Is(err, ErrRequestFailed):
		return "request_failed"
	case errors.Is(err, ErrUnclassified):
		return "unclassified"
	case errors.As(err, &se):
		return "status"
	default:
		return "transport"
	}
}
