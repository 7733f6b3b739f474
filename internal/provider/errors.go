// Package provider holds what extraction and summarization providers share:
// rate-limit errors and circuit-broken fallback chains.
package provider

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// DefaultRetryAfter is used when a provider rate-limits without saying for how long.
const DefaultRetryAfter = 60 * time.Second

// RateLimitError indicates a provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	retryAfter := DefaultRetryAfter
	if retryAfterSecs > 0 {
		retryAfter = time.Duration(retryAfterSecs) * time.Second
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: retryAfter,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Both delta-seconds and HTTP-date forms are accepted; anything else yields 0.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return secs
	}
	if at, err := http.ParseTime(val); err == nil {
		if d := time.Until(at); d > 0 {
			return int(d.Seconds())
		}
	}
	return 0
}

// RetryAfterFromResponse reads Retry-After from resp, tolerating a nil response.
func RetryAfterFromResponse(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
}
