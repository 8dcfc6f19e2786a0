package domain

import "errors"

var (
	// ErrValidation signals a malformed search request (page/limit out of range).
	// Surfaced immediately, never cached, never retried.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidQuery signals that the index rejected the query semantics.
	// Not retryable.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrUpstreamUnavailable signals that the index or cache backend is
	// unreachable or timed out. Retryable by the caller.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrTooManyRequests signals a rate limit hit.
	ErrTooManyRequests = errors.New("too many requests")
)
