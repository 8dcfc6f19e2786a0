package sdk

import "github.com/crimedex/crimedex/internal/domain"

// Sentinel errors surfaced by the client. These are the same values the
// server classifies with, so errors.Is works on either side of the wire.
var (
	// ErrValidation marks a malformed request. Not retryable.
	ErrValidation = domain.ErrValidation
	// ErrInvalidQuery marks a query the index rejected. Not retryable.
	ErrInvalidQuery = domain.ErrInvalidQuery
	// ErrUpstreamUnavailable marks a transient backend failure. Retryable.
	ErrUpstreamUnavailable = domain.ErrUpstreamUnavailable
	// ErrNotFound marks a missing resource.
	ErrNotFound = domain.ErrNotFound
	// ErrTooManyRequests marks a rate-limited call. Retryable after backoff.
	ErrTooManyRequests = domain.ErrTooManyRequests
)
