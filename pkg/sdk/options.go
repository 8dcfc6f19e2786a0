package sdk

import (
	"net/http"
	"time"
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithAPIKey sets the bearer token sent with every call.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithRequestTimeout bounds each search call.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDebounceWindow sets the quiet period after an edit before a search is
// issued. Zero disables debouncing: edits dispatch immediately.
func WithDebounceWindow(d time.Duration) SessionOption {
	return func(s *Session) {
		if d >= 0 {
			s.debounce = d
		}
	}
}

// WithMinQueryLength sets the minimum normalized text length that triggers a
// search. Shorter text settles to an empty result without a call.
func WithMinQueryLength(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.minLen = n
		}
	}
}

// WithPageSize sets the page size requested per call.
func WithPageSize(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithSort sets the sort key sent with every request.
func WithSort(sort string) SessionOption {
	return func(s *Session) { s.sort = sort }
}

// OnChange registers a callback invoked with a snapshot after every state
// change. The callback runs outside the session lock and must not block.
func OnChange(fn func(Snapshot)) SessionOption {
	return func(s *Session) { s.onChange = fn }
}
