// Package result defines one page of search results.
package result

import "github.com/crimedex/crimedex/internal/domain"

// Result is one page of search hits plus pagination metadata. Treated as
// immutable by every layer above the index: the coordinator hands the same
// value to concurrent waiters and to the cache.
type Result struct {
	Items []domain.ContentSummary `json:"items"`
	Total int                     `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

// New creates a result page.
func New(items []domain.ContentSummary, total, page, limit int) Result {
	return Result{Items: items, Total: total, Page: page, Limit: limit}
}

// HasNext reports whether pages beyond this one exist.
func (r Result) HasNext() bool {
	return r.Page*r.Limit < r.Total
}
