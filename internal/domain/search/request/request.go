// Package request defines the validated, immutable search request and its
// deterministic cache key derivation.
package request

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/crimedex/crimedex/internal/domain"
	"github.com/crimedex/crimedex/internal/domain/search/filter"
)

// Search parameter limits.
const (
	MaxQueryLength = 1024
	MinPage        = 1
	MinLimit       = 1
	MaxLimit       = 100

	// DefaultSort is applied when no sort key is given.
	DefaultSort = "relevance"
)

// Request is a validated search query. One instance per attempted search
// call; immutable once constructed.
type Request struct {
	text    string
	filters filter.Filters
	sort    string
	page    int
	limit   int
}

// New validates search parameters and constructs a Request.
// Page and limit are hard-validated rather than clamped: a request outside
// the allowed range is the caller's bug and must fail fast.
func New(text string, filters filter.Filters, sort string, page, limit int) (Request, error) {
	if len(text) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrValidation, MaxQueryLength)
	}
	if page < MinPage {
		return Request{}, fmt.Errorf("%w: page must be >= %d, got %d", domain.ErrValidation, MinPage, page)
	}
	if limit < MinLimit || limit > MaxLimit {
		return Request{}, fmt.Errorf("%w: limit must be between %d and %d, got %d",
			domain.ErrValidation, MinLimit, MaxLimit, limit)
	}
	if sort == "" {
		sort = DefaultSort
	}

	return Request{
		text:    text,
		filters: filters.Clone(),
		sort:    sort,
		page:    page,
		limit:   limit,
	}, nil
}

// Text returns the raw query text as the caller supplied it.
func (r *Request) Text() string { return r.text }

// Filters returns the structured filters.
func (r *Request) Filters() filter.Filters { return r.filters }

// Sort returns the sort key.
func (r *Request) Sort() string { return r.sort }

// Page returns the 1-based page number.
func (r *Request) Page() int { return r.page }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }

// NormalizedText returns the query text trimmed, lowercased and with internal
// whitespace runs collapsed to single spaces.
func (r *Request) NormalizedText() string {
	return strings.Join(strings.Fields(strings.ToLower(r.text)), " ")
}

// CacheKey derives the cache key for this request. Semantically identical
// requests (same normalized text, same filter values in any order, same sort,
// page and limit) always map to the same key. The flat serialization is
// hashed to keep keys bounded; exact-match lookup only, so collision
// resistance of sha256 is more than enough.
func (r *Request) CacheKey() string {
	flat := fmt.Sprintf("%s|%s|%d|%d|f:%s",
		r.NormalizedText(), r.sort, r.page, r.limit, r.filters.Canonical())
	h := sha256.Sum256([]byte(flat))
	return hex.EncodeToString(h[:])
}
