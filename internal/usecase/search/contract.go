package search

import (
	"context"

	"github.com/crimedex/crimedex/internal/domain/search/request"
	"github.com/crimedex/crimedex/internal/domain/search/result"
)

// Cache is the result cache contract. Get never fails: backend trouble reads
// as a miss. Set is fire-and-forget for the same reason.
type Cache interface {
	Get(ctx context.Context, key string) (result.Result, bool)
	Set(ctx context.Context, key string, res result.Result)
	Invalidate(ctx context.Context, key string) error
	FlushAll(ctx context.Context) error
}

// Index issues one query against the search index.
type Index interface {
	Query(ctx context.Context, req request.Request) (result.Result, error)
}
