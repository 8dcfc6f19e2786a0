// Package index defines the boundary to the search index. The engine treats
// the index as a black box: one query in, one page of items plus a total out.
package index

import (
	"context"

	"github.com/crimedex/crimedex/internal/domain/search/request"
	"github.com/crimedex/crimedex/internal/domain/search/result"
)

// Adapter issues a single query against the search index.
//
// Implementations classify failures with the domain sentinels: transient
// (network, timeout, backend down) wraps domain.ErrUpstreamUnavailable,
// permanent rejection of the query wraps domain.ErrInvalidQuery.
type Adapter interface {
	Query(ctx context.Context, req request.Request) (result.Result, error)
}

// HealthChecker is implemented by adapters that can report backend health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
