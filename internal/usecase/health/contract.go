package health

import "context"

// StorePinger checks cache backend availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker checks search index availability.
type IndexChecker interface {
	HealthCheck(ctx context.Context) error
}
