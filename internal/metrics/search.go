package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// SearchCacheTotal counts cache lookups by result ("hit"/"miss").
	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crimedex",
			Name:      "search_cache_total",
			Help:      "Search cache lookups by result",
		},
		[]string{"result"},
	)

	// SingleflightSharedTotal counts callers that attached to an in-flight
	// index call instead of issuing their own.
	SingleflightSharedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "crimedex",
			Name:      "singleflight_shared_total",
			Help:      "Search calls served by an already in-flight index query",
		},
	)

	// IndexQueriesTotal counts upstream index calls by outcome
	// ("ok"/"invalid_query"/"unavailable").
	IndexQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crimedex",
			Name:      "index_queries_total",
			Help:      "Upstream index queries by outcome",
		},
		[]string{"outcome"},
	)
)

// RegisterSearchMetrics registers the search metrics explicitly (no init()).
func RegisterSearchMetrics() {
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(SingleflightSharedTotal)
	prometheus.MustRegister(IndexQueriesTotal)
}
