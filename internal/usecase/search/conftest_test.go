package search

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/crimedex/crimedex/internal/domain"
	"github.com/crimedex/crimedex/internal/domain/search/filter"
	"github.com/crimedex/crimedex/internal/domain/search/request"
	"github.com/crimedex/crimedex/internal/domain/search/result"
)

// mockCache implements the consumer Cache interface for tests.
type mockCache struct {
	mu         sync.Mutex
	data       map[string]result.Result
	flushed    bool
	invalidate []string
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]result.Result)}
}

func (m *mockCache) Get(_ context.Context, key string) (result.Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.data[key]
	return res, ok
}

func (m *mockCache) Set(_ context.Context, key string, res result.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = res
}

func (m *mockCache) Invalidate(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.invalidate = append(m.invalidate, key)
	return nil
}

func (m *mockCache) FlushAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushed = true
	m.data = make(map[string]result.Result)
	return nil
}

func (m *mockCache) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// mockIndex implements the consumer Index interface for tests.
type mockIndex struct {
	queryFn func(ctx context.Context, req request.Request) (result.Result, error)
	calls   atomic.Int64
	// release, when set, blocks every query until closed.
	release chan struct{}
}

func (m *mockIndex) Query(ctx context.Context, req request.Request) (result.Result, error) {
	m.calls.Add(1)
	if m.release != nil {
		<-m.release
	}
	if m.queryFn != nil {
		return m.queryFn(ctx, req)
	}
	return result.Result{}, nil
}

func newTestService(cache Cache, index Index) *Service {
	return New(cache, index, zap.NewNop())
}

func mustRequest(t *testing.T, text string, f filter.Filters, page, limit int) request.Request {
	t.Helper()
	r, err := request.New(text, f, "", page, limit)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return r
}

func bundyPage(page, limit, total int) result.Result {
	items := make([]domain.ContentSummary, limit)
	for i := range items {
		items[i] = domain.ContentSummary{ID: itemID(page, i), Title: "Ted Bundy Documentary"}
	}
	return result.New(items, total, page, limit)
}

func itemID(page, i int) string {
	return string(rune('a'+page)) + "-" + string(rune('0'+i%10))
}
