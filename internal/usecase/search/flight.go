package search

import (
	"context"
	"sync"

	"github.com/crimedex/crimedex/internal/domain/search/result"
)

// call is one in-flight index query. It exists from the first miss for a key
// until the query resolves; every concurrent caller for the same key waits on
// done and then reads the same res/err.
type call struct {
	done chan struct{}
	res  result.Result
	err  error
}

// flightGroup deduplicates concurrent work per key. Locking covers only the
// registry map, so calls for different keys proceed independently.
type flightGroup struct {
	mu    sync.Mutex
	calls map[string]*call
}

func newFlightGroup() *flightGroup {
	return &flightGroup{calls: make(map[string]*call)}
}

// Do executes fn once per key among concurrent callers. The first caller
// (the leader) runs fn; every other caller suspends until the leader
// finishes and then shares its result or error. shared reports whether this
// caller attached to someone else's call.
//
// A waiter whose context ends stops waiting and returns ctx.Err(); the
// leader's fn keeps running and its entry is still cleaned up.
func (g *flightGroup) Do(
	ctx context.Context, key string, fn func() (result.Result, error),
) (res result.Result, shared bool, err error) {
	g.mu.Lock()
	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		select {
		case <-c.done:
			return c.res, true, c.err
		case <-ctx.Done():
			return result.Result{}, true, ctx.Err()
		}
	}

	c := &call{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	c.res, c.err = fn()

	// Remove the entry before waking waiters: a new request arriving after
	// resolution must start a fresh flight, not attach to a finished one.
	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()
	close(c.done)

	return c.res, false, c.err
}

// Len reports the number of in-flight keys. Test helper.
func (g *flightGroup) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}
