package sdk

import "sync"

// pendingOp is a tentative watchlist mutation awaiting the backend's verdict.
type pendingOp int

const (
	opAdd pendingOp = iota
	opRemove
)

// Watchlist tracks content membership with optimistic updates. Add and
// Remove apply immediately to the view; the caller persists the mutation
// externally and reports back with Commit or Rollback. Rollback restores
// the committed state, so a failed mutation never leaves a phantom entry.
//
// Persistence itself is out of scope here; Watchlist only reconciles the
// optimistic view with whatever the caller's store reports.
type Watchlist struct {
	mu        sync.Mutex
	committed map[string]struct{}
	pending   map[string]pendingOp
}

// NewWatchlist creates a watchlist seeded with already-persisted ids.
func NewWatchlist(ids ...string) *Watchlist {
	w := &Watchlist{
		committed: make(map[string]struct{}, len(ids)),
		pending:   make(map[string]pendingOp),
	}
	for _, id := range ids {
		w.committed[id] = struct{}{}
	}
	return w
}

// Add tentatively adds an id. Reports whether the view changed.
func (w *Watchlist) Add(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.containsLocked(id) {
		return false
	}
	if _, committed := w.committed[id]; committed {
		// Was pending-removed; adding it back just cancels the removal.
		delete(w.pending, id)
		return true
	}
	w.pending[id] = opAdd
	return true
}

// Remove tentatively removes an id. Reports whether the view changed.
func (w *Watchlist) Remove(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.containsLocked(id) {
		return false
	}
	if _, committed := w.committed[id]; !committed {
		// Was pending-added; removing it just cancels the addition.
		delete(w.pending, id)
		return true
	}
	w.pending[id] = opRemove
	return true
}

// Commit marks the pending mutation for id as persisted.
func (w *Watchlist) Commit(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	op, ok := w.pending[id]
	if !ok {
		return
	}
	delete(w.pending, id)
	switch op {
	case opAdd:
		w.committed[id] = struct{}{}
	case opRemove:
		delete(w.committed, id)
	}
}

// Rollback discards the pending mutation for id, restoring the committed
// view.
func (w *Watchlist) Rollback(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.pending, id)
}

// Contains reports membership in the optimistic view.
func (w *Watchlist) Contains(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.containsLocked(id)
}

// Len returns the size of the optimistic view.
func (w *Watchlist) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := len(w.committed)
	for id, op := range w.pending {
		_, committed := w.committed[id]
		if op == opAdd && !committed {
			n++
		}
		if op == opRemove && committed {
			n--
		}
	}
	return n
}

// Pending reports whether id has an unresolved mutation.
func (w *Watchlist) Pending(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.pending[id]
	return ok
}

func (w *Watchlist) containsLocked(id string) bool {
	if op, ok := w.pending[id]; ok {
		return op == opAdd
	}
	_, ok := w.committed[id]
	return ok
}
