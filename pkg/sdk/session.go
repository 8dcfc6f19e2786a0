package sdk

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the session's position in the query lifecycle.
type State string

// Session states.
const (
	// StateIdle means no query is active or pending.
	StateIdle State = "idle"
	// StateDebouncing means an edit is waiting out the quiet period.
	StateDebouncing State = "debouncing"
	// StateFetching means a request is on the wire.
	StateFetching State = "fetching"
	// StateSettled means the latest request resolved successfully.
	StateSettled State = "settled"
	// StateFailed means the latest request failed. Accumulated items survive.
	StateFailed State = "failed"
)

const (
	defaultDebounceWindow = 300 * time.Millisecond
	defaultMinQueryLength = 2
	defaultPageSize       = 20
)

// Snapshot is a point-in-time view of session state. Items must be treated
// as read-only.
type Snapshot struct {
	State         State
	Query         string
	Items         []Content
	Total         int
	Page          int
	HasNext       bool
	IsLoading     bool
	IsLoadingMore bool
	Err           error
}

// Session owns one interactive search: query text, filter state, and the
// pages accumulated so far. Edits are debounced; a response is applied only
// when it belongs to the most recently issued request, so state never shows
// an interleaving of an old query and a new one.
//
// All methods are safe for concurrent use.
type Session struct {
	id       string
	searcher Searcher
	debounce time.Duration
	minLen   int
	pageSize int
	sort     string
	onChange func(Snapshot)

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	timer     *time.Timer
	text      string
	filters   map[string][]string
	items     []Content
	page      int
	total     int
	hasNext   bool
	state     State
	more      bool
	err       error
	lastReqID uint64
}

// NewSession creates a session over a Searcher.
func NewSession(searcher Searcher, opts ...SessionOption) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:       uuid.NewString(),
		searcher: searcher,
		debounce: defaultDebounceWindow,
		minLen:   defaultMinQueryLength,
		pageSize: defaultPageSize,
		ctx:      ctx,
		cancel:   cancel,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SetQuery replaces the query text. The search fires after the debounce
// window with no further edits; text below the minimum length settles
// immediately to an empty result with no call issued.
func (s *Session) SetQuery(text string) {
	s.mu.Lock()
	s.text = text
	s.editLocked()
}

// SetFilters replaces the filter state and restarts the debounce window.
func (s *Session) SetFilters(filters map[string][]string) {
	s.mu.Lock()
	s.filters = cloneFilters(filters)
	s.editLocked()
}

// editLocked restarts the edit cycle. Caller holds the lock; editLocked
// releases it.
func (s *Session) editLocked() {
	s.stopTimerLocked()
	s.lastReqID++ // superseded responses are discarded from here on
	id := s.lastReqID

	if len(strings.TrimSpace(s.text)) < s.minLen {
		s.resetResultsLocked()
		s.state = StateIdle
		s.notifyLocked()
		return
	}

	s.state = StateDebouncing
	if s.debounce == 0 {
		s.notifyLocked()
		go s.fetch(id, 1, false)
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.fetch(id, 1, false)
	})
	s.notifyLocked()
}

// LoadMore requests the next page. It reports whether a request was issued:
// false when there is no next page or a fetch is already in flight.
func (s *Session) LoadMore() bool {
	s.mu.Lock()
	if !s.hasNext || s.state == StateFetching || s.state == StateDebouncing {
		s.mu.Unlock()
		return false
	}
	s.lastReqID++
	id := s.lastReqID
	page := s.page + 1
	s.state = StateFetching
	s.more = true
	s.notifyLocked()

	go s.fetch(id, page, true)
	return true
}

// Retry reissues the last failed request. No-op unless the session is in the
// failed state.
func (s *Session) Retry() bool {
	s.mu.Lock()
	if s.state != StateFailed {
		s.mu.Unlock()
		return false
	}
	s.lastReqID++
	id := s.lastReqID
	page, more := 1, false
	if s.more {
		page, more = s.page+1, true
	}
	s.state = StateFetching
	s.notifyLocked()

	go s.fetch(id, page, more)
	return true
}

// Clear resets the session: empty text and items, pending debounce cancelled,
// any in-flight response discarded on arrival.
func (s *Session) Clear() {
	s.mu.Lock()
	s.stopTimerLocked()
	s.lastReqID++
	s.text = ""
	s.filters = nil
	s.resetResultsLocked()
	s.state = StateIdle
	s.notifyLocked()
}

// Close releases the session. In-flight calls are cancelled.
func (s *Session) Close() {
	s.cancel()
	s.mu.Lock()
	s.stopTimerLocked()
	s.lastReqID++
	s.mu.Unlock()
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// fetch issues one search call and applies the response if it is still the
// latest request.
func (s *Session) fetch(id uint64, page int, more bool) {
	s.mu.Lock()
	if id != s.lastReqID {
		s.mu.Unlock()
		return
	}
	s.state = StateFetching
	s.more = more
	q := Query{
		Text:    s.text,
		Filters: cloneFilters(s.filters),
		Sort:    s.sort,
		Page:    page,
		Limit:   s.pageSize,
	}
	s.notifyLocked()

	res, err := s.searcher.Search(s.ctx, q)

	s.mu.Lock()
	if id != s.lastReqID {
		// A newer request superseded this one while it was on the wire.
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.state = StateFailed
		s.err = err
		s.notifyLocked()
		return
	}

	if more {
		s.items = append(s.items, res.Items...)
	} else {
		s.items = append([]Content(nil), res.Items...)
	}
	s.page = res.Page
	s.total = res.Total
	s.hasNext = res.HasNext
	s.state = StateSettled
	s.err = nil
	s.notifyLocked()
}

func (s *Session) resetResultsLocked() {
	s.items = nil
	s.page = 0
	s.total = 0
	s.hasNext = false
	s.more = false
	s.err = nil
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		State:         s.state,
		Query:         s.text,
		Items:         s.items,
		Total:         s.total,
		Page:          s.page,
		HasNext:       s.hasNext,
		IsLoading:     s.state == StateFetching && !s.more,
		IsLoadingMore: s.state == StateFetching && s.more,
		Err:           s.err,
	}
}

// notifyLocked emits a snapshot to the change callback and releases the lock.
func (s *Session) notifyLocked() {
	snap := s.snapshotLocked()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

func cloneFilters(f map[string][]string) map[string][]string {
	if f == nil {
		return nil
	}
	out := make(map[string][]string, len(f))
	for k, v := range f {
		out[k] = append([]string(nil), v...)
	}
	return out
}
