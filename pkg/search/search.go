// Package search drives the location search box: debounced geocoding,
// stale-response suppression, and selection handoff to the store.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"hihimaps/pkg/config"
	"hihimaps/pkg/model"
	"hihimaps/pkg/store"
)

// Geocoder resolves a query string to candidate locations.
type Geocoder interface {
	Search(ctx context.Context, q string) ([]model.SearchResult, error)
}

// Assistant owns the search box state. Keystrokes arrive via SetQuery; a
// geocoding request fires only after the query has been stable for the
// debounce window. Responses apply newest-wins: a response is dropped if a
// response for a later request has already been applied.
type Assistant struct {
	geocoder Geocoder
	debounce time.Duration
	minLen   int
	store    *store.Store

	mu        sync.Mutex
	timer     *time.Timer
	cancel    context.CancelFunc
	nextSeq   uint64
	applied   uint64
	query     string
	results   []model.SearchResult
	searching bool
	onChange  func()
}

// New creates an Assistant bound to st.
func New(g Geocoder, st *store.Store, cfg *config.GeocodingConfig) *Assistant {
	debounce := time.Duration(cfg.Debounce)
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	minLen := cfg.MinQueryLen
	if minLen <= 0 {
		minLen = 2
	}
	return &Assistant{
		geocoder: g,
		debounce: debounce,
		minLen:   minLen,
		store:    st,
	}
}

// SetOnChange registers a callback invoked after every visible state change.
func (a *Assistant) SetOnChange(fn func()) {
	a.mu.Lock()
	a.onChange = fn
	a.mu.Unlock()
}

// SetQuery records the current search box content. Queries shorter than the
// minimum clear the result list without issuing a request.
func (a *Assistant) SetQuery(q string) {
	q = strings.TrimSpace(q)

	a.mu.Lock()
	a.query = q
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}

	if utf8.RuneCountInString(q) < a.minLen {
		a.invalidateLocked()
		a.results = nil
		a.searching = false
		a.mu.Unlock()
		a.changed()
		return
	}

	a.timer = time.AfterFunc(a.debounce, func() { a.run(q) })
	a.mu.Unlock()
}

// invalidateLocked marks every in-flight request stale and cancels it.
// Callers hold a.mu.
func (a *Assistant) invalidateLocked() {
	a.nextSeq++
	a.applied = a.nextSeq
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// run issues the geocoding request for q after the debounce window elapsed.
func (a *Assistant) run(q string) {
	a.mu.Lock()
	if q != a.query {
		// Query changed between timer fire and lock acquisition.
		a.mu.Unlock()
		return
	}
	if a.cancel != nil {
		a.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.nextSeq++
	seq := a.nextSeq
	a.searching = true
	a.mu.Unlock()
	a.changed()

	results, err := a.geocoder.Search(ctx, q)

	a.mu.Lock()
	if seq <= a.applied {
		a.mu.Unlock()
		slog.Debug("Stale search response dropped", "query", q)
		return
	}
	a.applied = seq
	a.searching = false
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("Search failed", "query", q, "error", err)
		}
		a.results = nil
	} else {
		a.results = results
	}
	a.mu.Unlock()
	a.changed()
}

// Results returns a copy of the current suggestion list.
func (a *Assistant) Results() []model.SearchResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	cp := make([]model.SearchResult, len(a.results))
	copy(cp, a.results)
	return cp
}

// Searching reports whether a request is in flight.
func (a *Assistant) Searching() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.searching
}

// Query returns the current search box content.
func (a *Assistant) Query() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.query
}

// Select commits a suggestion: the store gets the normalized selection and the
// search box resets. Any in-flight request becomes stale.
func (a *Assistant) Select(r model.SearchResult) {
	a.store.SetSelectedLocation(r)

	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.invalidateLocked()
	a.query = ""
	a.results = nil
	a.searching = false
	a.mu.Unlock()
	a.changed()
}

// Clear resets the search box without selecting anything.
func (a *Assistant) Clear() {
	a.SetQuery("")
}

// Close cancels any pending work.
func (a *Assistant) Close() {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.invalidateLocked()
	a.mu.Unlock()
}

func (a *Assistant) changed() {
	a.mu.Lock()
	fn := a.onChange
	a.mu.Unlock()
	if fn != nil {
		fn()
	}
}
