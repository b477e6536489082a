// Package detail loads the full record for a selected place and tracks the
// lifecycle of the detail modal: loading, loaded, failed, closed.
package detail

import (
	"context"
	"log/slog"
	"sync"

	"hihimaps/pkg/model"
	"hihimaps/pkg/tracker"
)

// Source fetches a place record in a given language.
type Source interface {
	Detail(ctx context.Context, id int64, lang model.Language) (*model.PlaceDetail, error)
}

// Result is a loaded detail with the description resolved for the requested
// language. LanguageMatched is false when the place has no description in that
// language and the first available one was substituted.
type Result struct {
	Detail          *model.PlaceDetail
	Description     model.Description
	LanguageMatched bool
}

// State is a snapshot of the modal lifecycle.
type State struct {
	PlaceID int64
	Loading bool
	Result  *Result
	Err     error
}

// Fetcher loads place details. Selecting a new place cancels the previous
// fetch; a late response loses to any response applied after it started.
type Fetcher struct {
	src     Source
	tracker *tracker.Tracker

	mu       sync.Mutex
	cancel   context.CancelFunc
	nextSeq  uint64
	applied  uint64
	state    State
	onChange func()
}

// New creates a Fetcher.
func New(src Source, tr *tracker.Tracker) *Fetcher {
	return &Fetcher{src: src, tracker: tr}
}

// SetOnChange registers a callback invoked after every state change.
func (f *Fetcher) SetOnChange(fn func()) {
	f.mu.Lock()
	f.onChange = fn
	f.mu.Unlock()
}

// Fetch starts loading the detail for id in lang. Any in-flight fetch is
// cancelled. The call returns immediately; watch state via OnChange/Snapshot.
func (f *Fetcher) Fetch(id int64, lang model.Language) {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.nextSeq++
	seq := f.nextSeq
	f.state = State{PlaceID: id, Loading: true}
	f.mu.Unlock()
	f.changed()

	go f.run(ctx, seq, id, lang)
}

func (f *Fetcher) run(ctx context.Context, seq uint64, id int64, lang model.Language) {
	d, err := f.src.Detail(ctx, id, lang)

	f.mu.Lock()
	if seq <= f.applied {
		f.mu.Unlock()
		if f.tracker != nil {
			f.tracker.TrackSuperseded("places")
		}
		slog.Debug("Stale detail response dropped", "place", id)
		return
	}
	if ctx.Err() != nil {
		// Cancelled by a newer Fetch or by Clear; that caller owns the state.
		f.mu.Unlock()
		return
	}
	f.applied = seq

	if err != nil {
		f.state = State{PlaceID: id, Err: err}
		f.mu.Unlock()
		f.changed()
		slog.Warn("Detail fetch failed", "place", id, "error", err)
		return
	}

	desc, matched := d.DescriptionFor(lang)
	f.state = State{
		PlaceID: id,
		Result:  &Result{Detail: d, Description: desc, LanguageMatched: matched},
	}
	f.mu.Unlock()
	f.changed()
}

// Refetch reloads the current place in a new language. No-op when nothing is
// selected.
func (f *Fetcher) Refetch(lang model.Language) {
	f.mu.Lock()
	id := f.state.PlaceID
	f.mu.Unlock()
	if id == 0 {
		return
	}
	f.Fetch(id, lang)
}

// Clear resets the modal state and cancels any in-flight fetch. The loaded
// detail is discarded; reopening the place fetches again (served from cache).
func (f *Fetcher) Clear() {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.nextSeq++
	f.applied = f.nextSeq
	f.state = State{}
	f.mu.Unlock()
	f.changed()
}

// Snapshot returns the current modal state.
func (f *Fetcher) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Fetcher) changed() {
	f.mu.Lock()
	fn := f.onChange
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}
