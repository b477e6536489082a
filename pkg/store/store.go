// Package store holds the in-memory client state: current location, language,
// selected search result, and the nearby place list. Nothing here is persisted;
// the process starts clean every run.
package store

import (
	"sync"
	"time"

	"hihimaps/pkg/model"
)

// EventKind identifies which part of the state changed.
type EventKind int

const (
	EventLocation EventKind = iota
	EventLanguage
	EventSelection
	EventPlaces
	EventNotice
)

// Event is delivered synchronously to subscribers on every mutation.
type Event struct {
	Kind EventKind
}

// Store is the single source of truth for UI-visible state. Setters notify all
// subscribers before returning, so dependents observe the new value before the
// next sensor tick.
type Store struct {
	mu       sync.RWMutex
	location *model.Location
	language model.Language
	selected *model.SelectedLocation
	places   []model.Place
	notice   string
	noticeAt time.Time

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// New creates a Store with the given initial language.
func New(lang model.Language) *Store {
	return &Store{
		language: lang,
		subs:     make(map[int]func(Event)),
	}
}

// Subscribe registers a callback invoked on every state change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// notify calls subscribers outside the state lock so they can read back.
func (s *Store) notify(kind EventKind) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(Event{Kind: kind})
	}
}

// SetCurrentLocation replaces the device position wholesale.
func (s *Store) SetCurrentLocation(loc model.Location) {
	s.mu.Lock()
	s.location = &loc
	s.mu.Unlock()
	s.notify(EventLocation)
}

// CurrentLocation returns the device position, if one is known yet.
func (s *Store) CurrentLocation() (model.Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.location == nil {
		return model.Location{}, false
	}
	return *s.location, true
}

// SetLanguage changes the global language.
func (s *Store) SetLanguage(lang model.Language) {
	s.mu.Lock()
	s.language = lang
	s.mu.Unlock()
	s.notify(EventLanguage)
}

// Language returns the active language.
func (s *Store) Language() model.Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// SetSelectedLocation normalizes and stores a picked search result.
// The previous selection is overwritten.
func (s *Store) SetSelectedLocation(r model.SearchResult) {
	sel := model.NewSelectedLocation(r)
	s.mu.Lock()
	s.selected = &sel
	s.mu.Unlock()
	s.notify(EventSelection)
}

// SelectedLocation returns the last picked search result, if any.
func (s *Store) SelectedLocation() (model.SelectedLocation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return model.SelectedLocation{}, false
	}
	return *s.selected, true
}

// ReplacePlaces swaps in a new nearby place list atomically. The UI never sees
// a mix of old and new entries.
func (s *Store) ReplacePlaces(places []model.Place) {
	cp := make([]model.Place, len(places))
	copy(cp, places)
	s.mu.Lock()
	s.places = cp
	s.mu.Unlock()
	s.notify(EventPlaces)
}

// Places returns a copy of the current nearby place list.
func (s *Store) Places() []model.Place {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]model.Place, len(s.places))
	copy(cp, s.places)
	return cp
}

// PushNotice records a transient user-facing message (e.g. a failed poll).
func (s *Store) PushNotice(msg string) {
	s.mu.Lock()
	s.notice = msg
	s.noticeAt = time.Now()
	s.mu.Unlock()
	s.notify(EventNotice)
}

// Notice returns the latest transient message and when it was posted.
func (s *Store) Notice() (string, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.notice == "" {
		return "", time.Time{}, false
	}
	return s.notice, s.noticeAt, true
}
