package poller

import (
	"context"
	"log/slog"
	"sync"

	"hihimaps/pkg/model"
	"hihimaps/pkg/store"
	"hihimaps/pkg/tracker"
)

// NearbySource fetches points of interest around a position.
type NearbySource interface {
	Nearby(ctx context.Context, loc model.Location, distanceMeters int) ([]model.Place, error)
}

// Refresher fetches the nearby list and swaps it into the store. Responses
// apply newest-wins: when overlapping refreshes resolve out of order, a
// response loses only to a response that was applied after it started.
type Refresher struct {
	src     NearbySource
	store   *store.Store
	tracker *tracker.Tracker
	radius  int

	mu      sync.Mutex
	nextSeq uint64
	applied uint64
}

// NewRefresher creates a Refresher that queries src within radiusMeters.
func NewRefresher(src NearbySource, st *store.Store, tr *tracker.Tracker, radiusMeters int) *Refresher {
	return &Refresher{
		src:     src,
		store:   st,
		tracker: tr,
		radius:  radiusMeters,
	}
}

// Refresh fetches nearby places for loc and replaces the store list on
// success. On failure the old list is kept and a notice is posted.
func (r *Refresher) Refresh(ctx context.Context, loc model.Location) {
	r.mu.Lock()
	r.nextSeq++
	seq := r.nextSeq
	r.mu.Unlock()

	places, err := r.src.Nearby(ctx, loc, r.radius)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("Nearby refresh failed, keeping previous list", "error", err)
			r.store.PushNotice("Could not refresh nearby places")
		}
		return
	}

	r.mu.Lock()
	if seq <= r.applied {
		r.mu.Unlock()
		if r.tracker != nil {
			r.tracker.TrackSuperseded("places")
		}
		slog.Debug("Stale nearby response dropped", "seq", seq)
		return
	}
	r.applied = seq
	r.mu.Unlock()

	r.store.ReplacePlaces(places)
	slog.Debug("Nearby places replaced", "count", len(places))
}
