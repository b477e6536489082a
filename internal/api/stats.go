package api

import (
	"net/http"

	"hihimaps/pkg/tracker"
)

// StatsHandler reports per-provider request statistics and client counts.
type StatsHandler struct {
	tracker  *tracker.Tracker
	searches *SearchHandler
	hub      *Hub
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(t *tracker.Tracker, sh *SearchHandler, hub *Hub) *StatsHandler {
	return &StatsHandler{tracker: t, searches: sh, hub: hub}
}

// ProviderStatsDTO is the wire form of one provider's counters.
type ProviderStatsDTO struct {
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	APISuccess  int64 `json:"api_success"`
	APIFailures int64 `json:"api_errors"`
	Superseded  int64 `json:"superseded"`
	HitRate     int64 `json:"hit_rate"`
}

// StatsResponse is the stats endpoint payload.
type StatsResponse struct {
	Providers      map[string]ProviderStatsDTO `json:"providers"`
	SearchSessions int                         `json:"search_sessions"`
	WSClients      int                         `json:"ws_clients"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Providers: make(map[string]ProviderStatsDTO),
	}
	if h.searches != nil {
		resp.SearchSessions = h.searches.sessions.Len()
	}
	if h.hub != nil {
		resp.WSClients = h.hub.ClientCount()
	}

	for provider, stats := range h.tracker.Snapshot() {
		totalCache := stats.CacheHits + stats.CacheMisses
		hitRate := int64(0)
		if totalCache > 0 {
			hitRate = (stats.CacheHits * 100) / totalCache
		}
		resp.Providers[provider] = ProviderStatsDTO{
			CacheHits:   stats.CacheHits,
			CacheMisses: stats.CacheMisses,
			APISuccess:  stats.APISuccess,
			APIFailures: stats.APIFailures,
			Superseded:  stats.Superseded,
			HitRate:     hitRate,
		}
	}

	writeJSON(w, resp)
}
