package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"hihimaps/pkg/apisession"
	"hihimaps/pkg/search"
)

// sessionTTL evicts search sessions abandoned by closed tabs.
const sessionTTL = 15 * time.Minute

// SearchHandler gives every frontend tab its own debounced search assistant,
// keyed by an opaque session ID minted on first contact. Selections land in
// the shared store either way; only the suggestion list is per-session.
type SearchHandler struct {
	sessions *apisession.Store[search.Assistant]
}

// NewSearchHandler creates a SearchHandler. newAssistant builds a fresh
// assistant per session, bound to the shared store.
func NewSearchHandler(newAssistant func() *search.Assistant) *SearchHandler {
	return &SearchHandler{
		sessions: apisession.New(sessionTTL, newAssistant),
	}
}

// SearchQueryRequest carries a search box keystroke.
type SearchQueryRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Query     string `json:"q"`
}

// SearchSelectRequest commits a suggestion.
type SearchSelectRequest struct {
	SessionID string `json:"session_id"`
	PlaceID   int64  `json:"place_id"`
}

// HandleQuery handles POST /api/search/query. A missing session ID mints a
// new one; the client must echo it on subsequent calls.
func (h *SearchHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var req SearchQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	h.sessions.Get(req.SessionID).SetQuery(req.Query)

	writeJSON(w, map[string]string{"status": "ok", "session_id": req.SessionID})
}

// HandleResults handles GET /api/search/results?session_id=
func (h *SearchHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		http.Error(w, "session_id required", http.StatusBadRequest)
		return
	}

	a := h.sessions.Get(id)
	writeJSON(w, map[string]any{
		"query":     a.Query(),
		"searching": a.Searching(),
		"results":   a.Results(),
	})
}

// HandleSelect handles POST /api/search/select
func (h *SearchHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req SearchSelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	a := h.sessions.Get(req.SessionID)
	for _, res := range a.Results() {
		if res.PlaceID == req.PlaceID {
			a.Select(res)
			writeJSON(w, map[string]string{"status": "ok"})
			return
		}
	}
	http.Error(w, "unknown search result", http.StatusNotFound)
}
