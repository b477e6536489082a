package api

import (
	"net/http"

	"hihimaps/pkg/guide"
)

// StateHandler serves the full UI state snapshot.
type StateHandler struct {
	ctrl *guide.Controller
}

// NewStateHandler creates a StateHandler.
func NewStateHandler(c *guide.Controller) *StateHandler {
	return &StateHandler{ctrl: c}
}

// HandleState handles GET /api/state
func (h *StateHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.ctrl.Snapshot())
}
