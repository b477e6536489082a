package api

import (
	"encoding/json"
	"net/http"

	"hihimaps/pkg/guide"
)

// PlacesHandler drives the place detail modal.
type PlacesHandler struct {
	ctrl *guide.Controller
}

// NewPlacesHandler creates a PlacesHandler.
func NewPlacesHandler(c *guide.Controller) *PlacesHandler {
	return &PlacesHandler{ctrl: c}
}

// PlaceSelectRequest identifies the tapped marker.
type PlaceSelectRequest struct {
	ID int64 `json:"id"`
}

// HandleSelect handles POST /api/places/select
func (h *PlacesHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req PlaceSelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.ctrl.SelectPlace(req.ID)
	writeJSON(w, map[string]string{"status": "ok"})
}

// HandleClose handles POST /api/places/close
func (h *PlacesHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	h.ctrl.CloseModal()
	writeJSON(w, map[string]string{"status": "ok"})
}
