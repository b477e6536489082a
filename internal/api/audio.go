package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"hihimaps/pkg/guide"
)

// AudioHandler handles narration control endpoints.
type AudioHandler struct {
	ctrl *guide.Controller
}

// NewAudioHandler creates an AudioHandler.
func NewAudioHandler(c *guide.Controller) *AudioHandler {
	return &AudioHandler{ctrl: c}
}

// AudioControlRequest is an audio control command. TrackID is required for
// the "play" action only.
type AudioControlRequest struct {
	Action  string `json:"action"` // "play", "pause", "resume", "stop"
	TrackID string `json:"track_id,omitempty"`
}

// AudioVolumeRequest is a volume change request.
type AudioVolumeRequest struct {
	Volume float64 `json:"volume"`
}

// HandleControl handles POST /api/audio/control
func (h *AudioHandler) HandleControl(w http.ResponseWriter, r *http.Request) {
	var req AudioControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	switch req.Action {
	case "play":
		if err := h.ctrl.PlayVoice(req.TrackID); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	case "pause":
		h.ctrl.PauseAudio()
	case "resume":
		h.ctrl.ResumeAudio()
	case "stop":
		h.ctrl.StopAudio()
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	slog.Debug("Audio control", "action", req.Action, "track", req.TrackID)
	writeJSON(w, map[string]string{"status": "ok"})
}

// HandleVolume handles POST /api/audio/volume
func (h *AudioHandler) HandleVolume(w http.ResponseWriter, r *http.Request) {
	var req AudioVolumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.ctrl.SetVolume(req.Volume)
	writeJSON(w, map[string]string{"status": "ok"})
}

// HandleStatus handles GET /api/audio/status
func (h *AudioHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.ctrl.Snapshot().Audio)
}
