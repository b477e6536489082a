package api

import (
	"encoding/json"
	"net/http"

	"hihimaps/pkg/guide"
	"hihimaps/pkg/model"
)

// LanguageHandler switches the UI language and lists the supported ones.
type LanguageHandler struct {
	ctrl *guide.Controller
}

// NewLanguageHandler creates a LanguageHandler.
func NewLanguageHandler(c *guide.Controller) *LanguageHandler {
	return &LanguageHandler{ctrl: c}
}

// LanguageRequest selects a language by code.
type LanguageRequest struct {
	Language string `json:"language"`
}

// HandleList handles GET /api/languages
func (h *LanguageHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, model.Languages())
}

// HandleSet handles POST /api/language
func (h *LanguageHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.ctrl.SetLanguage(model.Language(req.Language)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"status": "ok", "language": req.Language})
}
