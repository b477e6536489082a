// Package api exposes the guide client to the frontend: REST endpoints for
// commands, a websocket push channel for state, and the embedded SPA.
package api

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"hihimaps/internal/ui"
	"hihimaps/pkg/version"
)

// NewServer creates and configures the HTTP server.
func NewServer(addr string, state *StateHandler, placesH *PlacesHandler, audioH *AudioHandler, langH *LanguageHandler, searchH *SearchHandler, stats *StatsHandler, hub *Hub, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)

	mux.HandleFunc("GET /api/state", state.HandleState)
	mux.HandleFunc("GET /api/state/ws", hub.HandleWS)

	mux.HandleFunc("POST /api/places/select", placesH.HandleSelect)
	mux.HandleFunc("POST /api/places/close", placesH.HandleClose)

	mux.HandleFunc("POST /api/audio/control", audioH.HandleControl)
	mux.HandleFunc("POST /api/audio/volume", audioH.HandleVolume)
	mux.HandleFunc("GET /api/audio/status", audioH.HandleStatus)

	mux.HandleFunc("GET /api/languages", langH.HandleList)
	mux.HandleFunc("POST /api/language", langH.HandleSet)

	mux.HandleFunc("POST /api/search/query", searchH.HandleQuery)
	mux.HandleFunc("GET /api/search/results", searchH.HandleResults)
	mux.HandleFunc("POST /api/search/select", searchH.HandleSelect)

	mux.Handle("GET /api/stats", stats)

	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Shut down after the response flushes.
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	// Static frontend (SPA) from the embedded dist tree.
	distFS, err := fs.Sub(ui.DistFS, "dist")
	if err != nil {
		panic(fmt.Sprintf("Failed to subtree dist from embedded assets: %v", err))
	}
	mux.Handle("/", http.FileServer(&spaFileSystem{root: http.FS(distFS)}))

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
