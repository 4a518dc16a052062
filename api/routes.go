package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"uma-config/preset"
	"uma-config/watch"
)

func RegisterRoutes(pm *preset.Manager, hub *watch.Hub, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if log == nil {
		log = logrus.StandardLogger()
	}
	h := &handler{presets: pm, hub: hub, log: log.WithField("component", "api")}

	// Active configuration
	r.Get("/api/config", h.getConfig)
	r.Post("/api/config", h.saveConfig)
	r.Get("/api/config/default", h.getDefault)
	r.Post("/api/config/reset", h.resetConfig)
	r.Get("/api/config/export", h.exportConfig)

	// Presets API
	r.Get("/api/presets", h.getPresets)
	r.Get("/api/presets/summary", h.getSummaries)
	r.Post("/api/presets/active", h.setActive)
	r.Put("/api/presets/{index}", h.savePreset)
	r.Put("/api/presets/{index}/name", h.renamePreset)

	// WebSocket
	r.Get("/api/presets/ws", h.handleWS)

	// Share tokens
	r.Post("/api/codec/encode", h.encode)
	r.Post("/api/codec/decode", h.decode)

	return r
}

type handler struct {
	presets *preset.Manager
	hub     *watch.Hub
	log     logrus.FieldLogger
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, kind string) {
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}

// slotIndex parses the {index} URL parameter and checks it against the
// collection.
func (h *handler) slotIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid preset index", "")
		return 0, false
	}
	if i < 0 || i >= len(h.presets.Snapshot().Presets) {
		writeError(w, http.StatusNotFound, preset.ErrOutOfRange.Error(), "")
		return 0, false
	}
	return i, true
}
