package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"uma-config/codec"
	"uma-config/config"
)

var errEmptyBody = errors.New("empty body")

func (h *handler) getConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.presets.ActiveConfig())
}

func (h *handler) getDefault(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.presets.Defaults())
}

func (h *handler) saveConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.readConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if err := h.presets.SaveActive(cfg); err != nil {
		h.log.WithError(err).Error("save active preset")
		writeError(w, http.StatusInternalServerError, "failed to save configuration", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   h.presets.ActiveConfig(),
	})
}

func (h *handler) resetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.presets.ResetActive()
	if err != nil {
		h.log.WithError(err).Error("reset active preset")
		writeError(w, http.StatusInternalServerError, "failed to reset configuration", "")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *handler) exportConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.presets.ActiveConfig()
	token, err := codec.Encode(cfg)
	if err != nil {
		h.log.WithError(err).Error("encode active preset")
		writeError(w, http.StatusInternalServerError, "failed to encode configuration", "")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+codec.FileName(cfg)+`"`)
	_, _ = io.WriteString(w, token)
}

// readConfig decodes a configuration body loosely and migrates it, so that
// partial bodies are backfilled from the defaults.
func (h *handler) readConfig(r *http.Request) (config.Config, error) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return config.Config{}, errEmptyBody
		}
		return config.Config{}, err
	}
	if raw == nil {
		return config.Config{}, errEmptyBody
	}
	return h.presets.Migrate(raw)
}
