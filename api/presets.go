package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"uma-config/preset"
)

func (h *handler) getPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.presets.Snapshot())
}

func (h *handler) getSummaries(w http.ResponseWriter, r *http.Request) {
	sums, err := h.presets.Summaries()
	if err != nil {
		h.log.WithError(err).Error("summarise presets")
		writeError(w, http.StatusInternalServerError, "failed to list presets", "")
		return
	}
	writeJSON(w, http.StatusOK, sums)
}

func (h *handler) setActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index *int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	cfg, ok := h.presets.SetActiveIndex(*req.Index)
	if !ok {
		writeError(w, http.StatusNotFound, preset.ErrOutOfRange.Error(), "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"index":  *req.Index,
		"config": cfg,
	})
}

func (h *handler) savePreset(w http.ResponseWriter, r *http.Request) {
	i, ok := h.slotIndex(w, r)
	if !ok {
		return
	}
	cfg, err := h.readConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if err := h.presets.Save(i, cfg); err != nil {
		h.log.WithError(err).WithField("slot", i).Error("save preset")
		writeError(w, http.StatusInternalServerError, "failed to save preset", "")
		return
	}
	writeJSON(w, http.StatusOK, h.presets.Snapshot().Presets[i])
}

func (h *handler) renamePreset(w http.ResponseWriter, r *http.Request) {
	i, ok := h.slotIndex(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if err := h.presets.Rename(i, req.Name); err != nil {
		h.log.WithError(err).WithField("slot", i).Error("rename preset")
		writeError(w, http.StatusInternalServerError, "failed to rename preset", "")
		return
	}
	sums, err := h.presets.Summaries()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list presets", "")
		return
	}
	writeJSON(w, http.StatusOK, sums[i])
}
