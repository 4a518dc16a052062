package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"uma-config/codec"
	"uma-config/config"
)

// Error kinds reported by /api/codec/decode.
const (
	KindCorrupted = "corrupted"
	KindChecksum  = "checksum"
	KindVersion   = "version"
	KindInvalid   = "invalid"
)

func decodeErrorKind(err error) string {
	switch {
	case errors.Is(err, codec.ErrChecksumMismatch):
		return KindChecksum
	case errors.Is(err, codec.ErrUnsupportedVersion):
		return KindVersion
	case errors.Is(err, codec.ErrCorrupted):
		return KindCorrupted
	}
	return KindInvalid
}

// encode returns the token for the request body's configuration, or for the
// active configuration when the body is empty.
func (h *handler) encode(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	var cfg config.Config
	if len(bytes.TrimSpace(body)) == 0 {
		cfg = h.presets.ActiveConfig()
	} else {
		var raw map[string]any
		if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
			writeError(w, http.StatusBadRequest, "invalid request body", "")
			return
		}
		if cfg, err = h.presets.Migrate(raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", "")
			return
		}
	}

	token, err := codec.Encode(cfg)
	if err != nil {
		h.log.WithError(err).Error("encode configuration")
		writeError(w, http.StatusInternalServerError, "failed to encode configuration", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token":    token,
		"filename": codec.FileName(cfg),
	})
}

// decode turns a token into a migrated configuration. Nothing is saved.
func (h *handler) decode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	cfg, err := h.presets.Import(req.Token)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), decodeErrorKind(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"config": cfg})
}
