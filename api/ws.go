package api

import (
	"net/http"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"uma-config/preset"
	"uma-config/watch"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Type string         `json:"type"`
	Data preset.Storage `json:"data"`
}

// PresetPublisher returns a preset change hook that broadcasts each snapshot
// on hub as a "presets" message.
func PresetPublisher(hub *watch.Hub, log logrus.FieldLogger) func(preset.Storage) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func(s preset.Storage) {
		msg, err := json.Marshal(wsMessage{Type: "presets", Data: s})
		if err != nil {
			log.WithError(err).Error("encode preset notification")
			return
		}
		hub.Publish(msg)
	}
}

func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("WS upgrade error")
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe()
	log := h.log.WithField("subscriber", sub.ID)
	log.Debug("WS subscriber connected")
	defer func() {
		_ = h.hub.Unsubscribe(sub.ID)
		log.Debug("WS subscriber disconnected")
	}()

	// gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	writeMsg := func(data []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(websocket.TextMessage, data)
	}

	// Goroutine: pump hub messages to the client. Exits when the
	// subscription is closed or a write fails.
	go func() {
		for data := range sub.Messages() {
			if err := writeMsg(data); err != nil {
				conn.Close()
				return
			}
		}
		conn.Close()
	}()

	// Main loop: the client sends nothing useful, reading only detects
	// disconnects and services control frames.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
