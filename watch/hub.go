// Package watch fans preset change messages out to connected editors.
package watch

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

const outBuffer = 16

var ErrNotFound = errors.New("subscriber not found")

// Subscriber is one connected listener.
type Subscriber struct {
	ID          string    `json:"id"`
	ConnectedAt time.Time `json:"connected_at"`

	out chan []byte
}

// Messages delivers published messages. It is closed on Unsubscribe or Close.
func (s *Subscriber) Messages() <-chan []byte {
	return s.out
}

// Hub keeps the latest message and the set of subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscriber
	last   []byte
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]*Subscriber)}
}

// Subscribe registers a new subscriber. The most recent message, if any, is
// queued for it straight away.
func (h *Hub) Subscribe() *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := &Subscriber{
		ID:          uuid.New().String(),
		ConnectedAt: time.Now(),
		out:         make(chan []byte, outBuffer),
	}
	if h.closed {
		close(s.out)
		return s
	}
	if h.last != nil {
		s.out <- h.last
	}
	h.subs[s.ID] = s
	return s
}

// Unsubscribe removes the subscriber and closes its channel.
func (h *Hub) Unsubscribe(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.subs[id]
	if !ok {
		return ErrNotFound
	}
	delete(h.subs, id)
	close(s.out)
	return nil
}

// Publish records msg as the latest message and offers it to every
// subscriber. A subscriber whose buffer is full misses it.
func (h *Hub) Publish(msg []byte) {
	data := make([]byte, len(msg))
	copy(data, msg)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.last = data
	for _, s := range h.subs {
		select {
		case s.out <- data:
		default:
		}
	}
}

// Last returns a copy of the latest message, or nil.
func (h *Hub) Last() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.last == nil {
		return nil
	}
	cp := make([]byte, len(h.last))
	copy(cp, h.last)
	return cp
}

func (h *Hub) List() []*Subscriber {
	h.mu.RLock()
	defer h.mu.RUnlock()

	list := make([]*Subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		list = append(list, s)
	}
	return list
}

// Close drops every subscriber. Later Publish calls are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, s := range h.subs {
		close(s.out)
		delete(h.subs, id)
	}
	h.closed = true
}
