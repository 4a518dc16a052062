// Package kv provides the key-value persistence the preset store writes to.
package kv

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownBackend is returned by Open for an unrecognised backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Store is a string key-value store. Get reports ok=false for a missing key.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Open returns the named backend rooted at dir. The returned close function
// must be called on shutdown.
func Open(backend, dir string) (Store, func() error, error) {
	noop := func() error { return nil }
	switch backend {
	case BackendFile, "":
		s, err := NewFile(dir)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case BackendBadger:
		s, err := OpenBadger(dir)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case BackendMemory:
		return NewMemory(), noop, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

// Memory is an in-process Store, mainly for tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
