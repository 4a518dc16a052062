package preset

import (
	"fmt"
	"math"
	"sync"

	"github.com/goccy/go-json"
	"github.com/jinzhu/copier"
	"github.com/sirupsen/logrus"

	"uma-config/codec"
	"uma-config/config"
	"uma-config/kv"
	"uma-config/merge"
)

// Manager owns the preset collection, its persisted copy and the active slot.
type Manager struct {
	mu       sync.RWMutex
	kv       kv.Store
	defaults config.Config
	log      logrus.FieldLogger
	onChange func(Storage)

	storage Storage
	active  int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for recovered storage problems.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Manager) { m.log = l }
}

// WithOnChange registers fn to receive a snapshot after every persisted change.
// fn runs without the manager's lock held.
func WithOnChange(fn func(Storage)) Option {
	return func(m *Manager) { m.onChange = fn }
}

// NewManager builds the store around kv and defaults and loads it. Returns an
// error only on storage I/O failures; unreadable data falls back to defaults.
func NewManager(store kv.Store, defaults config.Config, opts ...Option) (*Manager, error) {
	m := &Manager{
		kv:       store,
		defaults: config.Sanitize(defaults).Clone(),
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.WithField("component", "preset")
	if err := m.Load(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads the collection from storage, migrating every stored config
// against the defaults, and writes the result straight back. Missing or
// unreadable data is replaced by Capacity default presets.
func (m *Manager) Load() error {
	m.mu.Lock()
	raw, found, err := m.kv.Get(StorageKey)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("read presets: %w", err)
	}

	var next Storage
	migrated := false
	if found {
		next, migrated = m.migrateBlob(raw)
	}
	if !migrated {
		next = m.initial()
	}
	if err := m.persist(next); err != nil {
		m.mu.Unlock()
		return err
	}
	m.storage = next
	m.active = next.Index
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
	return nil
}

// Snapshot returns a deep copy of the collection with Index set to the
// active slot.
func (m *Manager) Snapshot() Storage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// Summaries lists every slot without its full configuration.
func (m *Manager) Summaries() ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Summary, len(m.storage.Presets))
	for i, p := range m.storage.Presets {
		if err := copier.Copy(&out[i], &p.Config); err != nil {
			return nil, fmt.Errorf("summarise preset %d: %w", i, err)
		}
		out[i].Index = i
		out[i].Name = p.Name
		out[i].Active = i == m.active
	}
	return out, nil
}

func (m *Manager) ActiveIndex() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// ActiveConfig returns a copy of the active slot's configuration.
func (m *Manager) ActiveConfig() config.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.slotConfigLocked(m.active)
}

// Defaults returns a copy of the compiled-in default configuration.
func (m *Manager) Defaults() config.Config {
	return m.defaults.Clone()
}

// SetActiveIndex switches the active slot without persisting anything and
// returns the configuration to load into the editor. An index outside the
// collection leaves the state unchanged and reports false.
func (m *Manager) SetActiveIndex(i int) (config.Config, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.storage.Presets) {
		return config.Config{}, false
	}
	m.active = i
	return m.slotConfigLocked(i), true
}

// Rename changes the name of slot i. Out-of-range indexes are ignored.
func (m *Manager) Rename(i int, name string) error {
	return m.update(func(s *Storage) bool {
		if i < 0 || i >= len(s.Presets) {
			return false
		}
		s.Presets[i].Name = name
		return true
	})
}

// Save stores a sanitized copy of cfg in slot i. Out-of-range indexes are
// ignored.
func (m *Manager) Save(i int, cfg config.Config) error {
	cfg = config.Sanitize(cfg).Clone()
	return m.update(func(s *Storage) bool {
		if i < 0 || i >= len(s.Presets) {
			return false
		}
		s.Presets[i].Config = cfg
		return true
	})
}

// SaveActive stores cfg in the active slot.
func (m *Manager) SaveActive(cfg config.Config) error {
	cfg = config.Sanitize(cfg).Clone()
	return m.update(func(s *Storage) bool {
		if s.Index < 0 || s.Index >= len(s.Presets) {
			return false
		}
		s.Presets[s.Index].Config = cfg
		return true
	})
}

// ResetActive replaces the active slot's configuration with the default and
// returns it.
func (m *Manager) ResetActive() (config.Config, error) {
	if err := m.SaveActive(m.defaults); err != nil {
		return config.Config{}, err
	}
	return m.Defaults(), nil
}

// Migrate backfills raw from the defaults and normalizes the result. Fields
// whose stored type cannot be decoded are logged and take the default's value.
func (m *Manager) Migrate(raw map[string]any) (config.Config, error) {
	def, err := config.ToMap(m.defaults)
	if err != nil {
		return config.Config{}, err
	}
	merged := merge.Records(raw, def)
	cfg, err := config.Normalize(merged)
	if err == nil {
		return cfg, nil
	}

	repaired, reset := config.Repair(merged, def)
	m.log.WithError(err).WithField("fields", reset).Warn("configuration has fields of the wrong type, they were reset to defaults")
	cfg, err = config.Normalize(repaired)
	if err != nil {
		m.log.WithError(err).Warn("configuration still has undecodable fields")
	}
	return cfg, nil
}

// Import decodes a portable token and migrates it. The store is not touched;
// callers save the result explicitly.
func (m *Manager) Import(token string) (config.Config, error) {
	raw, err := codec.DecodeRaw(token)
	if err != nil {
		return config.Config{}, err
	}
	return m.Migrate(raw)
}

// update applies fn to a copy of the collection and persists it. fn returns
// false to signal a no-op.
func (m *Manager) update(fn func(s *Storage) bool) error {
	m.mu.Lock()
	next := cloneStorage(m.storage)
	next.Index = m.active
	if !fn(&next) {
		m.mu.Unlock()
		return nil
	}
	if err := m.persist(next); err != nil {
		m.mu.Unlock()
		return err
	}
	m.storage = next
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
	return nil
}

func (m *Manager) persist(s Storage) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal presets: %w", err)
	}
	if err := m.kv.Set(StorageKey, string(data)); err != nil {
		return fmt.Errorf("write presets: %w", err)
	}
	return nil
}

func (m *Manager) notify(s Storage) {
	if m.onChange != nil {
		m.onChange(s)
	}
}

func (m *Manager) initial() Storage {
	presets := make([]Preset, Capacity)
	for i := range presets {
		presets[i] = Preset{Name: DefaultName(i), Config: m.defaults.Clone()}
	}
	return Storage{Index: 0, Presets: presets}
}

// migrateBlob parses a stored collection. It reports false when the blob is
// not usable at all.
func (m *Manager) migrateBlob(raw string) (Storage, bool) {
	var blob storedBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		m.log.WithError(err).Warn("stored presets are unreadable, starting from defaults")
		return Storage{}, false
	}

	presets := make([]Preset, 0, max(Capacity, len(blob.Presets)))
	for i, p := range blob.Presets {
		cfg, err := m.Migrate(p.Config)
		if err != nil {
			m.log.WithError(err).WithField("slot", i).Warn("cannot migrate stored preset, starting from defaults")
			return Storage{}, false
		}
		presets = append(presets, Preset{Name: storedName(p.Name, i), Config: cfg})
	}
	for i := len(presets); i < Capacity; i++ {
		presets = append(presets, Preset{Name: DefaultName(i), Config: m.defaults.Clone()})
	}
	return Storage{Index: storedIndex(blob.Index, len(presets)), Presets: presets}, true
}

func (m *Manager) slotConfigLocked(i int) config.Config {
	if i < 0 || i >= len(m.storage.Presets) {
		return m.defaults.Clone()
	}
	return m.storage.Presets[i].Config.Clone()
}

func (m *Manager) snapshotLocked() Storage {
	s := cloneStorage(m.storage)
	s.Index = m.active
	return s
}

func cloneStorage(s Storage) Storage {
	presets := make([]Preset, len(s.Presets))
	for i, p := range s.Presets {
		presets[i] = Preset{Name: p.Name, Config: p.Config.Clone()}
	}
	return Storage{Index: s.Index, Presets: presets}
}

func storedName(v any, i int) string {
	switch t := v.(type) {
	case nil:
		return DefaultName(i)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func storedIndex(v any, n int) int {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || f < 0 || f >= float64(n) {
		return 0
	}
	return int(f)
}
