package preset

import (
	"errors"
	"fmt"

	"uma-config/config"
)

const (
	// StorageKey is the key the whole collection is persisted under.
	StorageKey = "uma-config"
	// Capacity is the number of preset slots.
	Capacity = 10
)

var ErrOutOfRange = errors.New("preset index out of range")

// Preset is one named configuration slot.
type Preset struct {
	Name   string        `json:"name"`
	Config config.Config `json:"config"`
}

// Storage is the full persistent state.
type Storage struct {
	Index   int      `json:"index"`
	Presets []Preset `json:"presets"`
}

// Summary is a light view of a slot for listings.
type Summary struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Active     bool   `json:"active"`
	ConfigName string `json:"config_name"`
	Trainee    string `json:"trainee"`
	Scenario   string `json:"scenario"`
}

// DefaultName is the name given to slot i when none is stored.
func DefaultName(i int) string {
	return fmt.Sprintf("Preset %d", i+1)
}

// storedBlob is the loosely typed shape read back from storage. Configs stay
// as raw trees so they can be migrated.
type storedBlob struct {
	Index   any            `json:"index"`
	Presets []storedPreset `json:"presets"`
}

type storedPreset struct {
	Name   any            `json:"name"`
	Config map[string]any `json:"config"`
}
