// Package config defines the bot configuration schema, its compiled-in
// default and the normalizer that reconciles raw or legacy data with it.
package config

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
)

//go:embed default.json
var defaultJSON []byte

var loadDefault = sync.OnceValue(func() Config {
	var raw map[string]any
	if err := json.Unmarshal(defaultJSON, &raw); err != nil {
		panic(fmt.Sprintf("config: embedded default is invalid: %v", err))
	}
	cfg, err := Normalize(raw)
	if err != nil {
		panic(fmt.Sprintf("config: embedded default does not match schema: %v", err))
	}
	return cfg
})

// Default returns a fresh copy of the compiled-in default configuration.
func Default() Config {
	return loadDefault().Clone()
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	data, err := json.Marshal(c)
	if err != nil {
		// Config holds only JSON-safe values.
		panic(fmt.Sprintf("config: marshal: %v", err))
	}
	var out Config
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("config: unmarshal: %v", err))
	}
	return out
}

// ToMap renders c as a decoded JSON tree so it can be merged.
func ToMap(c Config) (map[string]any, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal config tree: %w", err)
	}
	return out, nil
}
