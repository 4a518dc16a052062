package config

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

const (
	// TeamRaceRounds is the number of Unity Cup team race rounds.
	TeamRaceRounds = 4
	// MinTeamRacePreference and MaxTeamRacePreference bound each round's preference.
	MinTeamRacePreference = 1
	MaxTeamRacePreference = 5
)

// ValidSpiritStat reports whether s is a known spirit burst stat.
func ValidSpiritStat(s SpiritStat) bool {
	return slices.Contains(SpiritStats, s)
}

// Normalize reshapes a raw configuration tree and decodes it into a Config.
//
// Enumerated-constraint sections are coerced into shape first: a falsy unity
// section is dropped, prefer_team_race becomes exactly four preferences in
// range, and spirit_burst_position keeps only known stats. Everything else is
// decoded as-is; fields missing from raw stay at their zero value. A field
// whose stored type cannot be decoded is reported in the returned error while
// the rest of the Config is still filled in.
func Normalize(raw map[string]any) (Config, error) {
	shaped := make(map[string]any, len(raw))
	for k, v := range raw {
		shaped[k] = v
	}
	if unity, ok := normalizeUnityTree(raw["unity"]); ok {
		shaped["unity"] = unity
	} else {
		delete(shaped, "unity")
	}

	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(shaped); err != nil {
		return Sanitize(cfg), fmt.Errorf("decode config: %w", err)
	}
	return Sanitize(cfg), nil
}

// Repair returns a copy of raw in which every value that Normalize cannot
// decode is replaced by the value at the same path in fallback, or removed
// when fallback has none. Records present on both sides are repaired key by
// key, so one bad leaf does not reset its siblings. The dotted paths of the
// replaced values are returned in order.
func Repair(raw, fallback map[string]any) (map[string]any, []string) {
	var reset []string
	out := repairTree(raw, fallback, nil, &reset)
	slices.Sort(reset)
	return out, reset
}

func repairTree(tree, fallback map[string]any, path []string, reset *[]string) map[string]any {
	out := make(map[string]any, len(tree))
	for k, v := range tree {
		p := append(path[:len(path):len(path)], k)
		if decodable(p, v) {
			out[k] = v
			continue
		}
		sub, isRecord := v.(map[string]any)
		def, defIsRecord := fallback[k].(map[string]any)
		if isRecord && defIsRecord {
			out[k] = repairTree(sub, def, p, reset)
			continue
		}
		*reset = append(*reset, strings.Join(p, "."))
		if d, ok := fallback[k]; ok {
			out[k] = d
		}
	}
	return out
}

// decodable reports whether v decodes when placed alone at path.
func decodable(path []string, v any) bool {
	for i := len(path) - 1; i >= 0; i-- {
		v = map[string]any{path[i]: v}
	}
	_, err := Normalize(v.(map[string]any))
	return err == nil
}

// Sanitize applies the enumerated-constraint rules to an already typed Config.
// It never fails and Sanitize(Sanitize(c)) equals Sanitize(c).
func Sanitize(c Config) Config {
	if c.Unity == nil {
		return c
	}
	prefer := make([]int, TeamRaceRounds)
	for i := range prefer {
		v := MinTeamRacePreference
		if i < len(c.Unity.PreferTeamRace) {
			v = c.Unity.PreferTeamRace[i]
		}
		prefer[i] = min(MaxTeamRacePreference, max(MinTeamRacePreference, v))
	}
	spirit := make([]SpiritStat, 0, len(c.Unity.SpiritBurstPosition))
	for _, s := range c.Unity.SpiritBurstPosition {
		if ValidSpiritStat(s) {
			spirit = append(spirit, s)
		}
	}
	c.Unity = &Unity{PreferTeamRace: prefer, SpiritBurstPosition: spirit}
	return c
}

func normalizeUnityTree(v any) (map[string]any, bool) {
	if !truthy(v) {
		return nil, false
	}
	unity, _ := v.(map[string]any)

	rounds, _ := unity["prefer_team_race"].([]any)
	prefer := make([]any, TeamRaceRounds)
	for i := range prefer {
		n := float64(MinTeamRacePreference)
		if i < len(rounds) && rounds[i] != nil {
			if f, ok := number(rounds[i]); ok {
				n = f
			}
		}
		prefer[i] = math.Round(math.Min(MaxTeamRacePreference, math.Max(MinTeamRacePreference, n)))
	}

	stats, _ := unity["spirit_burst_position"].([]any)
	spirit := make([]any, 0, len(stats))
	for _, s := range stats {
		if name, ok := s.(string); ok && ValidSpiritStat(SpiritStat(name)) {
			spirit = append(spirit, name)
		}
	}

	return map[string]any{
		"prefer_team_race":      prefer,
		"spirit_burst_position": spirit,
	}, true
}

// number converts a decoded JSON scalar to a finite float.
func number(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case bool:
		if t {
			f = 1
		}
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, true
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	default:
		return true
	}
}
