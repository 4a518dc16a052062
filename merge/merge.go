// Package merge deep-merges decoded JSON trees.
//
// A tree node is one of four kinds: absent (missing key or JSON null), a
// primitive, an array ([]any) or a record (map[string]any). Records are merged
// key by key; every other kind is atomic and taken whole from whichever side
// supplies it, with the base side taking priority.
package merge

// Kind is the structural kind of a decoded JSON value.
type Kind int

const (
	KindAbsent Kind = iota
	KindPrimitive
	KindArray
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindPrimitive:
		return "primitive"
	case KindArray:
		return "array"
	case KindRecord:
		return "record"
	}
	return "unknown"
}

// KindOf classifies v.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindAbsent
	case map[string]any:
		return KindRecord
	case []any:
		return KindArray
	default:
		return KindPrimitive
	}
}

// Merge combines base and fallback. When both are records the result is
// their key-wise merge; otherwise base wins unless it is absent. The result
// shares no maps or slices with either input.
func Merge(base, fallback any) any {
	b, f := KindOf(base), KindOf(fallback)
	if b == KindRecord && f == KindRecord {
		return Records(base.(map[string]any), fallback.(map[string]any))
	}
	if b != KindAbsent {
		return Clone(base)
	}
	return Clone(fallback)
}

// Records merges two records. A nil record behaves as an empty one. A key
// that either side holds is kept, with a nil value when neither side
// supplies one.
func Records(base, fallback map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(fallback))
	for k, v := range fallback {
		out[k] = Merge(base[k], v)
	}
	for k, v := range base {
		if _, done := out[k]; done {
			continue
		}
		out[k] = Merge(v, fallback[k])
	}
	return out
}

// Clone deep-copies a decoded JSON tree.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Clone(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	default:
		return v
	}
}
