package engine

import (
	"slices"

	"github.com/breardon2011/mitigationDB/internal/core"
)

// FactPaths enumerates every dotted path that resolves to a leaf value in
// the observation. Array positions are rendered with the wildcard marker,
// so the output doubles as a catalogue of valid condition facts.
func FactPaths(root core.Value) []string {
	seen := make(map[string]struct{})
	collectPaths(root, "", seen)

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

func collectPaths(v core.Value, prefix string, seen map[string]struct{}) {
	switch v.Kind() {
	case core.KindObject:
		for _, key := range objectKeys(v) {
			field, _ := v.Field(key)
			child := key
			if prefix != "" {
				child = prefix + "." + key
			}
			collectPaths(field, child, seen)
		}
	case core.KindArray:
		for _, item := range v.Items() {
			collectPaths(item, prefix+wildcardMarker, seen)
		}
	default:
		if prefix != "" {
			seen[prefix] = struct{}{}
		}
	}
}

func objectKeys(v core.Value) []string {
	keys := v.Keys()
	slices.Sort(keys)
	return keys
}
