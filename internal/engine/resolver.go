package engine

import (
	"strings"

	"github.com/breardon2011/mitigationDB/internal/core"
)

// wildcardMarker fans a path segment out over every element of an array,
// e.g. "vegetation[*].distance_to_window".
const wildcardMarker = "[*]"

// Resolve walks a dotted fact path through an observation and returns every
// value reachable by it, in traversal order. An empty result means the path
// does not exist anywhere in the observation; that is not an error.
//
// Each segment is read against a "level" of candidate nodes, starting with
// the root. Arrays at the current level are always iterated element-wise.
// Candidates that are not objects, or objects without the segment key,
// contribute nothing. When a segment carries the wildcard marker and the
// value read for it is an array, the array's elements are spliced into the
// next level individually instead of as one value.
func Resolve(root core.Value, path string) []core.Value {
	level := []core.Value{root}

	for _, segment := range strings.Split(path, ".") {
		key, wildcard := strings.CutSuffix(segment, wildcardMarker)

		var next []core.Value
		for _, item := range level {
			candidates := []core.Value{item}
			if item.Kind() == core.KindArray {
				candidates = item.Items()
			}

			for _, candidate := range candidates {
				val, ok := candidate.Field(key)
				if !ok {
					continue
				}
				if wildcard && val.Kind() == core.KindArray {
					next = append(next, val.Items()...)
				} else {
					next = append(next, val)
				}
			}
		}

		level = next
		if len(level) == 0 {
			break
		}
	}

	return level
}
