package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/breardon2011/mitigationDB/internal/core"
)

func TestFactPaths(t *testing.T) {
	obs := core.FromAny(map[string]any{
		"roof_type": "Class A",
		"structure": map[string]any{
			"attic_vent_has_screens": "False",
		},
		"vegetation": []any{
			map[string]any{"type": "Tree", "distance_to_window": 90},
			map[string]any{"type": "Shrub"},
		},
	})

	want := []string{
		"roof_type",
		"structure.attic_vent_has_screens",
		"vegetation[*].distance_to_window",
		"vegetation[*].type",
	}
	if diff := cmp.Diff(want, FactPaths(obs)); diff != "" {
		t.Errorf("FactPaths() mismatch (-want +got):\n%s", diff)
	}
}
