package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/breardon2011/mitigationDB/internal/core"
)

func TestResolve(t *testing.T) {
	obs := core.FromAny(map[string]any{
		"roof_type": "Class A",
		"attic": map[string]any{
			"vent_has_screens": "False",
			"insulation":       map[string]any{"rating": 30},
		},
		"vegetation": []any{
			map[string]any{"type": "Tree", "distance_to_window": 100},
			map[string]any{"type": "Shrub", "distance_to_window": 5},
			map[string]any{"type": "Grass"},
		},
		"zones": []any{
			map[string]any{"sensors": []any{
				map[string]any{"id": "a"},
				map[string]any{"id": "b"},
			}},
			map[string]any{"sensors": []any{
				map[string]any{"id": "c"},
			}},
		},
		"mixed": []any{
			"just a string",
			map[string]any{"score": 7},
		},
	})

	tests := []struct {
		name string
		path string
		want []any
	}{
		{
			name: "Top Level Scalar",
			path: "roof_type",
			want: []any{"Class A"},
		},
		{
			name: "Nested Object",
			path: "attic.vent_has_screens",
			want: []any{"False"},
		},
		{
			name: "Deeply Nested",
			path: "attic.insulation.rating",
			want: []any{float64(30)},
		},
		{
			name: "Wildcard Fan Out",
			path: "vegetation[*].distance_to_window",
			want: []any{float64(100), float64(5)}, // Grass entry lacks the key
		},
		{
			name: "Wildcard Splices Array Read",
			path: "zones[*].sensors[*].id",
			want: []any{"a", "b", "c"},
		},
		{
			name: "Array Without Wildcard Still Fans Out At Next Segment",
			path: "vegetation.type",
			want: []any{"Tree", "Shrub", "Grass"},
		},
		{
			name: "Missing Key Yields Empty",
			path: "chimney_spark_arrestor",
			want: []any{},
		},
		{
			name: "Missing Nested Key Yields Empty",
			path: "attic.missing.rating",
			want: []any{},
		},
		{
			name: "Non Object Candidates Are Dropped",
			path: "mixed.score",
			want: []any{float64(7)},
		},
		{
			name: "Scalar Mid Path Yields Empty",
			path: "roof_type.material",
			want: []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved := Resolve(obs, tt.path)

			got := make([]any, 0, len(resolved))
			for _, v := range resolved {
				got = append(got, v.Interface())
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve(%q) mismatch (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}

func TestResolve_NonObjectRoot(t *testing.T) {
	// a fundamentally non-traversable root resolves to nothing, no panic
	for _, root := range []core.Value{core.String("scalar"), core.Number(1), core.Null} {
		if got := Resolve(root, "anything"); len(got) != 0 {
			t.Errorf("Resolve on %s root = %v, want empty", root.Kind(), got)
		}
	}
}

func TestResolve_OrderFollowsTraversal(t *testing.T) {
	obs := core.FromAny(map[string]any{
		"readings": []any{
			map[string]any{"v": 3},
			map[string]any{"v": 1},
			map[string]any{"v": 2},
		},
	})

	resolved := Resolve(obs, "readings[*].v")
	got := make([]float64, 0, len(resolved))
	for _, v := range resolved {
		got = append(got, v.NumberVal())
	}

	want := []float64{3, 1, 2} // no sorting, emission follows the array
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}
