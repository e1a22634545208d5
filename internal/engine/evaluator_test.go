package engine

import (
	"strings"
	"testing"

	"github.com/breardon2011/mitigationDB/internal/core"
)

func TestEvalCondition(t *testing.T) {
	obs := core.FromAny(map[string]any{
		"attic_vent_has_screens": "False",
		"roof_type":              "Class B",
		"wildfire_risk_category": "C",
		"stories":                2,
		"vegetation": []any{
			map[string]any{"type": "Tree", "distance_to_window": 90},
			map[string]any{"type": "Shrub", "distance_to_window": 500},
		},
	})

	tests := []struct {
		name      string
		condition core.Condition
		want      bool
		wantErr   bool
	}{
		{
			name:      "Equal - Match",
			condition: core.Condition{Fact: "attic_vent_has_screens", Operator: core.OpEqual, Value: "False"},
			want:      true,
		},
		{
			name:      "Equal - Mismatch",
			condition: core.Condition{Fact: "attic_vent_has_screens", Operator: core.OpEqual, Value: "True"},
			want:      false,
		},
		{
			name:      "NotEqual",
			condition: core.Condition{Fact: "roof_type", Operator: core.OpNotEqual, Value: "Class A"},
			want:      true,
		},
		{
			name:      "Less - Number",
			condition: core.Condition{Fact: "stories", Operator: core.OpLess, Value: 3},
			want:      true,
		},
		{
			name:      "GreaterOrEqual - Number",
			condition: core.Condition{Fact: "stories", Operator: core.OpGreaterOrEqual, Value: 2},
			want:      true,
		},
		{
			name:      "Less - String Ordering",
			condition: core.Condition{Fact: "wildfire_risk_category", Operator: core.OpLess, Value: "D"},
			want:      true,
		},
		{
			name:      "In - Member",
			condition: core.Condition{Fact: "wildfire_risk_category", Operator: core.OpIn, Value: []any{"C", "D"}},
			want:      true,
		},
		{
			name:      "In - Not Member",
			condition: core.Condition{Fact: "wildfire_risk_category", Operator: core.OpIn, Value: []any{"A", "B"}},
			want:      false,
		},
		{
			name:      "NotIn",
			condition: core.Condition{Fact: "roof_type", Operator: core.OpNotIn, Value: []any{"Class A"}},
			want:      true,
		},
		{
			name:      "Exists - Present",
			condition: core.Condition{Fact: "roof_type", Operator: core.OpExists},
			want:      true,
		},
		{
			name:      "Exists - Missing Path Still Fails",
			condition: core.Condition{Fact: "sprinkler_system", Operator: core.OpExists},
			want:      false,
		},
		{
			name:      "Missing Path Fails Any Operator",
			condition: core.Condition{Fact: "window_type", Operator: core.OpEqual, Value: "Double"},
			want:      false,
		},
		{
			name:      "Wildcard - Any Element Satisfies",
			condition: core.Condition{Fact: "vegetation[*].distance_to_window", Operator: core.OpLess, Value: 100},
			want:      true, // 90 < 100 even though 500 is not
		},
		{
			name:      "Wildcard - No Element Satisfies",
			condition: core.Condition{Fact: "vegetation[*].distance_to_window", Operator: core.OpLess, Value: 50},
			want:      false,
		},
		{
			name:      "Type Mismatch Does Not Satisfy",
			condition: core.Condition{Fact: "roof_type", Operator: core.OpLess, Value: 10},
			want:      false,
		},
		{
			name:      "Type Mismatch On Equal",
			condition: core.Condition{Fact: "stories", Operator: core.OpEqual, Value: "2"},
			want:      false,
		},
		{
			name:      "Unknown Operator",
			condition: core.Condition{Fact: "roof_type", Operator: "frobnicate", Value: "x"},
			wantErr:   true,
		},
		{
			name:      "Missing Fact",
			condition: core.Condition{Operator: core.OpEqual, Value: "x"},
			wantErr:   true,
		},
		{
			name:      "In With Non-List Operand",
			condition: core.Condition{Fact: "roof_type", Operator: core.OpIn, Value: "Class A"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason, err := evalCondition(obs, tt.condition)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("evalCondition() expected error, got passed=%v", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("evalCondition() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("evalCondition() = %v, want %v (reason: %s)", got, tt.want, reason)
			}
			if !got && reason == "" {
				t.Errorf("evalCondition() failed without a reason")
			}
		})
	}
}

func TestEvalRule_ShortCircuit(t *testing.T) {
	obs := core.FromAny(map[string]any{"a": 1, "b": 2})

	rule := core.Rule{
		ID:   1,
		Name: "short-circuit",
		Conditions: []core.Condition{
			{Fact: "missing", Operator: core.OpEqual, Value: 1},
			{Fact: "b", Operator: core.OpEqual, Value: 2},
		},
	}

	outcome := evalRule(obs, rule)
	if outcome.Status != core.OutcomeNotMatched {
		t.Fatalf("status = %s, want %s", outcome.Status, core.OutcomeNotMatched)
	}
	// the second condition must not have been evaluated
	if len(outcome.Conditions) != 1 {
		t.Errorf("evaluated %d conditions, want 1 (short-circuit)", len(outcome.Conditions))
	}
	if !strings.Contains(outcome.Conditions[0].Reason, "resolved to no values") {
		t.Errorf("unexpected failure reason: %q", outcome.Conditions[0].Reason)
	}
}

func TestEvalRule_NoConditionsIsSkipped(t *testing.T) {
	obs := core.FromAny(map[string]any{"a": 1})

	outcome := evalRule(obs, core.Rule{ID: 7, Name: "empty"})
	if outcome.Status != core.OutcomeSkipped {
		t.Fatalf("status = %s, want %s", outcome.Status, core.OutcomeSkipped)
	}
	if outcome.Reason == "" {
		t.Error("skipped outcome should carry a reason")
	}
}
