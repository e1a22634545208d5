package seed

import (
	"context"
	"testing"

	"github.com/breardon2011/mitigationDB/internal/core"
	"github.com/breardon2011/mitigationDB/internal/store"
)

func TestApply_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := store.NewInMemoryRuleStore()
	defer s.Close()

	rules := []core.Rule{
		{
			Name: "Ember-vulnerable vents",
			Conditions: []core.Condition{
				{Fact: "attic_vent_has_screens", Operator: core.OpEqual, Value: "False"},
			},
		},
		{
			Name: "Vegetation too close to windows",
			Conditions: []core.Condition{
				{Fact: "vegetation[*].distance_to_window", Operator: core.OpLess, Value: 30},
			},
		},
	}

	res, err := Apply(ctx, s, rules)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if res.Created != 2 || res.Updated != 0 {
		t.Errorf("first Apply() = %+v, want 2 created", res)
	}

	// second run must not duplicate
	rules[1].Conditions[0].Value = 100
	res, err = Apply(ctx, s, rules)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if res.Created != 0 || res.Updated != 2 {
		t.Errorf("second Apply() = %+v, want 2 updated", res)
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("store has %d rules, want 2", len(all))
	}
}

func TestApply_RejectsInvalid(t *testing.T) {
	s := store.NewInMemoryRuleStore()
	defer s.Close()

	_, err := Apply(context.Background(), s, []core.Rule{{Name: "empty"}})
	if err == nil {
		t.Fatal("Apply() should reject a rule without conditions")
	}
}
