package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/breardon2011/mitigationDB/internal/core"
)

// runStoreTests exercises the RuleStore contract against any implementation.
func runStoreTests(t *testing.T, newStore func(t *testing.T) core.RuleStore) {
	ctx := context.Background()

	sample := func(name string) core.Rule {
		return core.Rule{
			Name:     name,
			Category: "structure",
			Conditions: []core.Condition{
				{Fact: "attic_vent_has_screens", Operator: core.OpEqual, Value: "False"},
			},
			Explanation: "Unscreened vents admit embers.",
			Mitigations: map[string]any{"steps": []any{"Install 1/8 inch metal mesh screens"}},
		}
	}

	t.Run("Create And Get", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		rule := sample("vents")
		if err := s.Create(ctx, &rule); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if rule.ID == 0 {
			t.Fatal("Create() did not assign an ID")
		}
		if rule.EffectiveDate.IsZero() {
			t.Error("Create() did not default the effective date")
		}

		got, err := s.Get(ctx, rule.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Name != "vents" || got.Category != "structure" {
			t.Errorf("Get() = %+v", got)
		}
		if diff := cmp.Diff(rule.Conditions, got.Conditions); diff != "" {
			t.Errorf("conditions mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(rule.Mitigations, got.Mitigations); diff != "" {
			t.Errorf("mitigations mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		if _, err := s.Get(ctx, 4711); !errors.Is(err, core.ErrRuleNotFound) {
			t.Errorf("Get(missing) error = %v, want ErrRuleNotFound", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		rule := sample("vents")
		if err := s.Create(ctx, &rule); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		rule.Explanation = "updated"
		if err := s.Update(ctx, &rule); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		got, err := s.Get(ctx, rule.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Explanation != "updated" {
			t.Errorf("explanation = %q after update", got.Explanation)
		}

		missing := sample("ghost")
		missing.ID = 4711
		if err := s.Update(ctx, &missing); !errors.Is(err, core.ErrRuleNotFound) {
			t.Errorf("Update(missing) error = %v, want ErrRuleNotFound", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		rule := sample("vents")
		if err := s.Create(ctx, &rule); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := s.Delete(ctx, rule.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := s.Get(ctx, rule.ID); !errors.Is(err, core.ErrRuleNotFound) {
			t.Errorf("Get(deleted) error = %v, want ErrRuleNotFound", err)
		}
		if err := s.Delete(ctx, rule.ID); !errors.Is(err, core.ErrRuleNotFound) {
			t.Errorf("Delete(deleted) error = %v, want ErrRuleNotFound", err)
		}
	})

	t.Run("ListActive Window", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		now := time.Now().UTC().Truncate(time.Second)
		past := now.Add(-24 * time.Hour)
		future := now.Add(24 * time.Hour)

		active := sample("active")
		active.EffectiveDate = past
		retired := sample("retired")
		retired.EffectiveDate = past
		retired.RetiredDate = &now
		pending := sample("pending")
		pending.EffectiveDate = future

		for _, r := range []*core.Rule{&active, &retired, &pending} {
			if err := s.Create(ctx, r); err != nil {
				t.Fatalf("Create(%s) error = %v", r.Name, err)
			}
		}

		got, err := s.ListActive(ctx, now)
		if err != nil {
			t.Fatalf("ListActive() error = %v", err)
		}
		if len(got) != 1 || got[0].Name != "active" {
			t.Errorf("ListActive(now) = %v, want only 'active'", names(got))
		}

		// pinning as_of into the past resurrects the retired rule
		got, err = s.ListActive(ctx, now.Add(-time.Hour))
		if err != nil {
			t.Fatalf("ListActive() error = %v", err)
		}
		want := []string{"active", "retired"}
		if diff := cmp.Diff(want, names(got)); diff != "" {
			t.Errorf("ListActive(past) mismatch (-want +got):\n%s", diff)
		}

		all, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(all) != 3 {
			t.Errorf("List() = %v, want all three", names(all))
		}
	})

	t.Run("UpsertByName", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		created, err := s.UpsertByName(ctx, sample("vents"))
		if err != nil {
			t.Fatalf("UpsertByName() error = %v", err)
		}
		if !created {
			t.Error("first upsert should report created")
		}

		changed := sample("vents")
		changed.Explanation = "revised"
		created, err = s.UpsertByName(ctx, changed)
		if err != nil {
			t.Fatalf("UpsertByName() error = %v", err)
		}
		if created {
			t.Error("second upsert should report updated, not created")
		}

		all, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("List() = %v, want a single rule", names(all))
		}
		if all[0].Explanation != "revised" {
			t.Errorf("explanation = %q, want the revised text", all[0].Explanation)
		}
	})
}

func names(rules []core.Rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Name)
	}
	return out
}

func TestInMemoryRuleStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) core.RuleStore {
		return NewInMemoryRuleStore()
	})
}

func TestSQLiteRuleStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) core.RuleStore {
		s, err := NewSQLiteRuleStore(SQLiteOptions{
			Path:        filepath.Join(t.TempDir(), "rules.db"),
			BusyTimeout: time.Second,
		})
		if err != nil {
			t.Fatalf("NewSQLiteRuleStore() error = %v", err)
		}
		return s
	})
}
