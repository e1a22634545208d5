package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/breardon2011/mitigationDB/internal/audit"
	"github.com/breardon2011/mitigationDB/internal/core"
	"github.com/breardon2011/mitigationDB/internal/engine"
	"github.com/breardon2011/mitigationDB/internal/store"
)

// captureLogger records task log lines for assertions.
type captureLogger struct {
	messages []string
}

func (c *captureLogger) log(format string, args ...any) {
	c.messages = append(c.messages, fmt.Sprintf(format, args...))
}

func (c *captureLogger) Debug(format string, args ...any) { c.log(format, args...) }
func (c *captureLogger) Info(format string, args ...any)  { c.log(format, args...) }
func (c *captureLogger) Warn(format string, args ...any)  { c.log(format, args...) }
func (c *captureLogger) Error(format string, args ...any) { c.log(format, args...) }

func (c *captureLogger) contains(substr string) bool {
	for _, m := range c.messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestRefreshTask(t *testing.T) {
	ctx := context.Background()

	s := store.NewInMemoryRuleStore()
	t.Cleanup(func() { _ = s.Close() })

	rule := core.Rule{
		Name:          "Ember-vulnerable vents",
		EffectiveDate: time.Now().Add(-time.Hour),
		Conditions: []core.Condition{
			{Fact: "attic_vent_has_screens", Operator: core.OpEqual, Value: "False"},
		},
	}
	if err := s.Create(ctx, &rule); err != nil {
		t.Fatalf("creating rule: %v", err)
	}

	// the snapshot starts stale on purpose
	manager := engine.NewManager(nil)
	svc := NewEvalService(s, manager, audit.NewNoopAuditor())

	task := svc.RefreshTask()
	if err := task(ctx, &captureLogger{}); err != nil {
		t.Fatalf("refresh task: %v", err)
	}
	if got := len(manager.Engine().Rules()); got != 1 {
		t.Fatalf("snapshot has %d rules after refresh, want 1", got)
	}

	// retire the rule out-of-band and refresh again
	retired := time.Now().Add(-time.Minute)
	rule.RetiredDate = &retired
	if err := s.Update(ctx, &rule); err != nil {
		t.Fatalf("retiring rule: %v", err)
	}
	if err := task(ctx, &captureLogger{}); err != nil {
		t.Fatalf("refresh task after retirement: %v", err)
	}
	if got := len(manager.Engine().Rules()); got != 0 {
		t.Fatalf("snapshot has %d rules after retirement, want 0", got)
	}
}

func TestRetiredSweepTask(t *testing.T) {
	ctx := context.Background()

	s := store.NewInMemoryRuleStore()
	t.Cleanup(func() { _ = s.Close() })

	now := time.Now()
	past := now.Add(-time.Hour)
	rules := []core.Rule{
		{
			Name:          "active",
			EffectiveDate: now.Add(-24 * time.Hour),
			Conditions:    []core.Condition{{Fact: "roof_type", Operator: core.OpExists}},
		},
		{
			Name:          "retired",
			EffectiveDate: now.Add(-48 * time.Hour),
			RetiredDate:   &past,
			Conditions:    []core.Condition{{Fact: "roof_type", Operator: core.OpExists}},
		},
		{
			Name:          "upcoming",
			EffectiveDate: now.Add(24 * time.Hour),
			Conditions:    []core.Condition{{Fact: "roof_type", Operator: core.OpExists}},
		},
	}
	for i := range rules {
		if err := s.Create(ctx, &rules[i]); err != nil {
			t.Fatalf("creating rule %q: %v", rules[i].Name, err)
		}
	}

	svc := NewEvalService(s, engine.NewManager(nil), audit.NewNoopAuditor())

	logger := &captureLogger{}
	if err := svc.RetiredSweepTask()(ctx, logger); err != nil {
		t.Fatalf("sweep task: %v", err)
	}
	if !logger.contains("1 retired") {
		t.Errorf("sweep did not report the retired rule, logs: %v", logger.messages)
	}
	if !logger.contains("1 not yet effective") {
		t.Errorf("sweep did not report the upcoming rule, logs: %v", logger.messages)
	}
}
