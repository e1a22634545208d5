package service

import (
	"context"
	"fmt"
	"time"

	"github.com/breardon2011/mitigationDB/internal/logging"
	"github.com/breardon2011/mitigationDB/internal/tasks"
)

// RefreshTask returns the body of the periodic snapshot reload. It makes
// rules edited out-of-band (e.g. directly in the sqlite file) visible
// without waiting for an API mutation or a source sync, and it is also how
// rules crossing their effective or retired date enter and leave the
// snapshot.
func (s *EvalService) RefreshTask() tasks.TaskFunc {
	return func(ctx context.Context, logger logging.InternalLogger) error {
		if err := s.RefreshSnapshot(ctx); err != nil {
			return fmt.Errorf("refreshing snapshot: %w", err)
		}
		logger.Info("Snapshot refreshed with %d active rules", len(s.manager.Engine().Rules()))
		return nil
	}
}

// RetiredSweepTask returns the body of the catalog sweep. It reports how
// much of the stored catalog is retired or not yet effective, so operators
// notice when the active set drifts from what they expect.
func (s *EvalService) RetiredSweepTask() tasks.TaskFunc {
	return func(ctx context.Context, logger logging.InternalLogger) error {
		rules, err := s.store.List(ctx)
		if err != nil {
			return fmt.Errorf("listing rules: %w", err)
		}

		now := time.Now()
		var retired, upcoming int
		for i := range rules {
			switch {
			case rules[i].RetiredDate != nil && !rules[i].RetiredDate.After(now):
				retired++
			case rules[i].EffectiveDate.After(now):
				upcoming++
			}
		}
		logger.Info("Swept %d rules: %d retired, %d not yet effective",
			len(rules), retired, upcoming)
		return nil
	}
}
