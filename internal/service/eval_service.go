package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/breardon2011/mitigationDB/internal/audit"
	"github.com/breardon2011/mitigationDB/internal/core"
	"github.com/breardon2011/mitigationDB/internal/engine"
)

// EvalService evaluates observations against the active ruleset and keeps
// the engine snapshot in sync with the store.
type EvalService struct {
	store   core.RuleStore
	manager *engine.Manager
	auditor core.Auditor
}

func NewEvalService(store core.RuleStore, manager *engine.Manager, auditor core.Auditor) *EvalService {
	return &EvalService{
		store:   store,
		manager: manager,
		auditor: auditor,
	}
}

// Evaluate runs the observation against the active rules. When req.AsOf is
// set, the ruleset active at that instant is loaded from the store instead
// of the current snapshot.
func (s *EvalService) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error) {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)

	if req.Observation == nil {
		return nil, httpError(http.StatusBadRequest, fmt.Errorf("observation is required"))
	}
	obs := core.FromAny(req.Observation)

	record := core.AuditRecord{
		ID:                     reqID,
		Time:                   time.Now(),
		Action:                 "evaluate",
		ObservationFingerprint: audit.FingerprintObservation(obs),
		AsOf:                   req.AsOf,
	}
	defer func() {
		if err := s.auditor.Log(record); err != nil {
			logger.Error().Err(err).Msg("failed to write audit record for evaluation")
		}
	}()

	eng, err := s.engineFor(ctx, req.AsOf)
	if err != nil {
		record.Error = err.Error()
		return nil, httpError(http.StatusInternalServerError, err)
	}

	trace := eng.Trace(obs)
	fillAuditRecord(&record, trace, len(eng.Rules()))

	logger.Debug().
		Int("rules", len(eng.Rules())).
		Int("matched", len(trace.Matches)).
		Msg("evaluation complete")

	return &EvaluateResponse{
		Matched:         len(trace.Matches),
		Vulnerabilities: trace.Matches,
	}, nil
}

// Explain runs the observation and returns the outcome of every rule,
// including the ones that did not match and the ones that were skipped.
func (s *EvalService) Explain(ctx context.Context, req ExplainRequest) (*core.EvaluationTrace, error) {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)

	if req.Observation == nil {
		return nil, httpError(http.StatusBadRequest, fmt.Errorf("observation is required"))
	}
	obs := core.FromAny(req.Observation)

	record := core.AuditRecord{
		ID:                     reqID,
		Time:                   time.Now(),
		Action:                 "explain",
		ObservationFingerprint: audit.FingerprintObservation(obs),
		AsOf:                   req.AsOf,
	}
	defer func() {
		if err := s.auditor.Log(record); err != nil {
			logger.Error().Err(err).Msg("failed to write audit record for explain")
		}
	}()

	eng, err := s.engineFor(ctx, req.AsOf)
	if err != nil {
		record.Error = err.Error()
		return nil, httpError(http.StatusInternalServerError, err)
	}

	trace := eng.Trace(obs)
	trace.CorrelationID = reqID
	fillAuditRecord(&record, trace, len(eng.Rules()))

	return &trace, nil
}

// Reflect parses the observation and enumerates its resolvable fact paths.
func (s *EvalService) Reflect(_ context.Context, observation map[string]any) (*ReflectResponse, error) {
	if observation == nil {
		return nil, httpError(http.StatusBadRequest, fmt.Errorf("observation is required"))
	}
	obs := core.FromAny(observation)
	return &ReflectResponse{
		Observation: obs.Interface(),
		Facts:       engine.FactPaths(obs),
	}, nil
}

// RefreshSnapshot reloads the currently active rules from the store into
// the engine snapshot. Called after rule mutations and by the sync task.
func (s *EvalService) RefreshSnapshot(ctx context.Context) error {
	rules, err := s.store.ListActive(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("loading active rules: %w", err)
	}
	s.manager.Update(rules)
	return nil
}

func (s *EvalService) engineFor(ctx context.Context, asOf *time.Time) (*engine.Engine, error) {
	if asOf == nil {
		return s.manager.Engine(), nil
	}
	rules, err := s.store.ListActive(ctx, *asOf)
	if err != nil {
		return nil, fmt.Errorf("loading rules active at %s: %w", asOf.Format(time.RFC3339), err)
	}
	return engine.New(rules), nil
}

func fillAuditRecord(record *core.AuditRecord, trace core.EvaluationTrace, total int) {
	record.RulesEvaluated = total
	record.Matched = len(trace.Matches)
	for _, outcome := range trace.Outcomes {
		switch outcome.Status {
		case core.OutcomeMatched:
			record.MatchedRules = append(record.MatchedRules, outcome.RuleName)
		case core.OutcomeSkipped:
			record.SkippedRules = append(record.SkippedRules,
				fmt.Sprintf("%s: %s", outcome.RuleName, outcome.Reason))
		}
	}
}
