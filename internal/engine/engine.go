package engine

import "github.com/breardon2011/mitigationDB/internal/core"

// Engine evaluates observations against an immutable rule snapshot.
// It holds no other state and is safe for concurrent use; callers must not
// mutate the rule slice while an evaluation is in flight.
type Engine struct {
	rules []core.Rule
}

// New creates a new Engine over the given rules. The caller is responsible
// for filtering the set to the rules it considers active.
func New(rules []core.Rule) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the snapshot this engine evaluates.
func (e *Engine) Rules() []core.Rule {
	return e.rules
}

// Evaluate returns one MatchResult per rule whose every condition passed,
// preserving the input rule order. Rules with unusable definitions are
// skipped silently here; use Trace to see them.
func (e *Engine) Evaluate(obs core.Value) []core.MatchResult {
	matches := make([]core.MatchResult, 0)
	for _, rule := range e.rules {
		if evalRule(obs, rule).Status == core.OutcomeMatched {
			matches = append(matches, matchResultFor(rule))
		}
	}
	return matches
}

// EvaluateDetailed returns the outcome of every rule in input order,
// including not-matched and skipped ones.
func (e *Engine) EvaluateDetailed(obs core.Value) []core.RuleOutcome {
	return e.Trace(obs).Outcomes
}

// Trace evaluates the observation and returns the outcome of every rule in
// input order, including not-matched and skipped ones, together with the
// aggregated matches. This is the explain/diagnostics surface.
func (e *Engine) Trace(obs core.Value) core.EvaluationTrace {
	trace := core.EvaluationTrace{
		Outcomes: make([]core.RuleOutcome, 0, len(e.rules)),
		Matches:  make([]core.MatchResult, 0),
	}
	for _, rule := range e.rules {
		outcome := evalRule(obs, rule)
		trace.Outcomes = append(trace.Outcomes, outcome)
		if outcome.Status == core.OutcomeMatched {
			trace.Matches = append(trace.Matches, matchResultFor(rule))
		}
	}
	return trace
}

func matchResultFor(rule core.Rule) core.MatchResult {
	return core.MatchResult{
		Vulnerability: rule.Name,
		Category:      rule.Category,
		MatchedRuleID: rule.ID,
		Mitigations:   rule.Mitigations,
	}
}
