package core

// OutcomeStatus classifies how a single rule came out of an evaluation.
type OutcomeStatus string

const (
	// OutcomeMatched means every condition passed.
	OutcomeMatched OutcomeStatus = "matched"
	// OutcomeNotMatched means at least one condition failed.
	OutcomeNotMatched OutcomeStatus = "not_matched"
	// OutcomeSkipped means the rule definition itself was unusable (unknown
	// operator, missing fact, bad operand). Skipped rules never fail the
	// batch; they are surfaced here for whoever wants to log them.
	OutcomeSkipped OutcomeStatus = "skipped"
)

// ConditionResult records how one condition evaluated.
type ConditionResult struct {
	// Expression renders the condition, e.g. `roof_type == "Class A"`.
	Expression string `json:"expression"`
	Matched    bool   `json:"matched"`
	Reason     string `json:"reason,omitempty"`
}

// RuleOutcome is the full per-rule result. The public evaluation result
// aggregates only matched outcomes; traces and audits see all of them.
type RuleOutcome struct {
	RuleID   int64         `json:"rule_id"`
	RuleName string        `json:"rule_name"`
	Status   OutcomeStatus `json:"status"`

	// Reason is set for skipped outcomes.
	Reason string `json:"reason,omitempty"`

	// Conditions holds one entry per evaluated condition, in declared
	// order. Short-circuiting means a failed rule may list fewer entries
	// than the rule has conditions.
	Conditions []ConditionResult `json:"conditions,omitempty"`
}

// EvaluationTrace captures the detailed outcome of evaluating one
// observation against a ruleset, for the explain surface.
type EvaluationTrace struct {
	// CorrelationID is the unique identifier of the evaluation request.
	CorrelationID string `json:"correlation_id,omitempty"`

	// Outcomes contains the result of every rule, in input order.
	Outcomes []RuleOutcome `json:"outcomes"`

	// Matches repeats the matched rules in result form.
	Matches []MatchResult `json:"matches"`
}
