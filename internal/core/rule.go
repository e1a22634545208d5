package core

import "time"

// Operator defines how a resolved fact value is compared against the
// condition operand. The set is closed; anything else is rejected by
// validation and skipped by the engine.
type Operator string

const (
	OpEqual          Operator = "=="
	OpNotEqual       Operator = "!="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
	// OpIn means the resolved value is a member of the operand list.
	// e.g. `wildfire_risk_category in ["C", "D"]`
	OpIn Operator = "in"
	// OpNotIn is the negation of OpIn.
	OpNotIn Operator = "not_in"
	// OpExists passes as soon as the fact path resolves to anything at all.
	// The operand is ignored. It cannot assert absence: a path that resolves
	// to nothing fails its rule before any operator is consulted.
	OpExists Operator = "exists"
)

func (op Operator) IsValid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessOrEqual, OpGreater, OpGreaterOrEqual, OpIn, OpNotIn, OpExists:
		return true
	default:
		return false
	}
}

// Condition is a single check against an observation.
type Condition struct {
	// Fact is a dotted path into the observation. A segment may carry a
	// trailing "[*]" marker to fan out over every element of an array at
	// that position, e.g. "vegetation[*].distance_to_window".
	Fact string `yaml:"fact" json:"fact"`

	Operator Operator `yaml:"operator" json:"operator"`

	// Value is the comparison operand. Unused for OpExists; must be a list
	// for OpIn / OpNotIn.
	Value any `yaml:"value,omitempty" json:"value,omitempty"`
}

// Rule binds an ordered conjunction of conditions to remediation metadata.
// All conditions must pass for the rule to hit; they are evaluated in
// declared order with short-circuit on the first failure.
type Rule struct {
	ID int64 `yaml:"id,omitempty" json:"id,omitempty"`

	// Name identifies the vulnerability this rule detects.
	Name     string `yaml:"name" json:"name"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`

	Conditions []Condition `yaml:"conditions" json:"conditions"`

	// Params holds free-form rule parameters (thresholds etc.) for operators
	// authoring rules; the engine itself does not interpret them.
	Params map[string]any `yaml:"params,omitempty" json:"params,omitempty"`

	// Explanation describes why the rule flags a hazard.
	Explanation string `yaml:"explanation,omitempty" json:"explanation,omitempty"`

	// Mitigations is the remediation payload returned verbatim on a match.
	Mitigations map[string]any `yaml:"mitigations,omitempty" json:"mitigations,omitempty"`

	// Versioning: a rule is active at time T iff
	// EffectiveDate <= T and (RetiredDate is unset or RetiredDate > T).
	EffectiveDate time.Time  `yaml:"effective_date" json:"effective_date"`
	RetiredDate   *time.Time `yaml:"retired_date,omitempty" json:"retired_date,omitempty"`

	CreatedAt time.Time `yaml:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// ActiveAt reports whether the rule is within its effective window at t.
func (r *Rule) ActiveAt(t time.Time) bool {
	if r.EffectiveDate.After(t) {
		return false
	}
	return r.RetiredDate == nil || r.RetiredDate.After(t)
}

// MatchResult is emitted for every rule whose conditions all passed.
type MatchResult struct {
	Vulnerability string         `json:"vulnerability"`
	Category      string         `json:"category,omitempty"`
	MatchedRuleID int64          `json:"matched_rule_id"`
	Mitigations   map[string]any `json:"mitigations,omitempty"`
}
