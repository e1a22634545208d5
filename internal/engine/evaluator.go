package engine

import (
	"fmt"

	"github.com/breardon2011/mitigationDB/internal/core"
)

// evalCondition checks a single condition against the observation.
// Returns (passed, human reason) for a regular outcome, or an error when
// the condition definition itself is unusable (which skips the rule).
func evalCondition(obs core.Value, cond core.Condition) (bool, string, error) {
	if cond.Fact == "" {
		return false, "", fmt.Errorf("condition is missing its fact path")
	}
	if !cond.Operator.IsValid() {
		return false, "", fmt.Errorf("unknown operator '%s'", cond.Operator)
	}

	resolved := Resolve(obs, cond.Fact)

	// A path that resolves to nothing fails the rule no matter the operator.
	// This is deliberate: `exists` can only assert presence, never absence.
	if len(resolved) == 0 {
		return false, fmt.Sprintf("path '%s' resolved to no values", cond.Fact), nil
	}

	if cond.Operator == core.OpExists {
		return true, "", nil
	}

	// Wildcard fan-out semantics: one resolved value meeting the comparison
	// is enough. Scalar paths resolve to a singleton, so this degenerates to
	// a plain comparison.
	for _, val := range resolved {
		ok, err := compare(cond.Operator, val, cond.Value)
		if err != nil {
			return false, "", err
		}
		if ok {
			return true, "", nil
		}
	}

	return false, fmt.Sprintf("no resolved value of '%s' satisfied %s %v", cond.Fact, cond.Operator, cond.Value), nil
}

// evalRule runs a rule's conditions as a short-circuit conjunction in
// declared order. A panic inside a comparison is contained here so one bad
// rule definition can never take down the batch.
func evalRule(obs core.Value, rule core.Rule) (outcome core.RuleOutcome) {
	outcome = core.RuleOutcome{
		RuleID:   rule.ID,
		RuleName: rule.Name,
		Status:   core.OutcomeMatched,
	}

	defer func() {
		if r := recover(); r != nil {
			outcome.Status = core.OutcomeSkipped
			outcome.Reason = fmt.Sprintf("evaluation panicked: %v", r)
		}
	}()

	if len(rule.Conditions) == 0 {
		outcome.Status = core.OutcomeSkipped
		outcome.Reason = "rule has no conditions"
		return outcome
	}

	for _, cond := range rule.Conditions {
		passed, reason, err := evalCondition(obs, cond)
		if err != nil {
			outcome.Status = core.OutcomeSkipped
			outcome.Reason = err.Error()
			return outcome
		}

		outcome.Conditions = append(outcome.Conditions, core.ConditionResult{
			Expression: conditionExpression(cond),
			Matched:    passed,
			Reason:     reason,
		})

		if !passed {
			outcome.Status = core.OutcomeNotMatched
			return outcome
		}
	}

	return outcome
}

func conditionExpression(cond core.Condition) string {
	if cond.Operator == core.OpExists {
		return fmt.Sprintf("%s exists", cond.Fact)
	}
	return fmt.Sprintf("%s %s %v", cond.Fact, cond.Operator, cond.Value)
}
