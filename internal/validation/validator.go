package validation

import (
	"fmt"

	"github.com/breardon2011/mitigationDB/internal/core"
)

// ValidateRules checks a batch of rule definitions before they are stored or
// loaded into an engine snapshot. Validation is strict where the engine is
// lenient: a definition the engine would merely skip at evaluation time is a
// hard error here, so authoring mistakes surface on load instead of being
// silently ignored forever.
func ValidateRules(rules []core.Rule) ([]core.Rule, error) {
	seenNames := make(map[string]struct{})
	var validRules []core.Rule

	for i, rule := range rules {
		if rule.Name == "" {
			return nil, fmt.Errorf("rule #%d missing name", i)
		}
		if _, exists := seenNames[rule.Name]; exists {
			return nil, fmt.Errorf("rule name '%s' is not unique", rule.Name)
		}
		seenNames[rule.Name] = struct{}{}

		if err := ValidateRule(rule); err != nil {
			return nil, err
		}

		validRules = append(validRules, rule)
	}

	return validRules, nil
}

// ValidateRule checks a single rule definition.
func ValidateRule(rule core.Rule) error {
	if rule.Name == "" {
		return fmt.Errorf("rule missing name")
	}
	if len(rule.Conditions) == 0 {
		return fmt.Errorf("rule '%s' has no conditions", rule.Name)
	}
	if rule.RetiredDate != nil && !rule.EffectiveDate.IsZero() && !rule.RetiredDate.After(rule.EffectiveDate) {
		return fmt.Errorf("rule '%s' retired_date must be after effective_date", rule.Name)
	}

	for j, cond := range rule.Conditions {
		if cond.Fact == "" {
			return fmt.Errorf("rule '%s' condition #%d missing fact", rule.Name, j)
		}
		if !cond.Operator.IsValid() {
			return fmt.Errorf("rule '%s' condition #%d has unknown operator '%s'", rule.Name, j, cond.Operator)
		}
		switch cond.Operator {
		case core.OpIn, core.OpNotIn:
			if _, ok := cond.Value.([]any); !ok {
				return fmt.Errorf("rule '%s' condition #%d operator '%s' requires a list value", rule.Name, j, cond.Operator)
			}
		case core.OpExists:
			// operand ignored, nothing to check
		default:
			if cond.Value == nil {
				return fmt.Errorf("rule '%s' condition #%d operator '%s' requires a value", rule.Name, j, cond.Operator)
			}
		}
	}

	return nil
}
