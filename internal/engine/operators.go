package engine

import (
	"fmt"

	"github.com/breardon2011/mitigationDB/internal/core"
)

// compare applies a single (non-exists) operator between one resolved value
// and the condition operand. A type mismatch is never an error; it simply
// does not satisfy the comparison. The only error cases are definitional:
// an unknown operator or a non-list operand for in/not_in, which cause the
// whole rule to be skipped.
func compare(op core.Operator, val core.Value, operand any) (bool, error) {
	switch op {
	case core.OpEqual:
		return val.Equal(core.FromAny(operand)), nil

	case core.OpNotEqual:
		return !val.Equal(core.FromAny(operand)), nil

	case core.OpLess, core.OpLessOrEqual, core.OpGreater, core.OpGreaterOrEqual:
		return compareOrdered(op, val, operand), nil

	case core.OpIn:
		member, err := memberOf(val, operand)
		if err != nil {
			return false, err
		}
		return member, nil

	case core.OpNotIn:
		member, err := memberOf(val, operand)
		if err != nil {
			return false, err
		}
		return !member, nil

	default:
		return false, fmt.Errorf("unknown operator '%s'", op)
	}
}

// compareOrdered handles <, <=, >, >=. Numbers order against numeric
// operands, strings against string operands; anything else fails the
// comparison without raising.
func compareOrdered(op core.Operator, val core.Value, operand any) bool {
	switch val.Kind() {
	case core.KindNumber:
		f, ok := toFloat(operand)
		if !ok {
			return false
		}
		return orderedHolds(op, val.NumberVal(), f)

	case core.KindString:
		s, ok := operand.(string)
		if !ok {
			return false
		}
		return orderedHolds(op, val.StringVal(), s)

	default:
		return false
	}
}

func orderedHolds[T float64 | string](op core.Operator, a, b T) bool {
	switch op {
	case core.OpLess:
		return a < b
	case core.OpLessOrEqual:
		return a <= b
	case core.OpGreater:
		return a > b
	case core.OpGreaterOrEqual:
		return a >= b
	}
	return false
}

// memberOf checks membership of val in the operand, which must be a list.
func memberOf(val core.Value, operand any) (bool, error) {
	list := core.FromAny(operand)
	if list.Kind() != core.KindArray {
		return false, fmt.Errorf("operand for in/not_in must be a list, got %s", list.Kind())
	}
	for _, item := range list.Items() {
		if val.Equal(item) {
			return true, nil
		}
	}
	return false, nil
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	default:
		return 0, false
	}
}
