package runtime

import (
	"context"
	"strconv"
	"strings"

	"github.com/aretw0/kiteflow/pkg/domain"
)

// Compare reports whether value satisfies mode against base.
// Reserved and unknown modes return an UnimplementedModeError.
func Compare(mode domain.CompareMode, base, value string) (bool, error) {
	switch mode {
	case domain.CompareModeEqual:
		return value == base, nil
	case domain.CompareModeNotEqual:
		return value != base, nil
	case domain.CompareModeContains:
		return strings.Contains(base, value), nil
	case domain.CompareModeStartsWith:
		return strings.HasPrefix(base, value), nil
	case domain.CompareModeEndsWith:
		return strings.HasSuffix(base, value), nil
	case domain.CompareModeGreaterThan:
		return number(base) > number(value), nil
	case domain.CompareModeGreaterThanOrEqual:
		return number(base) >= number(value), nil
	case domain.CompareModeLessThan:
		return number(base) < number(value), nil
	case domain.CompareModeLessThanOrEqual:
		return number(base) <= number(value), nil
	}
	return false, &UnimplementedModeError{Mode: mode}
}

// number parses s as a float. Non-numeric input counts as zero.
func number(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// evaluateCondition runs the items of a condition node.
// Comparison items fire in order; without AllowMultiple the scan stops at the
// first match. The last else item fires only when no comparison matched.
func (e *Engine) evaluateCondition(ctx context.Context, ec *EventContext, cond *domain.RuntimeNode) error {
	base := ec.Resolve(cond.BaseValue)

	handled := false
	fallback := domain.NodeRef(-1)

	for _, ref := range cond.Items {
		item := ec.tree.Node(ref)
		switch item.Kind {
		case domain.KindConditionItemCompare:
			matched, err := Compare(item.Mode, base, ec.Resolve(item.Value))
			if err != nil {
				return &UnimplementedModeError{NodeID: item.ID, Mode: item.Mode}
			}
			if !matched {
				continue
			}
			handled = true
			if err := e.visit(ctx, ec, ref); err != nil {
				return err
			}
			if !cond.AllowMultiple {
				return nil
			}
		case domain.KindConditionItemElse:
			fallback = ref
		}
	}

	if !handled && fallback >= 0 {
		return e.visit(ctx, ec, fallback)
	}
	return nil
}
