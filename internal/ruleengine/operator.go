package ruleengine

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
)

// regexCache memoizes compiled patterns across condition evaluations. Rules
// are loaded once per process and re-evaluated per page, so this avoids
// recompiling the same pattern thousands of times over a large crawl.
var regexCache sync.Map // string -> *regexp.Regexp

func compiledPattern(pattern string) (*regexp.Regexp, error) {
	if cached, ok := regexCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Store(pattern, re)
	return re, nil
}

// nullYieldsTrue is the set of operators whose result is true, rather than
// false, when the (transformed) left operand is null.
func nullYieldsTrue(op seomodel.Operator) bool {
	switch op {
	case seomodel.OpNotContains, seomodel.OpNotMatches, seomodel.OpNotExists, seomodel.OpLengthLt:
		return true
	default:
		return false
	}
}

// applyOperator evaluates one condition operator. It never panics; type
// mismatches and bad patterns surface as an error for the caller to log and
// treat as false.
func applyOperator(op seomodel.Operator, left, right any) (bool, error) {
	if op == seomodel.OpExists {
		return existsValue(left), nil
	}
	if op == seomodel.OpNotExists {
		return !existsValue(left), nil
	}
	if left == nil {
		return nullYieldsTrue(op), nil
	}

	switch op {
	case seomodel.OpEq:
		return looseEqual(left, right), nil
	case seomodel.OpNe:
		return !looseEqual(left, right), nil
	case seomodel.OpLt, seomodel.OpGt, seomodel.OpLte, seomodel.OpGte, seomodel.OpLengthLt, seomodel.OpLengthGt, seomodel.OpLengthEq:
		return applyNumericOperator(op, left, right)
	case seomodel.OpContains:
		return containsValue(left, right)
	case seomodel.OpNotContains:
		ok, err := containsValue(left, right)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case seomodel.OpStartsWith:
		ls, rs, err := bothStrings(left, right)
		if err != nil {
			return false, err
		}
		return strings.HasPrefix(ls, rs), nil
	case seomodel.OpEndsWith:
		ls, rs, err := bothStrings(left, right)
		if err != nil {
			return false, err
		}
		return strings.HasSuffix(ls, rs), nil
	case seomodel.OpMatches, seomodel.OpNotMatches:
		ls, pattern, err := bothStrings(left, right)
		if err != nil {
			return false, err
		}
		re, err := compiledPattern(pattern)
		if err != nil {
			return false, fmt.Errorf("ruleengine: invalid regex %q: %w", pattern, err)
		}
		matched := re.MatchString(ls)
		if op == seomodel.OpNotMatches {
			return !matched, nil
		}
		return matched, nil
	case seomodel.OpIn:
		return inSet(left, right)
	case seomodel.OpNotIn:
		ok, err := inSet(left, right)
		if err != nil {
			return false, err
		}
		return !ok, nil
	default:
		return false, errUnsupportedOperator(op)
	}
}

// existsValue implements the exists operator: non-null, and neither an
// empty string nor an empty sequence.
func existsValue(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	if length, ok := sequenceLength(v).(int64); ok {
		return length > 0
	}
	return true
}

func looseEqual(left, right any) bool {
	if lf, ok := toFloat(left); ok {
		if rf, ok := toFloat(right); ok {
			return lf == rf
		}
	}
	return fmt.Sprint(left) == fmt.Sprint(right)
}

func applyNumericOperator(op seomodel.Operator, left, right any) (bool, error) {
	lf, ok := toFloat(left)
	if !ok {
		return false, fmt.Errorf("ruleengine: %q operand %v is not numeric", op, left)
	}
	rf, ok := toFloat(right)
	if !ok {
		return false, fmt.Errorf("ruleengine: %q operand %v is not numeric", op, right)
	}
	switch op {
	case seomodel.OpLt, seomodel.OpLengthLt:
		return lf < rf, nil
	case seomodel.OpGt, seomodel.OpLengthGt:
		return lf > rf, nil
	case seomodel.OpLte:
		return lf <= rf, nil
	case seomodel.OpGte:
		return lf >= rf, nil
	case seomodel.OpLengthEq:
		return lf == rf, nil
	default:
		return false, errUnsupportedOperator(op)
	}
}

func containsValue(left, right any) (bool, error) {
	if ls, ok := left.(string); ok {
		rs, ok := right.(string)
		if !ok {
			return false, fmt.Errorf("ruleengine: contains operand %v is not a string", right)
		}
		return strings.Contains(ls, rs), nil
	}
	items, ok := toStringSlice(left)
	if !ok {
		return false, fmt.Errorf("ruleengine: contains operand %v is not a string or sequence", left)
	}
	for _, item := range items {
		if looseEqual(item, right) {
			return true, nil
		}
	}
	return false, nil
}

func inSet(left, right any) (bool, error) {
	items, ok := toStringSlice(right)
	if !ok {
		return false, fmt.Errorf("ruleengine: in/not_in operand %v is not a sequence", right)
	}
	for _, item := range items {
		if looseEqual(left, item) {
			return true, nil
		}
	}
	return false, nil
}

func bothStrings(left, right any) (string, string, error) {
	ls, ok := left.(string)
	if !ok {
		return "", "", fmt.Errorf("ruleengine: operand %v is not a string", left)
	}
	rs, ok := right.(string)
	if !ok {
		return "", "", fmt.Errorf("ruleengine: operand %v is not a string", right)
	}
	return ls, rs, nil
}

func toStringSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
