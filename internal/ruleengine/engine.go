// Package ruleengine interprets the declarative Rule/Condition records
// defined in internal/seomodel against a page represented as a generic
// field map, per the operator and transform tables of the rule-dispatch-via-data
// design. Evaluation never panics:
// operator errors are logged at debug level and treated as a false
// (not-triggered) result, matching the teacher's error-as-value idiom with
// plain error values rather than exceptions.
package ruleengine

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
)

// Fields is the generic, dot-path-addressable view a Rule's Conditions are
// evaluated against. Analysis engines build one Fields map per PageData
// (or one for the whole site, for Scope-site rules).
type Fields map[string]any

// Evaluate combines rule's Conditions by its Combinator and reports
// whether the rule triggers: a rule triggers when its combined
// expression is TRUE.
func Evaluate(rule seomodel.Rule, fields Fields) bool {
	if len(rule.Conditions) == 0 {
		return false
	}

	switch rule.Combinator {
	case seomodel.CombinatorOR:
		for _, c := range rule.Conditions {
			if evaluateCondition(rule.ID, c, fields) {
				return true
			}
		}
		return false
	default: // AND is the default combinator
		for _, c := range rule.Conditions {
			if !evaluateCondition(rule.ID, c, fields) {
				return false
			}
		}
		return true
	}
}

func evaluateCondition(ruleID string, c seomodel.Condition, fields Fields) bool {
	result, err := evaluateConditionErr(c, fields)
	if err != nil {
		log.Debug().Str("rule_id", ruleID).Str("field", c.FieldPath).Str("op", string(c.Operator)).Err(err).Msg("rule condition evaluation error, treated as false")
		return false
	}
	return result
}

func evaluateConditionErr(c seomodel.Condition, fields Fields) (bool, error) {
	raw := resolveFieldPath(fields, c.FieldPath)
	value := applyTransform(c.Transform, raw)
	return applyOperator(c.Operator, value, c.Value)
}

func errUnsupportedOperator(op seomodel.Operator) error {
	return fmt.Errorf("ruleengine: unsupported operator %q", op)
}
