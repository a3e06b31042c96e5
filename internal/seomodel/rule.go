package seomodel

import "regexp"

// Operator is the rule engine's condition operator.
type Operator string

const (
	OpEq          Operator = "eq"
	OpNe          Operator = "ne"
	OpLt          Operator = "lt"
	OpGt          Operator = "gt"
	OpLte         Operator = "lte"
	OpGte         Operator = "gte"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpMatches     Operator = "matches"
	OpNotMatches  Operator = "not_matches"
	OpExists      Operator = "exists"
	OpNotExists   Operator = "not_exists"
	OpIn          Operator = "in"
	OpNotIn       Operator = "not_in"
	OpLengthLt    Operator = "length_lt"
	OpLengthGt    Operator = "length_gt"
	OpLengthEq    Operator = "length_eq"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
)

// Transform is a pure unary function applied after field access.
type Transform string

const (
	TransformLen   Transform = "len"
	TransformLower Transform = "lower"
	TransformUpper Transform = "upper"
	TransformStrip Transform = "strip"
	TransformCount Transform = "count"
	TransformBool  Transform = "bool"
	TransformInt   Transform = "int"
	TransformFloat Transform = "float"
)

// Combinator joins a rule's condition list.
type Combinator string

const (
	CombinatorAND Combinator = "AND"
	CombinatorOR  Combinator = "OR"
)

// Scope bounds where a rule is evaluated: over one page, once over the
// whole site, or both.
type Scope string

const (
	ScopePage Scope = "page"
	ScopeSite Scope = "site"
	ScopeAll  Scope = "all"
)

// Condition is one field-path/operator/value test, with an optional
// transform applied to the resolved field value before comparison.
type Condition struct {
	FieldPath string
	Operator  Operator
	Value     any
	Transform Transform
	regex     *regexp.Regexp // not populated; internal/ruleengine caches compiled patterns itself
}

// Rule is a declarative SEO check: a list of Conditions combined by AND/OR,
// plus the metadata needed to turn a trigger into an Issue.
type Rule struct {
	ID               string
	Name             string
	Description      string
	Category         Category
	Severity         Severity
	Conditions       []Condition
	Combinator       Combinator
	BaseImpactScore  float64
	BaseEffortScore  float64
	Recommendation   string
	DocumentationURL string
	Enabled          bool
	Scope            Scope
}
