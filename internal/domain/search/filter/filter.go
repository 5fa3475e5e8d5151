// Package filter models the structured filters a self-query analyzer
// extracts from a natural-language question before vector search.
package filter

import "fmt"

// MaxConditions is the maximum number of conditions per expression.
const MaxConditions = 16

// Expression is a conjunctive set of filter conditions applied as a
// pre-filter before KNN search.
type Expression struct {
	conds []Condition
}

// New validates and creates a filter Expression.
func New(conds ...Condition) (Expression, error) {
	if len(conds) > MaxConditions {
		return Expression{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	cp := make([]Condition, len(conds))
	copy(cp, conds)
	return Expression{conds: cp}, nil
}

// Conditions returns the conditions in declaration order.
func (e Expression) Conditions() []Condition {
	cp := make([]Condition, len(e.conds))
	copy(cp, e.conds)
	return cp
}

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.conds) == 0 }

// Condition is a single filter clause: either an exact tag match or a
// numeric range.
type Condition struct {
	key       string
	match     string
	rangeExpr *Range
}

// Match creates an exact tag match condition.
func Match(key, value string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if value == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: value}, nil
}

// InRange creates a numeric range condition.
func InRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if r.min == nil && r.max == nil {
		return Condition{}, fmt.Errorf("at least one range boundary is required for key %q", key)
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// MatchValue returns the exact match value.
func (c Condition) MatchValue() string { return c.match }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Range is an inclusive numeric interval. Nil boundaries are unbounded.
type Range struct {
	min *float64
	max *float64
}

// NewRange creates a Range from optional inclusive boundaries.
func NewRange(min, max *float64) Range {
	return Range{min: min, max: max}
}

// Min returns the inclusive lower bound, or nil.
func (r Range) Min() *float64 { return r.min }

// Max returns the inclusive upper bound, or nil.
func (r Range) Max() *float64 { return r.max }
