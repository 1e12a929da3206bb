// Package models provides condition evaluation for workflow actions.
package models

import (
	"math"
	"strconv"
	"strings"
)

// ConditionOperator is one of the flat binary comparison operators supported
// on action conditions. There is no OR or grouping; a condition list is a
// conjunction.
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "equals"
	OperatorNotEquals   ConditionOperator = "not_equals"
	OperatorContains    ConditionOperator = "contains"
	OperatorGreaterThan ConditionOperator = "greater_than"
	OperatorLessThan    ConditionOperator = "less_than"
)

// Condition compares a dotted field path in the trigger context against a
// literal value.
type Condition struct {
	Field    string            `json:"field"    validate:"required"`
	Operator ConditionOperator `json:"operator" validate:"required,oneof=equals not_equals contains greater_than less_than"`
	Value    string            `json:"value"`
}

// Evaluate resolves the condition's field in ctx and applies the operator.
// A field that does not resolve never satisfies a condition, whatever the
// operator. equals/not_equals compare stringified values; contains is a
// case-insensitive substring test; greater_than/less_than parse both sides as
// float64, and a failed parse yields NaN, for which every comparison is false.
func (c Condition) Evaluate(ctx map[string]any) bool {
	value, ok := ResolvePath(ctx, c.Field)
	if !ok {
		return false
	}

	actual := Stringify(value)

	switch c.Operator {
	case OperatorEquals:
		return actual == c.Value
	case OperatorNotEquals:
		return actual != c.Value
	case OperatorContains:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(c.Value))
	case OperatorGreaterThan:
		return parseNumber(actual) > parseNumber(c.Value)
	case OperatorLessThan:
		return parseNumber(actual) < parseNumber(c.Value)
	default:
		return false
	}
}

// EvaluateConditions reports whether every condition passes. An empty or nil
// list passes vacuously.
func EvaluateConditions(conditions []Condition, ctx map[string]any) bool {
	for _, condition := range conditions {
		if !condition.Evaluate(ctx) {
			return false
		}
	}

	return true
}

func parseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}

	return f
}
