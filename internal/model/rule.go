// Package model defines the core data structures for estimate-flow.
package model

import (
	"strings"

	"github.com/google/uuid"
)

// EstimateID identifies a budget estimate. The engine only compares it.
type EstimateID string

// Rule assigns transactions to an estimate when all of its conditions hold.
// A rule without conditions never matches.
type Rule struct {
	ID         string      `json:"id"`
	Estimate   EstimateID  `json:"estimate"`
	Conditions []Condition `json:"conditions"`
}

// NewRule creates a rule with a fresh identity.
func NewRule(estimate EstimateID, conditions ...Condition) Rule {
	return Rule{
		ID:         uuid.NewString(),
		Estimate:   estimate,
		Conditions: append([]Condition(nil), conditions...),
	}
}

// Clone returns a distinct rule with the same estimate and a copy of the conditions.
func (r Rule) Clone() Rule {
	return NewRule(r.Estimate, r.Conditions...)
}

// WithConditions returns a copy of the rule carrying a new condition list.
func (r Rule) WithConditions(conditions ...Condition) Rule {
	r.Conditions = append([]Condition(nil), conditions...)
	return r
}

func (r Rule) String() string {
	parts := make([]string, len(r.Conditions))
	for i, c := range r.Conditions {
		parts[i] = c.String()
	}
	if len(parts) == 0 {
		return "(no conditions) to " + string(r.Estimate)
	}
	return strings.Join(parts, " and ") + " to " + string(r.Estimate)
}
