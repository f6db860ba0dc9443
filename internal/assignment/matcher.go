// Package assignment classifies transactions into budget estimates using an
// ordered list of rules. The first rule whose conditions all hold wins.
package assignment

import (
	"strings"

	"github.com/Veraticus/estimate-flow/internal/model"
)

// Matcher evaluates transactions against a fixed, priority-ordered set of rules.
type Matcher struct {
	rules []model.Rule
}

// NewMatcher creates a matcher over a copy of rules. Index 0 has the highest priority.
func NewMatcher(rules []model.Rule) *Matcher {
	return &Matcher{rules: append([]model.Rule(nil), rules...)}
}

// Match returns the index of the first rule matching txn, or -1.
func (m *Matcher) Match(txn model.Transaction) int {
	for i, rule := range m.rules {
		if MatchesRule(txn, rule) {
			return i
		}
	}
	return -1
}

// MatchesRule reports whether every condition of rule holds for txn.
// A rule with no conditions is unconfigured and never matches.
func MatchesRule(txn model.Transaction, rule model.Rule) bool {
	if len(rule.Conditions) == 0 {
		return false
	}
	for _, cond := range rule.Conditions {
		if !MatchesCondition(txn, cond) {
			return false
		}
	}
	return true
}

// MatchesCondition reports whether a single condition holds for txn.
// For FieldAny the condition holds when any individual field satisfies it.
func MatchesCondition(txn model.Transaction, cond model.Condition) bool {
	for _, actual := range fieldValues(txn, cond.Field) {
		if compare(cond.Operator, actual, cond.Value) {
			return true
		}
	}
	return false
}

// fieldValues extracts the text a condition on field compares against.
// Type is not carried by canonical transactions, so it yields nothing.
func fieldValues(txn model.Transaction, field model.Field) []string {
	switch field {
	case model.FieldDate:
		return []string{txn.Date.Format(model.DateLayout)}
	case model.FieldValue:
		return []string{txn.FormattedAmount()}
	case model.FieldMemo:
		return []string{txn.Memo}
	case model.FieldPayee:
		return []string{txn.Payee}
	case model.FieldWithdrawal:
		return []string{txn.Withdrawal.FullName()}
	case model.FieldDeposit:
		return []string{txn.Deposit.FullName()}
	case model.FieldAny:
		return []string{
			txn.Date.Format(model.DateLayout),
			txn.FormattedAmount(),
			txn.Memo,
			txn.Payee,
			txn.Withdrawal.FullName(),
			txn.Deposit.FullName(),
		}
	default:
		return nil
	}
}

func compare(op model.Operator, actual, expected string) bool {
	switch op {
	case model.OperatorEquals:
		return strings.EqualFold(actual, expected)
	case model.OperatorEqualsCaseSensitive:
		return actual == expected
	case model.OperatorContains:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(expected))
	case model.OperatorBeginsWith:
		return strings.HasPrefix(strings.ToLower(actual), strings.ToLower(expected))
	case model.OperatorEndsWith:
		return strings.HasSuffix(strings.ToLower(actual), strings.ToLower(expected))
	default:
		return false
	}
}
