package assignment

import (
	"github.com/Veraticus/estimate-flow/internal/model"
	"github.com/shopspring/decimal"
)

const unassigned = -1

// Assignments is the result of one classification run. It is never modified
// after Classify returns; the next run produces a new value.
type Assignments struct {
	transactions []model.Transaction
	rules        []model.Rule
	// ruleOf holds the index into rules for each transaction, or unassigned.
	ruleOf []int
}

// Classify assigns each transaction to the first rule, in list order, whose
// conditions all hold. Neither input is modified.
func Classify(transactions []model.Transaction, rules []model.Rule) *Assignments {
	a := &Assignments{
		transactions: append([]model.Transaction(nil), transactions...),
		rules:        append([]model.Rule(nil), rules...),
		ruleOf:       make([]int, len(transactions)),
	}

	m := NewMatcher(a.rules)
	for i, txn := range a.transactions {
		a.ruleOf[i] = m.Match(txn)
	}

	return a
}

// Len returns the number of classified transactions.
func (a *Assignments) Len() int {
	return len(a.transactions)
}

// Transactions returns every classified transaction in input order.
func (a *Assignments) Transactions() []model.Transaction {
	return append([]model.Transaction(nil), a.transactions...)
}

// Rules returns the rule snapshot the run used.
func (a *Assignments) Rules() []model.Rule {
	return append([]model.Rule(nil), a.rules...)
}

// RuleFor returns the rule that claimed the i-th transaction.
func (a *Assignments) RuleFor(i int) (model.Rule, bool) {
	if i < 0 || i >= len(a.ruleOf) || a.ruleOf[i] == unassigned {
		return model.Rule{}, false
	}
	return a.rules[a.ruleOf[i]], true
}

// ForRule returns the transactions the rule with the given ID matched, in input order.
func (a *Assignments) ForRule(id string) []model.Transaction {
	return a.collect(func(r int) bool { return r != unassigned && a.rules[r].ID == id })
}

// ForEstimate returns the transactions assigned to estimate by any rule.
func (a *Assignments) ForEstimate(estimate model.EstimateID) []model.Transaction {
	return a.collect(func(r int) bool { return r != unassigned && a.rules[r].Estimate == estimate })
}

// Unassigned returns the transactions no rule matched.
func (a *Assignments) Unassigned() []model.Transaction {
	return a.collect(func(r int) bool { return r == unassigned })
}

// Actual sums the amounts assigned to estimate.
func (a *Assignments) Actual(estimate model.EstimateID) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range a.ForEstimate(estimate) {
		total = total.Add(txn.Amount)
	}
	return total
}

// Estimates lists the estimates that received at least one transaction, in
// the order their rules appear.
func (a *Assignments) Estimates() []model.EstimateID {
	used := make(map[int]bool)
	for _, r := range a.ruleOf {
		if r != unassigned {
			used[r] = true
		}
	}

	var estimates []model.EstimateID
	seen := make(map[model.EstimateID]bool)
	for i, rule := range a.rules {
		if used[i] && !seen[rule.Estimate] {
			seen[rule.Estimate] = true
			estimates = append(estimates, rule.Estimate)
		}
	}
	return estimates
}

// Equal reports whether both runs paired the same transactions with the same rules.
func (a *Assignments) Equal(other *Assignments) bool {
	if a == nil || other == nil {
		return a == other
	}
	if len(a.transactions) != len(other.transactions) {
		return false
	}
	for i := range a.transactions {
		if !a.transactions[i].Equal(other.transactions[i]) {
			return false
		}
		mine, okMine := a.RuleFor(i)
		theirs, okTheirs := other.RuleFor(i)
		if okMine != okTheirs || mine.ID != theirs.ID || mine.Estimate != theirs.Estimate {
			return false
		}
	}
	return true
}

func (a *Assignments) collect(keep func(rule int) bool) []model.Transaction {
	var out []model.Transaction
	for i, r := range a.ruleOf {
		if keep(r) {
			out = append(out, a.transactions[i])
		}
	}
	return out
}
