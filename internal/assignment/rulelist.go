package assignment

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Veraticus/estimate-flow/internal/model"
)

// Rule list errors.
var (
	ErrIndexOutOfRange = errors.New("rule index out of range")
	ErrRuleNotFound    = errors.New("rule not found")
)

// RuleList is the priority-ordered set of assignment rules. Position 0 has
// the highest priority. Every mutation is applied atomically with respect to
// Snapshot and Classify.
type RuleList struct {
	rules []model.Rule
	mu    sync.RWMutex
}

// NewRuleList creates a list holding rules in the given order.
func NewRuleList(rules ...model.Rule) *RuleList {
	return &RuleList{rules: append([]model.Rule(nil), rules...)}
}

// Len returns the number of rules.
func (l *RuleList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.rules)
}

// At returns the rule at index.
func (l *RuleList) At(index int) (model.Rule, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err := l.checkIndex(index, len(l.rules)); err != nil {
		return model.Rule{}, err
	}
	return l.rules[index], nil
}

// Snapshot returns a copy of the rules in priority order.
func (l *RuleList) Snapshot() []model.Rule {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.Rule(nil), l.rules...)
}

// Classify runs a classification against the current rule order.
func (l *RuleList) Classify(transactions []model.Transaction) *Assignments {
	return Classify(transactions, l.Snapshot())
}

// Append adds rule with the lowest priority and returns its index.
func (l *RuleList) Append(rule model.Rule) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rules = append(l.rules, rule)
	return len(l.rules) - 1
}

// Insert places rule at index, shifting later rules down. index may equal Len.
func (l *RuleList) Insert(index int, rule model.Rule) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkIndex(index, len(l.rules)+1); err != nil {
		return err
	}
	l.rules = append(l.rules, model.Rule{})
	copy(l.rules[index+1:], l.rules[index:])
	l.rules[index] = rule
	return nil
}

// Remove deletes and returns the rule at index.
func (l *RuleList) Remove(index int) (model.Rule, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkIndex(index, len(l.rules)); err != nil {
		return model.Rule{}, err
	}
	return l.removeAt(index), nil
}

// RemoveRule deletes the rule with the given ID.
func (l *RuleList) RemoveRule(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	index := l.indexOf(id)
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}
	l.removeAt(index)
	return nil
}

// RemoveAll deletes every rule targeting estimate and returns how many were removed.
func (l *RuleList) RemoveAll(estimate model.EstimateID) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.rules[:0]
	for _, rule := range l.rules {
		if rule.Estimate != estimate {
			kept = append(kept, rule)
		}
	}
	removed := len(l.rules) - len(kept)
	clear(l.rules[len(kept):])
	l.rules = kept
	return removed
}

// Move relocates the rule at from so that it ends up at index to. The
// relative order of all other rules is unchanged.
func (l *RuleList) Move(from, to int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkIndex(from, len(l.rules)); err != nil {
		return err
	}
	if err := l.checkIndex(to, len(l.rules)); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	rule := l.rules[from]
	if from < to {
		copy(l.rules[from:to], l.rules[from+1:to+1])
	} else {
		copy(l.rules[to+1:from+1], l.rules[to:from])
	}
	l.rules[to] = rule
	return nil
}

// Clone inserts a copy of the rule at index directly after it. The copy has
// its own identity and the same estimate.
func (l *RuleList) Clone(index int) (model.Rule, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkIndex(index, len(l.rules)); err != nil {
		return model.Rule{}, err
	}
	clone := l.rules[index].Clone()
	l.rules = append(l.rules, model.Rule{})
	copy(l.rules[index+2:], l.rules[index+1:])
	l.rules[index+1] = clone
	return clone, nil
}

// UpdateConditions replaces the conditions of the rule with the given ID.
// The stored rule is swapped for a new value, never edited in place.
func (l *RuleList) UpdateConditions(id string, conditions ...model.Condition) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	index := l.indexOf(id)
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}
	l.rules[index] = l.rules[index].WithConditions(conditions...)
	return nil
}

// Find returns the rule with the given ID.
func (l *RuleList) Find(id string) (model.Rule, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index := l.indexOf(id); index >= 0 {
		return l.rules[index], true
	}
	return model.Rule{}, false
}

// IndexOf returns the position of the rule with the given ID, or -1.
func (l *RuleList) IndexOf(id string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.indexOf(id)
}

// FindFor returns the rules targeting estimate, in priority order.
func (l *RuleList) FindFor(estimate model.EstimateID) []model.Rule {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var rules []model.Rule
	for _, rule := range l.rules {
		if rule.Estimate == estimate {
			rules = append(rules, rule)
		}
	}
	return rules
}

func (l *RuleList) indexOf(id string) int {
	for i, rule := range l.rules {
		if rule.ID == id {
			return i
		}
	}
	return -1
}

func (l *RuleList) removeAt(index int) model.Rule {
	rule := l.rules[index]
	copy(l.rules[index:], l.rules[index+1:])
	l.rules[len(l.rules)-1] = model.Rule{}
	l.rules = l.rules[:len(l.rules)-1]
	return rule
}

func (l *RuleList) checkIndex(index, limit int) error {
	if index < 0 || index >= limit {
		return fmt.Errorf("%w: %d (have %d rules)", ErrIndexOutOfRange, index, len(l.rules))
	}
	return nil
}
