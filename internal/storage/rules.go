package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Veraticus/estimate-flow/internal/model"
)

// SaveRules replaces the stored rule list with rules, keeping their order.
func (s *SQLiteStorage) SaveRules(ctx context.Context, rules []model.Rule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRules(rules); err != nil {
		return err
	}

	return s.withBusyRetry(ctx, func() error {
		return s.saveRules(ctx, rules)
	})
}

func (s *SQLiteStorage) saveRules(ctx context.Context, rules []model.Rule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM assignment_rules`); err != nil {
		return fmt.Errorf("failed to clear rules: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO assignment_rules (id, position, estimate, conditions)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for position, rule := range rules {
		conditions := rule.Conditions
		if conditions == nil {
			conditions = []model.Condition{}
		}
		conditionsJSON, marshalErr := json.Marshal(conditions)
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal conditions for rule %s: %w", rule.ID, marshalErr)
		}

		if _, execErr := stmt.ExecContext(ctx, rule.ID, position, string(rule.Estimate), string(conditionsJSON)); execErr != nil {
			return fmt.Errorf("failed to insert rule %s: %w", rule.ID, execErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rules: %w", err)
	}
	return nil
}

// GetRules returns the stored rules in priority order.
func (s *SQLiteStorage) GetRules(ctx context.Context) ([]model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, estimate, conditions FROM assignment_rules ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.Rule
	for rows.Next() {
		var (
			rule           model.Rule
			estimate       string
			conditionsJSON string
		)
		if err := rows.Scan(&rule.ID, &estimate, &conditionsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		if err := json.Unmarshal([]byte(conditionsJSON), &rule.Conditions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal conditions for rule %s: %w", rule.ID, err)
		}
		rule.Estimate = model.EstimateID(estimate)
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}
	return rules, nil
}
