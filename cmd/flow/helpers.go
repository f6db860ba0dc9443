package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Veraticus/estimate-flow/internal/assignment"
	"github.com/Veraticus/estimate-flow/internal/config"
	"github.com/Veraticus/estimate-flow/internal/model"
	"github.com/Veraticus/estimate-flow/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath(viper.GetViper()))
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadRuleList reads the stored rules into an editable list.
func loadRuleList(ctx context.Context, store *storage.SQLiteStorage) (*assignment.RuleList, error) {
	rules, err := store.GetRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	return assignment.NewRuleList(rules...), nil
}

func addPeriodFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("period", "p", "", "budget period: 2024, 2024-03, paydate:2024-03 or 2024-01-05..2024-02-10 (default: current month)")
}

// periodFromFlag parses --period, falling back to the calendar month containing now.
func periodFromFlag(cmd *cobra.Command, now time.Time) (model.Period, error) {
	expr, _ := cmd.Flags().GetString("period")
	if expr == "" {
		return model.LiteralMonth{Year: now.Year(), Month: now.Month()}, nil
	}
	return model.ParsePeriod(expr)
}

// expandPaths resolves each argument as a glob and returns the matching files
// in a stable order. A pattern with no matches is kept so the import reports it.
func expandPaths(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		pattern = config.ExpandPath(pattern)
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			matches = []string{pattern}
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	return paths, nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}
