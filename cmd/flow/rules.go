package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Veraticus/estimate-flow/internal/assignment"
	"github.com/Veraticus/estimate-flow/internal/cli"
	"github.com/Veraticus/estimate-flow/internal/common"
	"github.com/Veraticus/estimate-flow/internal/model"
	"github.com/Veraticus/estimate-flow/internal/storage"
	"github.com/spf13/cobra"
)

var errAmbiguousRule = errors.New("ambiguous rule reference")

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage assignment rules",
		Long: `Manage the ordered list of assignment rules.

Each rule assigns a transaction to a budget estimate when all of its conditions
hold. Rules are tried from the top, and the first match wins. Rules can be
referenced by their 1-based position or by a unique prefix of their ID.

Conditions are written as "<field> <operator> <value>":
  fields:    date, value, memo, payee, withdrawal, deposit, type, any
  operators: equals, equals-case, contains, begins-with, ends-with`,
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesInsertCmd())
	cmd.AddCommand(rulesRemoveCmd())
	cmd.AddCommand(rulesMoveCmd())
	cmd.AddCommand(rulesCloneCmd())
	cmd.AddCommand(rulesSetCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rules in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			estimate, _ := cmd.Flags().GetString("estimate")
			return withRules(cmd.Context(), false, func(list *assignment.RuleList) error {
				rules := list.Snapshot()
				if estimate != "" {
					rules = list.FindFor(model.EstimateID(estimate))
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRules(rules))
				return nil
			})
		},
	}
	cmd.Flags().String("estimate", "", "only show rules for this estimate")
	return cmd
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <estimate>",
		Short: "Add a rule with the lowest priority",
		Example: `  flow rules add fuel -w "payee contains shell" -w "withdrawal begins-with Liabilities:Visa"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := ruleFromFlags(cmd, args[0])
			if err != nil {
				return err
			}
			return withRules(cmd.Context(), true, func(list *assignment.RuleList) error {
				index := list.Append(rule)
				slog.Info(cli.FormatSuccess("Added rule"), "position", index+1, "id", rule.ID)
				return nil
			})
		},
	}
	addConditionFlag(cmd)
	return cmd
}

func rulesInsertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert <position> <estimate>",
		Short: "Insert a rule at a position, shifting later rules down",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			rule, err := ruleFromFlags(cmd, args[1])
			if err != nil {
				return err
			}
			return withRules(cmd.Context(), true, func(list *assignment.RuleList) error {
				if err := list.Insert(position, rule); err != nil {
					return err
				}
				slog.Info(cli.FormatSuccess("Inserted rule"), "position", position+1, "id", rule.ID)
				return nil
			})
		},
	}
	addConditionFlag(cmd)
	return cmd
}

func rulesRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove [rule]...",
		Short: "Remove rules by position or ID, or every rule for an estimate",
		RunE: func(cmd *cobra.Command, args []string) error {
			estimate, _ := cmd.Flags().GetString("estimate")
			yes, _ := cmd.Flags().GetBool("yes")
			if len(args) == 0 && estimate == "" {
				return common.NewUserError("Specify rules to remove by position or ID, or use --estimate", nil)
			}

			return withRules(cmd.Context(), true, func(list *assignment.RuleList) error {
				// resolve every reference before mutating so positions stay valid
				ids := make([]string, 0, len(args))
				for _, ref := range args {
					index, err := resolveRule(list, ref)
					if err != nil {
						return err
					}
					rule, _ := list.At(index)
					ids = append(ids, rule.ID)
				}

				count := len(ids)
				if estimate != "" {
					count += len(list.FindFor(model.EstimateID(estimate)))
				}
				if count == 0 {
					slog.Info(cli.FormatWarning("No matching rules"))
					return nil
				}

				if !yes {
					ok, err := cli.NewLineReader(os.Stdin).Confirm(cmd.Context(), cmd.ErrOrStderr(), fmt.Sprintf("Remove %d rules?", count))
					if err != nil {
						return err
					}
					if !ok {
						return errNoChanges
					}
				}

				removed := 0
				for _, id := range ids {
					if err := list.RemoveRule(id); err == nil {
						removed++
					}
				}
				if estimate != "" {
					removed += list.RemoveAll(model.EstimateID(estimate))
				}
				slog.Info(cli.FormatSuccess(fmt.Sprintf("Removed %d rules", removed)))
				return nil
			})
		},
	}
	cmd.Flags().String("estimate", "", "remove every rule for this estimate")
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func rulesMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <rule> <position>",
		Short: "Move a rule so it ends up at position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			return withRules(cmd.Context(), true, func(list *assignment.RuleList) error {
				from, err := resolveRule(list, args[0])
				if err != nil {
					return err
				}
				if err := list.Move(from, to); err != nil {
					return err
				}
				slog.Info(cli.FormatSuccess("Moved rule"), "from", from+1, "to", to+1)
				return nil
			})
		},
	}
}

func rulesCloneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clone <rule>",
		Short: "Copy a rule directly below the original",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRules(cmd.Context(), true, func(list *assignment.RuleList) error {
				index, err := resolveRule(list, args[0])
				if err != nil {
					return err
				}
				clone, err := list.Clone(index)
				if err != nil {
					return err
				}
				slog.Info(cli.FormatSuccess("Cloned rule"), "position", index+2, "id", clone.ID)
				return nil
			})
		},
	}
}

func rulesSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <rule>",
		Short: "Replace the conditions of a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, _ := cmd.Flags().GetStringArray("when")
			conditions, err := parseConditions(texts)
			if err != nil {
				return err
			}
			return withRules(cmd.Context(), true, func(list *assignment.RuleList) error {
				index, err := resolveRule(list, args[0])
				if err != nil {
					return err
				}
				rule, _ := list.At(index)
				if err := list.UpdateConditions(rule.ID, conditions...); err != nil {
					return err
				}
				slog.Info(cli.FormatSuccess("Updated rule"), "position", index+1, "conditions", len(conditions))
				return nil
			})
		},
	}
	addConditionFlag(cmd)
	return cmd
}

// errNoChanges aborts a mutation without saving or reporting an error.
var errNoChanges = errors.New("no changes")

// withRules loads the rule list, runs fn and, when save is set, writes the
// resulting list back in a single storage transaction.
func withRules(ctx context.Context, save bool, fn func(list *assignment.RuleList) error) error {
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	return applyRules(ctx, store, save, fn)
}

func applyRules(ctx context.Context, store *storage.SQLiteStorage, save bool, fn func(list *assignment.RuleList) error) error {
	list, err := loadRuleList(ctx, store)
	if err != nil {
		return err
	}

	if err := fn(list); err != nil {
		if errors.Is(err, errNoChanges) {
			return nil
		}
		return err
	}

	if !save {
		return nil
	}
	if err := store.SaveRules(ctx, list.Snapshot()); err != nil {
		return fmt.Errorf("failed to save rules: %w", err)
	}
	return nil
}

func addConditionFlag(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("when", "w", nil, `condition "<field> <operator> <value>" (repeatable, all must hold)`)
}

func ruleFromFlags(cmd *cobra.Command, estimate string) (model.Rule, error) {
	estimate = strings.TrimSpace(estimate)
	if estimate == "" {
		return model.Rule{}, common.NewUserError("The estimate name must not be empty", nil)
	}
	texts, _ := cmd.Flags().GetStringArray("when")
	conditions, err := parseConditions(texts)
	if err != nil {
		return model.Rule{}, err
	}
	if len(conditions) == 0 {
		slog.Warn("Rule has no conditions and will never match", "estimate", estimate)
	}
	return model.NewRule(model.EstimateID(estimate), conditions...), nil
}

func parseConditions(texts []string) ([]model.Condition, error) {
	conditions := make([]model.Condition, 0, len(texts))
	for _, text := range texts {
		c, err := model.ParseCondition(text)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, c)
	}
	return conditions, nil
}

// parsePosition converts a 1-based position into an index.
func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: position %q", assignment.ErrIndexOutOfRange, s)
	}
	return n - 1, nil
}

// resolveRule finds a rule by 1-based position, full ID or unique ID prefix.
func resolveRule(list *assignment.RuleList, ref string) (int, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > list.Len() {
			return 0, fmt.Errorf("%w: position %d (have %d rules)", assignment.ErrIndexOutOfRange, n, list.Len())
		}
		return n - 1, nil
	}

	if index := list.IndexOf(ref); index >= 0 {
		return index, nil
	}

	found := -1
	for i, rule := range list.Snapshot() {
		if strings.HasPrefix(rule.ID, ref) {
			if found >= 0 {
				return 0, fmt.Errorf("%w: %q", errAmbiguousRule, ref)
			}
			found = i
		}
	}
	if found < 0 {
		return 0, fmt.Errorf("%w: %s", assignment.ErrRuleNotFound, ref)
	}
	return found, nil
}
