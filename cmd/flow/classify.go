package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/estimate-flow/internal/cli"
	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Assign stored transactions to estimates",
		Long: `Run the assignment rules over the stored transactions in a budget period
and report the actual amount per estimate together with the transactions
no rule matched.`,
		Args: cobra.NoArgs,
		RunE: runClassify,
	}

	addPeriodFlag(cmd)
	cmd.Flags().BoolP("verbose", "v", false, "list the transactions under each estimate")

	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	period, err := periodFromFlag(cmd, time.Now())
	if err != nil {
		return err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	transactions, err := store.GetTransactions(ctx, period)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	list, err := loadRuleList(ctx, store)
	if err != nil {
		return err
	}

	slog.Debug("Classifying transactions", "period", period.String(), "transactions", len(transactions), "rules", list.Len())

	assignments := list.Classify(transactions)
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderAssignments(assignments, verbose))

	return nil
}
