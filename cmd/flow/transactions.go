package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/estimate-flow/internal/cli"
	"github.com/spf13/cobra"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txns"},
		Short:   "Inspect or delete stored transactions",
	}

	cmd.AddCommand(transactionsCountCmd())
	cmd.AddCommand(transactionsDeleteCmd())

	return cmd
}

func transactionsCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Show how many transactions are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			count, err := store.CountTransactions(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d transactions in %s\n", count, store.Path())
			return nil
		},
	}
}

func transactionsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the stored transactions of a period",
		Long: `Delete stored transactions in a budget period, for example before
re-importing a corrected export.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			period, err := periodFromFlag(cmd, time.Now())
			if err != nil {
				return err
			}

			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				ok, confirmErr := cli.NewLineReader(os.Stdin).Confirm(ctx, cmd.ErrOrStderr(),
					fmt.Sprintf("Delete transactions from %s?", period))
				if confirmErr != nil {
					return confirmErr
				}
				if !ok {
					return nil
				}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			removed, err := store.DeleteTransactions(ctx, period)
			if err != nil {
				return err
			}
			slog.Info(cli.FormatSuccess(fmt.Sprintf("Deleted %d transactions", removed)), "period", period.String())
			return nil
		},
	}

	addPeriodFlag(cmd)
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	return cmd
}
