package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/estimate-flow/internal/cli"
	"github.com/Veraticus/estimate-flow/internal/importer"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored transactions as transaction XML",
		Long: `Write the stored transactions of a budget period in the transaction XML
format, which "flow import" reads back.`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	addPeriodFlag(cmd)
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	period, err := periodFromFlag(cmd, time.Now())
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	transactions, err := store.GetTransactions(ctx, period)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	output, _ := cmd.Flags().GetString("output")
	if output != "" {
		f, createErr := os.Create(output)
		if createErr != nil {
			return fmt.Errorf("failed to create %s: %w", output, createErr)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := importer.WriteNative(w, transactions); err != nil {
		return fmt.Errorf("failed to write transactions: %w", err)
	}

	if output != "" {
		slog.Info(cli.FormatSuccess("Exported transactions"), "file", output, "count", len(transactions))
	}
	return nil
}
