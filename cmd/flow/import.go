package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/estimate-flow/internal/cli"
	"github.com/Veraticus/estimate-flow/internal/common"
	"github.com/Veraticus/estimate-flow/internal/config"
	"github.com/Veraticus/estimate-flow/internal/importer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file or glob>...",
		Short: "Import transactions from exported files",
		Long: `Import transactions from CSV, Mint CSV, GnuCash, OFX/QFX or transaction XML files.

The format of each file is detected from its first lines, and gzip-compressed
files are unpacked on the fly. Only transactions inside the budget period are
kept. Transactions already in the database are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	addPeriodFlag(cmd)
	cmd.Flags().String("profile", "", "named CSV column profile from the config file")
	cmd.Flags().String("date-format", "", "Go date layout for CSV files (default: "+config.DefaultDateFormat+")")
	cmd.Flags().Bool("dry-run", false, "Show what would be imported without saving")
	cmd.Flags().Bool("no-progress", false, "Disable the progress bar")

	_ = viper.BindPFlag(config.KeyDateFormat, cmd.Flags().Lookup("date-format"))

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	period, err := periodFromFlag(cmd, time.Now())
	if err != nil {
		return err
	}

	opts := importer.Options{DateLayout: viper.GetString(config.KeyDateFormat)}
	if name, _ := cmd.Flags().GetString("profile"); name != "" {
		profile, profileErr := config.FindCSVProfile(viper.GetViper(), name)
		if profileErr != nil {
			return profileErr
		}
		opts.Profile = profile
	}

	paths, err := expandPaths(args)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	slog.Info(cli.FormatTitle("Importing transactions"), "period", period.String(), "files", len(paths))

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	summaries := make([]cli.ImportSummary, 0, len(paths))
	for _, path := range paths {
		fileOpts := opts
		if !noProgress {
			fileOpts.Progress = cli.NewImportProgress(os.Stderr, filepath.Base(path), fileSize(path))
		}

		transactions, format, importErr := importer.ImportFile(ctx, path, period, fileOpts)
		if importErr != nil {
			common.LogError(importErr, "Import failed", common.Fields{"file": path})
			return common.NewUserError(importFailureMessage(path, importErr), importErr)
		}

		summary := cli.ImportSummary{Path: path, Format: format.String(), Parsed: len(transactions)}
		if !dryRun && len(transactions) > 0 {
			inserted, saveErr := store.SaveTransactions(ctx, transactions)
			if saveErr != nil {
				return fmt.Errorf("failed to save transactions from %s: %w", path, saveErr)
			}
			summary.Inserted = inserted
		}
		summaries = append(summaries, summary)

		slog.Debug("Imported file", "file", path, "format", format.String(), "transactions", len(transactions))
	}

	if dryRun {
		slog.Info(cli.FormatWarning("Dry run mode - not saving to database"))
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderImportSummary(summaries))

	return nil
}

// importFailureMessage explains an aborted import. Nothing from the file is saved.
func importFailureMessage(path string, err error) string {
	var importErr *common.ImportError
	switch {
	case errors.Is(err, common.ErrUnsupportedFormat):
		return fmt.Sprintf("%s is not a supported file type (CSV, Mint CSV, GnuCash, OFX or transaction XML)", path)
	case errors.As(err, &importErr) && importErr.Line > 0:
		return fmt.Sprintf("Could not import %s: %s on line %d; nothing was saved", path, importErr.Message, importErr.Line)
	case errors.As(err, &importErr):
		return fmt.Sprintf("Could not import %s: %s; nothing was saved", path, importErr.Message)
	default:
		return fmt.Sprintf("Could not import %s; nothing was saved", path)
	}
}
