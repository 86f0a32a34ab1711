package cmd

import (
	"context"
	"fmt"
	"time"

	"position-tally/core/config"
	"position-tally/core/logger"
	"position-tally/core/reconcile"
	"position-tally/core/utils"
	"position-tally/feature/history"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the reconcile command
	leftProvider   string
	rightProviders []string
	runDate        string
	runAccounts    []string
	primaryID      string
	fallbackID     string
	diffPolicy     string
	outputDir      string
	storeRun       bool
	noExport       bool
)

// reconcileCmd reconciles one provider against one or more counterparties.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the positions of two providers",
	Long: `Reconcile the canonical positions of a left provider against one or more right providers.

Writes three CSV files per pair (diff, left_only, right_only) to the output directory
and optionally records the run in the history database.

Examples:
  # IB against the fund administrator for the last business day
  reconcile --left ib --right formidium

  # One broker against several counterparties, restricted to two accounts
  reconcile --left rjo --right formidium --right enfusion --date 2024-12-31 --accounts 30012,30013

  # Match on the yellow key only, flag any difference, and store the run
  reconcile --left ib --right enfusion --primary bbg_yellow --fallback "" --policy any --store`,
	RunE: runReconcile,
}

func init() {
	f := reconcileCmd.Flags()
	f.StringVar(&leftProvider, "left", "", "Left provider label")
	f.StringSliceVar(&rightProviders, "right", nil, "Right provider label (repeatable)")
	f.StringVar(&runDate, "date", "", "Position date YYYY-MM-DD (default: last business day)")
	f.StringSliceVar(&runAccounts, "accounts", nil, "Account numbers to keep (default: provider configuration)")
	f.StringVar(&primaryID, "primary", "", "Primary identifier (description, bbg_yellow)")
	f.StringVar(&fallbackID, "fallback", "", "Fallback identifier, empty string disables it")
	f.StringVar(&diffPolicy, "policy", "", "Diff policy (all, any)")
	f.StringVar(&outputDir, "out", "", "Output directory or key prefix for CSV results")
	f.BoolVar(&storeRun, "store", false, "Record the run in the history database")
	f.BoolVar(&noExport, "no-export", false, "Skip writing CSV results")
	_ = reconcileCmd.MarkFlagRequired("left")
	_ = reconcileCmd.MarkFlagRequired("right")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("out") {
		cfg.Reconcile.OutputDir = outputDir
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	date, err := parseRunDate(runDate)
	if err != nil {
		return err
	}

	var store *history.Store
	if storeRun || cfg.Reconcile.Store {
		store, err = newStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
	}

	svc, err := newService(ctx, cfg, newRegistry(cfg, l), l, store)
	if err != nil {
		return err
	}

	req := svc.Defaults(leftProvider, "", date)
	req.Accounts = runAccounts
	req.Store = store != nil
	req.Export = !noExport
	if cmd.Flags().Changed("primary") {
		req.Primary = reconcile.Identifier(primaryID)
	}
	if cmd.Flags().Changed("fallback") {
		req.Fallback = reconcile.Identifier(fallbackID)
	}
	if cmd.Flags().Changed("policy") {
		req.Policy = diffPolicy
	}

	l.Info("Starting reconciliation",
		zap.String("left", leftProvider),
		zap.Strings("right", rightProviders),
		zap.String("date", date.Format(time.DateOnly)),
	)

	outcomes, err := svc.RunAll(ctx, req, rightProviders...)
	if err != nil {
		return err
	}

	for _, out := range outcomes {
		for _, f := range out.Files {
			l.Info("Result written", zap.String("run_id", out.ID), zap.String("file", f))
		}
	}
	return nil
}

// parseRunDate parses a YYYY-MM-DD flag, defaulting to the last business day before today.
func parseRunDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)
		return utils.LastBusinessDay(yesterday), nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}
