package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"position-tally/core/config"
	"position-tally/core/logger"
	"position-tally/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the positions command
	positionsProvider string
	positionsDate     string
	positionsAccounts []string
	positionsFormat   string
)

// positionsCmd dumps the canonical positions of one provider to stdout.
var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Print the canonical positions of a provider",
	Long: `Load one provider export, normalize it and print the canonical table.

Examples:
  positions --provider rjo --date 2024-12-31
  positions --provider ib --accounts U8674826 --format json`,
	RunE: runPositions,
}

func init() {
	f := positionsCmd.Flags()
	f.StringVar(&positionsProvider, "provider", "", "Provider label")
	f.StringVar(&positionsDate, "date", "", "Position date YYYY-MM-DD (default: last business day)")
	f.StringSliceVar(&positionsAccounts, "accounts", nil, "Account numbers to keep")
	f.StringVar(&positionsFormat, "format", "csv", "Output format (csv, json)")
	_ = positionsCmd.MarkFlagRequired("provider")

	RootCmd.AddCommand(positionsCmd)
}

func runPositions(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	date, err := parseRunDate(positionsDate)
	if err != nil {
		return err
	}

	svc, err := newService(ctx, cfg, newRegistry(cfg, l), l, nil)
	if err != nil {
		return err
	}

	table, err := svc.Table(ctx, positionsProvider, date, positionsAccounts)
	if err != nil {
		return err
	}
	l.Debug("Positions loaded", zap.String("provider", positionsProvider), zap.Int("rows", table.Len()))

	switch positionsFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(table.Rows())
	case "csv":
		w := csv.NewWriter(os.Stdout)
		if err := w.Write(reconcile.PositionColumns); err != nil {
			return err
		}
		for _, p := range table.Rows() {
			if err := w.Write(p.Record()); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	default:
		return fmt.Errorf("unknown format %q", positionsFormat)
	}
}
