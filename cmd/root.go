package cmd

import (
	"errors"
	"fmt"
	"os"

	"position-tally/core/logger"
	"position-tally/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configPath is the directory holding .env and config.toml / config.yaml.
var configPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "position-tally",
	Short: "Position reconciliation between brokers and fund administrators",
	Long: `Position Tally normalizes the daily position exports of brokers, fund
administrators and portfolio management systems into one canonical schema and
reconciles any two of them, reporting breaks and positions missing on either side.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. A failure is logged on the console and exits with status 1.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Debug level gives ISO8601 timestamps, console encoding a readable CLI line
		l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
		if logErr != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		l.Error("command failed", zap.String("kind", errorKind(err)), zap.Error(err))
		_ = l.Sync()
		os.Exit(1)
	}
}

// errorKind names the failure class of err for the exit log line.
func errorKind(err error) string {
	switch {
	case errors.Is(err, reconcile.ErrUnknownProvider):
		return "unknown_provider"
	case errors.Is(err, reconcile.ErrConfiguration):
		return "configuration"
	case errors.Is(err, reconcile.ErrSchemaViolation):
		return "schema_violation"
	case errors.Is(err, reconcile.ErrJoinIntegrity):
		return "join_integrity"
	case errors.Is(err, reconcile.ErrTransport):
		return "transport"
	default:
		return "internal"
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "Directory containing .env and config.toml")
}
