package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/pders01/casewatch/internal/config"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single poll cycle",
	Long: `Fetch every configured case once, compare against the persisted
snapshots, send notifications for meaningful changes, and write the
new snapshot set.

Cases that fail to fetch are skipped for this cycle and logged; they
do not abort the run.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	m := buildMonitor(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting case check")
	if err := m.RunOnce(ctx); err != nil {
		return err
	}
	logger.Info("case check completed")

	return nil
}
