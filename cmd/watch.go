package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/pders01/casewatch/internal/config"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll continuously on the configured interval",
	Long: `Run check cycles forever, sleeping check_interval_hours between
them. An interrupt stops the loop cleanly between cycles. A cycle
that fails is logged and the loop waits for the next tick instead of
crashing.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	m := buildMonitor(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return m.Run(ctx)
}
