package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pders01/casewatch/internal/config"
	"github.com/pders01/casewatch/internal/monitor"
	"github.com/pders01/casewatch/internal/notify"
	"github.com/pders01/casewatch/internal/store"
	"github.com/pders01/casewatch/internal/uscis"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "casewatch",
	Short: "Monitor USCIS case status changes and send notifications",
	Long: `casewatch polls the USCIS case-service API for the configured
receipt numbers, detects meaningful changes (new events, evidence
requests, notices), and forwards human-readable summaries to a Home
Assistant notify service.

Volatile timestamp fields are filtered out before comparison, so only
real status movement triggers a notification.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "casewatch"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("check_interval_hours", 6)
	viper.SetDefault("uscis_api_base", uscis.DefaultBaseURL)
	viper.SetDefault("browser_cookies_file", "uscis_cookies.txt")
	viper.SetDefault("state_file", "uscis_state.json")
	viper.SetDefault("log_level", "INFO")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN", "WARNING":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// buildMonitor wires the monitor from loaded configuration.
func buildMonitor(cfg *config.Config, logger *slog.Logger) *monitor.Monitor {
	fetcher := uscis.NewClient(cfg.APIBase, cfg.CookieFile, logger)
	notifier := notify.NewHomeAssistant(cfg.HomeAssistant, logger)
	st := store.NewFileStore(cfg.StateFile)
	return monitor.New(cfg, fetcher, notifier, st, logger)
}
