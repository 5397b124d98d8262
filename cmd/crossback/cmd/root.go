package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"crossback/internal/broker"
	"crossback/internal/config"
	"crossback/internal/store"
	"crossback/internal/util"
)

var (
	cfgPath  string
	logLevel string

	// cfg is loaded once by the root command before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "crossback",
	Short: "Backtest moving-average crossover strategies on Alpaca bar data",
	Long: `Crossback fetches historical bars from Alpaca, computes a fast and a slow
simple moving average over closing prices, and simulates an all-in long-only
strategy that buys when the fast average crosses above the slow one and sells
when it crosses back below.

Bars can be cached locally as parquet and every run is recorded in SQLite.

Example:
  crossback run --symbol BTC/USD --timeframe 1Min --fast 42 --slow 252`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if logLevel != "" {
			c.Logging.Level = logLevel
		}
		util.SetDefault(util.NewLogger(c.Logging.Level, c.Logging.Format, os.Stderr))
		cfg = c
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. SIGINT and SIGTERM cancel the command's context.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.PathFromEnv(), "path to YAML config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// newBroker returns the Alpaca broker when credentials are configured and a
// simulated paper account otherwise.
func newBroker(c *config.Config) broker.Broker {
	if c.Alpaca.HasCredentials() {
		return broker.NewAlpacaBroker(c.Alpaca.APIKey, c.Alpaca.APISecret, c.Alpaca.BaseURL)
	}
	slog.Warn("no Alpaca credentials configured, using simulated account")
	return broker.NewSimulatorBroker(c.Backtest.InitialCapital)
}

func openRunStore(c *config.Config) (*store.SQLiteStore, error) {
	rs, err := store.NewSQLiteStore(c.Storage.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("opening run history: %w", err)
	}
	return rs, nil
}
