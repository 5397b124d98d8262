package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"crossback/internal/gather"
	"crossback/internal/gather/alpaca"
	"crossback/internal/store"
)

var barsCmd = &cobra.Command{
	Use:   "bars [symbol...]",
	Short: "Download bars from Alpaca into the local parquet cache",
	Long: `Bars fetches historical bars for each symbol and merges them into the
parquet cache under the configured data directory. With no arguments the
configured backtest symbol is fetched.

Example:
  crossback bars BTC/USD ETH/USD --timeframe 1Hour --start 2024-01-01`,
	RunE: runBars,
}

var (
	barsTimeframe string
	barsStart     string
	barsEnd       string
	barsLookback  time.Duration
)

func init() {
	rootCmd.AddCommand(barsCmd)

	barsCmd.Flags().StringVarP(&barsTimeframe, "timeframe", "t", "", "bar timeframe (default from config)")
	barsCmd.Flags().StringVar(&barsStart, "start", "", "range start (RFC 3339 or YYYY-MM-DD)")
	barsCmd.Flags().StringVar(&barsEnd, "end", "", "range end (default now)")
	barsCmd.Flags().DurationVar(&barsLookback, "lookback", 30*24*time.Hour, "range length when --start is not given")
}

func runBars(cmd *cobra.Command, args []string) error {
	bc := cfg.Backtest
	if cmd.Flags().Changed("timeframe") {
		bc.Timeframe = barsTimeframe
	}
	bc.Start, bc.End = barsStart, barsEnd
	start, end, err := bc.Range(time.Now().UTC(), barsLookback)
	if err != nil {
		return err
	}

	symbols := args
	if len(symbols) == 0 {
		symbols = []string{bc.Symbol}
	}

	src := alpaca.NewSource(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL,
		cfg.Gather.RateLimitPerMin, cfg.Gather.MaxAttempts)
	bs := store.NewParquetStore(cfg.Storage.DataDir, bc.Timeframe)
	g := alpaca.NewGatherer(src, bs, symbols, bc.Timeframe, gather.DateRange{Start: start, End: end})
	if err := g.Run(cmd.Context()); err != nil {
		return err
	}

	cached, err := bs.ListSymbols(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d symbols cached for %s: %v\n", len(cached), bc.Timeframe, cached)
	return nil
}
