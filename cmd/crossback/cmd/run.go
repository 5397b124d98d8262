package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"crossback/internal/config"
	"crossback/internal/domain"
	"crossback/internal/gather"
	"crossback/internal/gather/alpaca"
	"crossback/internal/render"
	"crossback/internal/store"
	"crossback/internal/strategy"
	"crossback/internal/strategy/builtins"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Backtest a moving-average crossover on one symbol",
	Long: `Run prints the brokerage account, loads bars for the symbol, generates
fast/slow SMA signals, simulates the strategy and prints every buy and sell
followed by the total return.

Bars come from the Alpaca market data API unless --from-store is set, in
which case the local parquet cache is read instead.

Example:
  crossback run --symbol ETH/USD --start 2024-01-01 --end 2024-02-01 --signals-csv eth.csv`,
	RunE: runBacktest,
}

var (
	runStrategy   string
	runSymbol     string
	runTimeframe  string
	runStart      string
	runEnd        string
	runLookback   time.Duration
	runFast       int
	runSlow       int
	runCapital    float64
	runFromStore  bool
	runCache      bool
	runNoSave     bool
	runNoAccount  bool
	runSignalsCSV string
	runTradesCSV  string
)

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringVarP(&runStrategy, "strategy", "s", "", "strategy name (default from config)")
	f.StringVarP(&runSymbol, "symbol", "y", "", "symbol, e.g. BTC/USD or AAPL (default from config)")
	f.StringVarP(&runTimeframe, "timeframe", "t", "", "bar timeframe, e.g. 1Min, 15Min, 1Hour, 1Day")
	f.StringVar(&runStart, "start", "", "range start (RFC 3339 or YYYY-MM-DD)")
	f.StringVar(&runEnd, "end", "", "range end (RFC 3339 or YYYY-MM-DD, default now)")
	f.DurationVar(&runLookback, "lookback", 30*24*time.Hour, "range length when --start is not given")
	f.IntVar(&runFast, "fast", 0, "fast SMA window in bars")
	f.IntVar(&runSlow, "slow", 0, "slow SMA window in bars")
	f.Float64Var(&runCapital, "capital", 0, "initial capital")
	f.BoolVar(&runFromStore, "from-store", false, "read bars from the local parquet cache instead of Alpaca")
	f.BoolVar(&runCache, "cache", true, "write fetched bars to the local parquet cache")
	f.BoolVar(&runNoSave, "no-save", false, "do not record the run in history")
	f.BoolVar(&runNoAccount, "no-account", false, "skip the account query")
	f.StringVar(&runSignalsCSV, "signals-csv", "", "write the signal table to this CSV file")
	f.StringVar(&runTradesCSV, "trades-csv", "", "write the trade log to this CSV file")
}

// overlayBacktestFlags applies explicitly set flags on top of the config.
func overlayBacktestFlags(cmd *cobra.Command, b config.BacktestConfig) config.BacktestConfig {
	f := cmd.Flags()
	if f.Changed("strategy") {
		b.Strategy = runStrategy
	}
	if f.Changed("symbol") {
		b.Symbol = runSymbol
	}
	if f.Changed("timeframe") {
		b.Timeframe = runTimeframe
	}
	if f.Changed("start") {
		b.Start = runStart
	}
	if f.Changed("end") {
		b.End = runEnd
	}
	if f.Changed("fast") {
		b.FastWindow = runFast
	}
	if f.Changed("slow") {
		b.SlowWindow = runSlow
	}
	if f.Changed("capital") {
		b.InitialCapital = runCapital
	}
	return b
}

func runBacktest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	bc := overlayBacktestFlags(cmd, cfg.Backtest)
	p := bc.Params()
	if err := p.Validate(); err != nil {
		return err
	}
	start, end, err := bc.Range(time.Now().UTC(), runLookback)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if !runNoAccount {
		b := newBroker(cfg)
		acct, err := b.GetAccount(ctx)
		if err != nil {
			slog.Warn("account query failed", "broker", b.Name(), "error", err)
		} else if err := render.WriteAccount(out, acct); err != nil {
			return err
		}
	}

	barStore := store.NewParquetStore(cfg.Storage.DataDir, bc.Timeframe)
	var bars []domain.Bar
	if runFromStore {
		bars, err = barStore.ReadBars(ctx, bc.Symbol, start, end)
		if err != nil {
			return fmt.Errorf("reading cached bars: %w", err)
		}
	} else {
		src := alpaca.NewSource(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL,
			cfg.Gather.RateLimitPerMin, cfg.Gather.MaxAttempts)
		bars, err = src.FetchBars(ctx, bc.Symbol, bc.Timeframe, gather.DateRange{Start: start, End: end})
		if err != nil {
			return err
		}
		if runCache && len(bars) > 0 {
			if err := barStore.WriteBars(ctx, bars); err != nil {
				slog.Warn("caching bars", "error", err)
			}
		}
	}
	slog.Info("bars loaded", "symbol", bc.Symbol, "timeframe", bc.Timeframe, "count", len(bars))

	reg := strategy.NewRegistry()
	builtins.Register(reg)
	bt, err := strategy.NewBacktester(barStore, reg).RunBars(ctx, bc.Strategy, bc.Symbol, bars, p)
	if err != nil {
		return err
	}

	if err := render.WriteResult(out, render.Header{
		Symbol:     bc.Symbol,
		Strategy:   bt.Strategy,
		Timeframe:  bc.Timeframe,
		FastWindow: p.FastWindow,
		SlowWindow: p.SlowWindow,
	}, bt.Result); err != nil {
		return err
	}

	if runSignalsCSV != "" {
		if err := writeFile(runSignalsCSV, func(f *os.File) error {
			return render.WriteSignalsCSV(f, bt.Rows, bt.Result.Trades)
		}); err != nil {
			return err
		}
	}
	if runTradesCSV != "" {
		if err := writeFile(runTradesCSV, func(f *os.File) error {
			return render.WriteTradesCSV(f, bt.Result.Trades)
		}); err != nil {
			return err
		}
	}

	if runNoSave {
		return nil
	}
	rs, err := openRunStore(cfg)
	if err != nil {
		return err
	}
	defer rs.Close()

	run := &domain.Run{
		Strategy:   bt.Strategy,
		Symbol:     bc.Symbol,
		Timeframe:  bc.Timeframe,
		Start:      start,
		End:        end,
		FastWindow: p.FastWindow,
		SlowWindow: p.SlowWindow,
		Result:     bt.Result,
	}
	if err := rs.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	slog.Info("run saved", "id", run.ID)
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
