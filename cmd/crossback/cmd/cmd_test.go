package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossback/internal/config"
	"crossback/internal/domain"
	"crossback/internal/store"
)

func TestOverlayBacktestFlags(t *testing.T) {
	c := &cobra.Command{}
	c.Flags().AddFlagSet(runCmd.Flags())
	require.NoError(t, c.Flags().Parse([]string{"--symbol", "ETH/USD", "--fast", "5", "--slow", "20"}))

	base := config.BacktestConfig{Symbol: "BTC/USD", Timeframe: "1Min", FastWindow: 42, SlowWindow: 252, InitialCapital: 10000}
	got := overlayBacktestFlags(c, base)

	assert.Equal(t, "ETH/USD", got.Symbol)
	assert.Equal(t, 5, got.FastWindow)
	assert.Equal(t, 20, got.SlowWindow)
	assert.Equal(t, "1Min", got.Timeframe)
	assert.Equal(t, 10000.0, got.InitialCapital)
}

func TestVersionAndEmptyRuns(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "runs.db"))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", filepath.Join(dir, "missing.yaml"), "version"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "crossback version "+version+"\n", out.String())

	out.Reset()
	rootCmd.SetArgs([]string{"--config", filepath.Join(dir, "missing.yaml"), "runs"})
	require.NoError(t, rootCmd.Execute())
	assert.Empty(t, out.String())
	assert.Equal(t, dir, cfg.Storage.DataDir)
}

func TestRunFromStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "runs.db"))

	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	var bars []domain.Bar
	for i, c := range []float64{10, 10, 10, 10, 20, 30, 5, 5, 5, 5} {
		bars = append(bars, domain.Bar{
			Symbol: "BTC/USD", Timestamp: base.Add(time.Duration(i) * time.Minute),
			Open: c, High: c, Low: c, Close: c, Volume: 1,
		})
	}
	require.NoError(t, store.NewParquetStore(dir, "1Min").WriteBars(context.Background(), bars))

	csvPath := filepath.Join(dir, "signals.csv")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"run", "--from-store", "--no-account", "--no-save",
		"--symbol", "BTC/USD", "--timeframe", "1Min", "--strategy", "sma-cross",
		"--start", "2024-01-02T00:00:00Z", "--end", "2024-01-02T01:00:00Z",
		"--fast", "2", "--slow", "4", "--capital", "1000",
		"--signals-csv", csvPath,
	})
	require.NoError(t, rootCmd.Execute())

	got := out.String()
	assert.Contains(t, got, "Buy at 2024-01-02 00:04:00: 20.00\n")
	assert.Contains(t, got, "Sell at 2024-01-02 00:07:00: 5.00\n")
	assert.Contains(t, got, "Total Return: -75.00%\n")

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 8)
	assert.Equal(t, "timestamp,close,fast_avg,slow_avg,position,trade", lines[0])
	assert.True(t, strings.HasSuffix(lines[2], ",buy"), lines[2])

	_, err = os.Stat(filepath.Join(dir, "runs.db"))
	assert.True(t, os.IsNotExist(err), "--no-save must not open run history")
}
