package cmd

import (
	"github.com/spf13/cobra"

	"crossback/internal/render"
)

var runsCmd = &cobra.Command{
	Use:   "runs [id]",
	Short: "List recorded backtest runs or show one in full",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRuns,
}

var (
	runsSymbol string
	runsLimit  int
)

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().StringVarP(&runsSymbol, "symbol", "y", "", "only list runs for this symbol")
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum number of runs to list")
}

func runRuns(cmd *cobra.Command, args []string) error {
	rs, err := openRunStore(cfg)
	if err != nil {
		return err
	}
	defer rs.Close()

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		run, err := rs.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render.WriteResult(out, render.Header{
			Symbol:     run.Symbol,
			Strategy:   run.Strategy,
			Timeframe:  run.Timeframe,
			FastWindow: run.FastWindow,
			SlowWindow: run.SlowWindow,
		}, run.Result)
	}

	runs, err := rs.ListRuns(cmd.Context(), runsSymbol, runsLimit)
	if err != nil {
		return err
	}
	return render.WriteRuns(out, runs)
}
