package alpaca

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"crossback/internal/gather"
	"crossback/internal/store"
)

var _ gather.Gatherer = (*Gatherer)(nil)

// Gatherer fetches bars for a list of symbols and writes them to a BarStore.
// One failing symbol does not stop the others; Run reports every failure.
type Gatherer struct {
	source    gather.Source
	store     store.BarStore
	symbols   []string
	timeframe string
	window    gather.DateRange
	log       *slog.Logger
}

// NewGatherer creates a Gatherer for symbols at timeframe over window.
func NewGatherer(source gather.Source, s store.BarStore, symbols []string, timeframe string, window gather.DateRange) *Gatherer {
	return &Gatherer{
		source:    source,
		store:     s,
		symbols:   symbols,
		timeframe: timeframe,
		window:    window,
		log:       slog.Default().With("gatherer", "alpaca-bars"),
	}
}

// Name returns the gatherer identifier.
func (g *Gatherer) Name() string { return "alpaca-bars" }

// Run fetches and stores bars for every symbol in turn.
func (g *Gatherer) Run(ctx context.Context) error {
	var errs []error
	runStart := time.Now()
	total := 0

	for i, sym := range g.symbols {
		if err := ctx.Err(); err != nil {
			return err
		}

		bars, err := g.source.FetchBars(ctx, sym, g.timeframe, g.window)
		if err != nil {
			g.log.Error("fetch failed", "symbol", sym, "err", err)
			errs = append(errs, err)
			continue
		}
		if err := g.store.WriteBars(ctx, bars); err != nil {
			g.log.Error("writing bars failed", "symbol", sym, "err", err)
			errs = append(errs, fmt.Errorf("writing %s: %w", sym, err))
			continue
		}
		total += len(bars)

		g.log.Info("symbol done",
			"symbol", sym,
			"progress", fmt.Sprintf("%d/%d", i+1, len(g.symbols)),
			"bars", len(bars),
			"elapsed", time.Since(runStart).Round(time.Millisecond),
		)
	}

	g.log.Info("complete", "symbols", len(g.symbols), "bars", total, "failed", len(errs))
	return errors.Join(errs...)
}
