package strategy

import "crossback/internal/domain"

// Report values the final state and derives the percentage return. A flat
// state is worth its capital; a holding state is marked to market at
// lastClose rather than realised.
func Report(final domain.SimulationState, lastClose, initialCapital float64, trades []domain.TradeEvent) domain.Result {
	value := final.Capital
	if final.Holding() {
		value = final.Units * lastClose
	}

	if trades == nil {
		trades = []domain.TradeEvent{}
	}
	return domain.Result{
		TotalReturnPct: (value - initialCapital) / initialCapital * 100,
		Trades:         trades,
		InitialCapital: initialCapital,
		FinalValue:     value,
		FinalState:     final,
		LastClose:      lastClose,
	}
}
