package strategy

import "crossback/internal/domain"

// Simulate walks rows once, moving all capital into the asset when the fast
// average is strictly above the slow one while flat, and all of it back to
// cash when the fast average is strictly below while holding. The first row
// never trades. Any open position at the end is marked to market at the last
// close.
//
// An empty rows slice is an *domain.InsufficientDataError, never a zero
// return.
func Simulate(rows []domain.SignalRow, initialCapital float64) (domain.Result, error) {
	if err := validateCapital(initialCapital); err != nil {
		return domain.Result{}, err
	}
	if len(rows) == 0 {
		return domain.Result{}, &domain.InsufficientDataError{}
	}

	state := domain.SimulationState{Capital: initialCapital}
	var trades []domain.TradeEvent

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		switch {
		case row.FastAvg > row.SlowAvg && state.Flat():
			state.Units = state.Capital / row.Close
			state.Capital = 0
			trades = append(trades, domain.TradeEvent{
				Timestamp: row.Timestamp,
				Side:      domain.TradeSideBuy,
				Price:     row.Close,
			})
		case row.FastAvg < row.SlowAvg && state.Holding():
			state.Capital = state.Units * row.Close
			state.Units = 0
			trades = append(trades, domain.TradeEvent{
				Timestamp: row.Timestamp,
				Side:      domain.TradeSideSell,
				Price:     row.Close,
			})
		}
	}

	result := Report(state, rows[len(rows)-1].Close, initialCapital, trades)
	result.Rows = len(rows)
	return result, nil
}
