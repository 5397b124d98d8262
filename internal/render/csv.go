package render

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"crossback/internal/domain"
)

// WriteSignalsCSV writes one line per signal row with the trade, if any,
// that the simulator made on it:
//
//	timestamp,close,fast_avg,slow_avg,position,trade
func WriteSignalsCSV(w io.Writer, rows []domain.SignalRow, trades []domain.TradeEvent) error {
	at := make(map[int64]domain.TradeSide, len(trades))
	for _, t := range trades {
		at[t.Timestamp.UnixNano()] = t.Side
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "close", "fast_avg", "slow_avg", "position", "trade"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Timestamp.UTC().Format(time.RFC3339),
			formatFloat(r.Close),
			formatFloat(r.FastAvg),
			formatFloat(r.SlowAvg),
			strconv.Itoa(int(r.Position)),
			string(at[r.Timestamp.UnixNano()]),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTradesCSV writes the trade log as timestamp,side,price.
func WriteTradesCSV(w io.Writer, trades []domain.TradeEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "side", "price"}); err != nil {
		return err
	}
	for _, t := range trades {
		if err := cw.Write([]string{
			t.Timestamp.UTC().Format(time.RFC3339),
			string(t.Side),
			formatFloat(t.Price),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
