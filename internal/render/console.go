package render

import (
	"fmt"
	"io"
	"time"

	"crossback/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

// Header describes the run being rendered.
type Header struct {
	Symbol     string
	Strategy   string
	Timeframe  string
	FastWindow int
	SlowWindow int
}

// WriteResult prints the trade log and the performance summary of res.
func WriteResult(w io.Writer, h Header, res domain.Result) error {
	ew := &errWriter{w: w}

	ew.printf("%s %s %s (%d/%d SMA), %s signal rows\n",
		h.Symbol, h.Strategy, h.Timeframe, h.FastWindow, h.SlowWindow, FormatInt(res.Rows))

	for _, t := range res.Trades {
		verb := "Buy"
		if t.Side == domain.TradeSideSell {
			verb = "Sell"
		}
		ew.printf("%s at %s: %s\n", verb, t.Timestamp.UTC().Format(timeLayout), FormatPrice(t.Price))
	}

	s := res.Summary()
	ew.printf("Trades: %d buys, %d sells, %d round trips", s.Buys, s.Sells, s.RoundTrips)
	if s.RoundTrips > 0 {
		ew.printf(", win rate %.1f%%", s.WinRate*100)
	}
	ew.printf("\n")
	if s.OpenAtEnd {
		ew.printf("Open position: %.8f units marked at %s\n", res.FinalState.Units, FormatPrice(res.LastClose))
	}
	ew.printf("Initial capital: %s\n", FormatMoney(res.InitialCapital))
	ew.printf("Final value: %s\n", FormatMoney(res.FinalValue))
	ew.printf("Total Return: %.2f%%\n", res.TotalReturnPct)
	return ew.err
}

// WriteAccount prints buying power and a warning for blocked accounts.
func WriteAccount(w io.Writer, a *domain.AccountInfo) error {
	ew := &errWriter{w: w}
	if a.TradingBlocked {
		ew.printf("Account is currently restricted from trading.\n")
	}
	ew.printf("$%s is available as buying power.\n", a.BuyingPower.StringFixed(2))
	return ew.err
}

// WriteRuns prints one line per stored run.
func WriteRuns(w io.Writer, runs []domain.Run) error {
	ew := &errWriter{w: w}
	for _, r := range runs {
		ew.printf("%s  %s  %-10s %-6s %3d/%-4d %s..%s  %s\n",
			r.ID,
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.Symbol,
			r.Timeframe,
			r.FastWindow,
			r.SlowWindow,
			r.Start.UTC().Format(time.DateOnly),
			r.End.UTC().Format(time.DateOnly),
			FormatReturn(r.Result.TotalReturnPct),
		)
	}
	return ew.err
}

// errWriter keeps the first write error so callers check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
