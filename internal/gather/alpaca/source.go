// Package alpaca fetches historical bars from the Alpaca market-data API and
// caches them in a BarStore.
package alpaca

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"crossback/internal/domain"
	"crossback/internal/gather"
	"crossback/internal/util"
)

// ---------------------------------------------------------------------------
// Compile-time interface checks
// ---------------------------------------------------------------------------

var _ gather.Source = (*Source)(nil)
var _ barsClient = (*marketdata.Client)(nil)

// barsClient is the subset of *marketdata.Client used by Source.
type barsClient interface {
	GetCryptoBars(symbol string, req marketdata.GetCryptoBarsRequest) ([]marketdata.CryptoBar, error)
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// Source fetches bars for crypto pairs ("BTC/USD") from the crypto endpoint
// and for any other symbol from the stock endpoint.
type Source struct {
	client      barsClient
	limiter     *util.RateLimiter
	maxAttempts int
	baseDelay   time.Duration
	log         *slog.Logger
}

// NewSource creates a Source configured with the given Alpaca credentials.
// Crypto bars do not require credentials; stock bars do.
func NewSource(apiKey, apiSecret, dataURL string, rateLimitPerMin, maxAttempts int) *Source {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return newSource(marketdata.NewClient(opts), rateLimitPerMin, maxAttempts)
}

func newSource(client barsClient, rateLimitPerMin, maxAttempts int) *Source {
	return &Source{
		client:      client,
		limiter:     util.NewRateLimiter(rateLimitPerMin),
		maxAttempts: maxAttempts,
		baseDelay:   time.Second,
		log:         slog.Default().With("source", "alpaca"),
	}
}

// IsCrypto reports whether symbol names a crypto pair.
func IsCrypto(symbol string) bool {
	return strings.Contains(symbol, "/")
}

// FetchBars returns bars for symbol within r, sorted by timestamp with
// duplicate timestamps removed. Transient API failures are retried with
// exponential backoff.
func (s *Source) FetchBars(ctx context.Context, symbol, timeframe string, r gather.DateRange) ([]domain.Bar, error) {
	tf, err := ParseTimeFrame(timeframe)
	if err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(symbol)

	var bars []domain.Bar
	attempt := 0
	err = util.Retry(ctx, s.maxAttempts, s.baseDelay, func() error {
		attempt++
		if err := s.limiter.Wait(ctx); err != nil {
			return util.Permanent(err)
		}
		var ferr error
		bars, ferr = s.fetch(symbol, tf, r)
		if ferr != nil {
			s.log.Warn("fetch failed", "symbol", symbol, "attempt", attempt, "err", ferr)
		}
		return ferr
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %s %s bars: %w", symbol, timeframe, err)
	}

	bars = normalize(bars)
	s.log.Info("bars fetched", "symbol", symbol, "timeframe", timeframe, "bars", len(bars))
	return bars, nil
}

func (s *Source) fetch(symbol string, tf marketdata.TimeFrame, r gather.DateRange) ([]domain.Bar, error) {
	if IsCrypto(symbol) {
		cbs, err := s.client.GetCryptoBars(symbol, marketdata.GetCryptoBarsRequest{
			TimeFrame: tf,
			Start:     r.Start,
			End:       r.End,
		})
		if err != nil {
			return nil, fmt.Errorf("GetCryptoBars: %w", err)
		}
		bars := make([]domain.Bar, 0, len(cbs))
		for _, cb := range cbs {
			bars = append(bars, domain.Bar{
				Symbol:     symbol,
				Timestamp:  cb.Timestamp.UTC(),
				Open:       cb.Open,
				High:       cb.High,
				Low:        cb.Low,
				Close:      cb.Close,
				Volume:     cb.Volume,
				TradeCount: int64(cb.TradeCount),
				VWAP:       cb.VWAP,
			})
		}
		return bars, nil
	}

	sbs, err := s.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: tf,
		Start:     r.Start,
		End:       r.End,
	})
	if err != nil {
		return nil, fmt.Errorf("GetBars: %w", err)
	}
	bars := make([]domain.Bar, 0, len(sbs))
	for _, sb := range sbs {
		bars = append(bars, domain.Bar{
			Symbol:     symbol,
			Timestamp:  sb.Timestamp.UTC(),
			Open:       sb.Open,
			High:       sb.High,
			Low:        sb.Low,
			Close:      sb.Close,
			Volume:     float64(sb.Volume),
			TradeCount: int64(sb.TradeCount),
			VWAP:       sb.VWAP,
		})
	}
	return bars, nil
}

// normalize sorts bars by timestamp and keeps the last bar seen for each
// timestamp, so the series is strictly increasing.
func normalize(bars []domain.Bar) []domain.Bar {
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Timestamp.Equal(b.Timestamp) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// ParseTimeFrame parses strings such as "1Min", "15Min", "1Hour", "1Day",
// "1Week" and "1Month".
func ParseTimeFrame(s string) (marketdata.TimeFrame, error) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	n := 1
	if i > 0 {
		v, err := strconv.Atoi(s[:i])
		if err != nil || v <= 0 {
			return marketdata.TimeFrame{}, fmt.Errorf("invalid timeframe %q", s)
		}
		n = v
	}

	var unit marketdata.TimeFrameUnit
	switch strings.ToLower(s[i:]) {
	case "min", "m", "t":
		unit = marketdata.Min
	case "hour", "h":
		unit = marketdata.Hour
	case "day", "d":
		unit = marketdata.Day
	case "week", "w":
		unit = marketdata.Week
	case "month":
		unit = marketdata.Month
	default:
		return marketdata.TimeFrame{}, fmt.Errorf("invalid timeframe %q", s)
	}
	return marketdata.NewTimeFrame(n, unit), nil
}
