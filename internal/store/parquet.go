package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"crossback/internal/domain"
)

// Compile-time interface check.
var _ BarStore = (*ParquetStore)(nil)

// ParquetStore implements BarStore using Parquet files on disk. One store
// holds a single bar timeframe.
type ParquetStore struct {
	DataDir   string
	Timeframe string
}

// NewParquetStore creates a new ParquetStore rooted at the given data
// directory for bars of the given timeframe (e.g. "1Min", "1Day").
func NewParquetStore(dataDir, timeframe string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir, Timeframe: timeframe}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// BarRecord is the Parquet schema for bar data.
type BarRecord struct {
	Symbol     string  `parquet:"symbol"`
	Timestamp  int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open       float64 `parquet:"open"`
	High       float64 `parquet:"high"`
	Low        float64 `parquet:"low"`
	Close      float64 `parquet:"close"`
	Volume     float64 `parquet:"volume"`
	TradeCount int64   `parquet:"trade_count"`
	VWAP       float64 `parquet:"vwap"`
}

func toRecord(b domain.Bar) BarRecord {
	return BarRecord{
		Symbol:     b.Symbol,
		Timestamp:  b.Timestamp.UnixMilli(),
		Open:       b.Open,
		High:       b.High,
		Low:        b.Low,
		Close:      b.Close,
		Volume:     b.Volume,
		TradeCount: b.TradeCount,
		VWAP:       b.VWAP,
	}
}

func (r BarRecord) toBar() domain.Bar {
	return domain.Bar{
		Symbol:     r.Symbol,
		Timestamp:  time.UnixMilli(r.Timestamp).UTC(),
		Open:       r.Open,
		High:       r.High,
		Low:        r.Low,
		Close:      r.Close,
		Volume:     r.Volume,
		TradeCount: r.TradeCount,
		VWAP:       r.VWAP,
	}
}

// ---------------------------------------------------------------------------
// BarStore implementation
// ---------------------------------------------------------------------------

// WriteBars writes bar data to Parquet files organized by symbol and
// partition. Daily and coarser timeframes are partitioned by year, intraday
// timeframes by month:
//
//	<DataDir>/<timeframe>/<SYMBOL>/<YYYY>.parquet
//	<DataDir>/<timeframe>/<SYMBOL>/<YYYY-MM>.parquet
func (s *ParquetStore) WriteBars(ctx context.Context, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	type key struct {
		symbol    string
		partition string
	}
	groups := make(map[key][]BarRecord)
	for _, b := range bars {
		k := key{symbol: b.Symbol, partition: s.partition(b.Timestamp)}
		groups[k] = append(groups[k], toRecord(b))
	}

	for k, records := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := s.partitionPath(k.symbol, k.partition)

		// Read existing records to merge. An unreadable partition is an
		// error; overwriting it would drop the cached bars.
		existing, err := readParquetFile[BarRecord](path)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		merged := mergeBarRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing bars for %s/%s: %w", k.symbol, k.partition, err)
		}
	}
	return nil
}

// ReadBars reads bar data from Parquet files for the given symbol and time
// range. Missing partitions are skipped.
func (s *ParquetStore) ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	var bars []domain.Bar
	for _, part := range s.partitionsBetween(start, end) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := s.partitionPath(symbol, part)

		records, err := readParquetFile[BarRecord](path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		for _, r := range records {
			ts := time.UnixMilli(r.Timestamp)
			if !ts.Before(start) && !ts.After(end) {
				bars = append(bars, r.toBar())
			}
		}
	}
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})
	return bars, nil
}

// ListSymbols lists all symbols that have bar data for the store's timeframe.
func (s *ParquetStore) ListSymbols(_ context.Context) ([]string, error) {
	dir := filepath.Join(s.DataDir, s.Timeframe)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, symbolFromDir(e.Name()))
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

func (s *ParquetStore) intraday() bool {
	tf := strings.ToLower(s.Timeframe)
	return !(strings.HasSuffix(tf, "day") || strings.HasSuffix(tf, "week") || strings.HasSuffix(tf, "month"))
}

func (s *ParquetStore) partition(t time.Time) string {
	t = t.UTC()
	if s.intraday() {
		return t.Format("2006-01")
	}
	return t.Format("2006")
}

// partitionsBetween lists every partition key overlapping [start, end].
func (s *ParquetStore) partitionsBetween(start, end time.Time) []string {
	start, end = start.UTC(), end.UTC()
	if end.Before(start) {
		return nil
	}
	var parts []string
	if s.intraday() {
		for m := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !m.After(end); m = m.AddDate(0, 1, 0) {
			parts = append(parts, m.Format("2006-01"))
		}
		return parts
	}
	for y := start.Year(); y <= end.Year(); y++ {
		parts = append(parts, fmt.Sprintf("%d", y))
	}
	return parts
}

// partitionPath returns the filesystem path for a bar Parquet file.
func (s *ParquetStore) partitionPath(symbol, partition string) string {
	return filepath.Join(s.DataDir, s.Timeframe, dirForSymbol(symbol), partition+".parquet")
}

// dirForSymbol maps a symbol to a directory name; crypto pairs such as
// "BTC/USD" are stored as "BTC-USD".
func dirForSymbol(symbol string) string {
	return strings.ReplaceAll(strings.ToUpper(symbol), "/", "-")
}

func symbolFromDir(name string) string {
	return strings.ReplaceAll(name, "-", "/")
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeBarRecords deduplicates bar records by (symbol, timestamp), preferring
// new records over existing ones.
func mergeBarRecords(existing, incoming []BarRecord) []BarRecord {
	type key struct {
		symbol string
		ts     int64
	}
	seen := make(map[key]BarRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Symbol, r.Timestamp}] = r
	}
	for _, r := range incoming {
		seen[key{r.Symbol, r.Timestamp}] = r
	}

	merged := make([]BarRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
