package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"crossback/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ RunStore = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id               TEXT PRIMARY KEY,
	strategy         TEXT    NOT NULL,
	symbol           TEXT    NOT NULL,
	timeframe        TEXT    NOT NULL,
	start_ms         INTEGER NOT NULL,
	end_ms           INTEGER NOT NULL,
	fast_window      INTEGER NOT NULL,
	slow_window      INTEGER NOT NULL,
	initial_capital  REAL    NOT NULL,
	final_value      REAL    NOT NULL,
	total_return_pct REAL    NOT NULL,
	final_capital    REAL    NOT NULL,
	final_units      REAL    NOT NULL,
	last_close       REAL    NOT NULL,
	row_count        INTEGER NOT NULL,
	created_ms       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_symbol ON runs(symbol, id);
CREATE TABLE IF NOT EXISTS run_trades (
	run_id TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq    INTEGER NOT NULL,
	ts_ms  INTEGER NOT NULL,
	side   TEXT    NOT NULL,
	price  REAL    NOT NULL,
	PRIMARY KEY (run_id, seq)
);`

// SQLiteStore implements RunStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, creates the
// schema if needed and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// newID returns a time-sortable ULID.
func (s *SQLiteStore) newID(t time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(t), s.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// SaveRun inserts the run and its trades in a single transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *domain.Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.ID == "" {
		id, err := s.newID(run.CreatedAt)
		if err != nil {
			return fmt.Errorf("generating run id: %w", err)
		}
		run.ID = id
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	r := run.Result
	_, err = tx.ExecContext(ctx, `INSERT INTO runs (
		id, strategy, symbol, timeframe, start_ms, end_ms, fast_window, slow_window,
		initial_capital, final_value, total_return_pct, final_capital, final_units,
		last_close, row_count, created_ms
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Strategy, run.Symbol, run.Timeframe,
		run.Start.UnixMilli(), run.End.UnixMilli(), run.FastWindow, run.SlowWindow,
		r.InitialCapital, r.FinalValue, r.TotalReturnPct, r.FinalState.Capital, r.FinalState.Units,
		r.LastClose, r.Rows, run.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	for i, t := range r.Trades {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO run_trades (run_id, seq, ts_ms, side, price) VALUES (?, ?, ?, ?, ?)`,
			run.ID, i, t.Timestamp.UnixMilli(), string(t.Side), t.Price,
		)
		if err != nil {
			return fmt.Errorf("inserting trade %d of run %s: %w", i, run.ID, err)
		}
	}
	return tx.Commit()
}

const runColumns = `id, strategy, symbol, timeframe, start_ms, end_ms, fast_window, slow_window,
	initial_capital, final_value, total_return_pct, final_capital, final_units,
	last_close, row_count, created_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(sc rowScanner) (domain.Run, error) {
	var (
		run                     domain.Run
		startMs, endMs, created int64
	)
	r := &run.Result
	err := sc.Scan(
		&run.ID, &run.Strategy, &run.Symbol, &run.Timeframe, &startMs, &endMs,
		&run.FastWindow, &run.SlowWindow, &r.InitialCapital, &r.FinalValue,
		&r.TotalReturnPct, &r.FinalState.Capital, &r.FinalState.Units,
		&r.LastClose, &r.Rows, &created,
	)
	if err != nil {
		return run, err
	}
	run.Start = time.UnixMilli(startMs).UTC()
	run.End = time.UnixMilli(endMs).UTC()
	run.CreatedAt = time.UnixMilli(created).UTC()
	return run, nil
}

// GetRun retrieves a single run and its trade log.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ts_ms, side, price FROM run_trades WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run.Result.Trades = []domain.TradeEvent{}
	for rows.Next() {
		var (
			ts   int64
			side string
			t    domain.TradeEvent
		)
		if err := rows.Scan(&ts, &side, &t.Price); err != nil {
			return nil, err
		}
		t.Timestamp = time.UnixMilli(ts).UTC()
		t.Side = domain.TradeSide(side)
		run.Result.Trades = append(run.Result.Trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, symbol string, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + runColumns + ` FROM runs`
	args := []any{}
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []domain.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
