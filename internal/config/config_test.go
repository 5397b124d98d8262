package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"crossback/internal/domain"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "crossback-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}
	return tmpFile.Name()
}

// clearEnv unsets every override so tests only see their own settings.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATA_DIR", "SQLITE_PATH", "ALPACA_API_KEY", "ALPACA_API_SECRET",
		"ALPACA_BASE_URL", "ALPACA_DATA_URL", "LOG_LEVEL", "CROSSBACK_PORT",
		"APCA_API_KEY_ID", "APCA_API_SECRET_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `
storage:
  data_dir: "/tmp/crossback/data"
  sqlite_path: "/tmp/crossback/crossback.db"
server:
  host: "0.0.0.0"
  port: 9090
alpaca:
  api_key: "test-key"
  api_secret: "test-secret"
  base_url: "https://paper-api.alpaca.markets"
  data_url: "https://data.alpaca.markets"
logging:
  level: "debug"
  format: "json"
backtest:
  strategy: "sma-cross"
  symbol: "ETH/USD"
  timeframe: "1Hour"
  start: "2024-01-01"
  end: "2024-06-01T00:00:00Z"
  fast_window: 10
  slow_window: 50
  initial_capital: 2500
gather:
  rate_limit_per_min: 100
  max_attempts: 5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Storage --
	if cfg.Storage.DataDir != "/tmp/crossback/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/crossback/data")
	}
	if cfg.Storage.SQLitePath != "/tmp/crossback/crossback.db" {
		t.Errorf("Storage.SQLitePath = %q, want %q", cfg.Storage.SQLitePath, "/tmp/crossback/crossback.db")
	}

	// -- Server --
	if cfg.Server.Addr() != "0.0.0.0:9090" {
		t.Errorf("Server.Addr() = %q, want %q", cfg.Server.Addr(), "0.0.0.0:9090")
	}

	// -- Alpaca --
	if !cfg.Alpaca.HasCredentials() {
		t.Error("Alpaca.HasCredentials() = false, want true")
	}
	if cfg.Alpaca.DataURL != "https://data.alpaca.markets" {
		t.Errorf("Alpaca.DataURL = %q", cfg.Alpaca.DataURL)
	}

	// -- Logging --
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}

	// -- Backtest --
	b := cfg.Backtest
	if b.Symbol != "ETH/USD" || b.Timeframe != "1Hour" {
		t.Errorf("Backtest symbol/timeframe = %q/%q", b.Symbol, b.Timeframe)
	}
	p := b.Params()
	if p.FastWindow != 10 || p.SlowWindow != 50 || p.InitialCapital != 2500 {
		t.Errorf("Backtest.Params() = %+v", p)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Params.Validate() = %v", err)
	}
	start, end, err := b.Range(time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("Range() returned error: %v", err)
	}
	if !start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Range() = %v..%v", start, end)
	}

	// -- Gather --
	if cfg.Gather.RateLimitPerMin != 100 || cfg.Gather.MaxAttempts != 5 {
		t.Errorf("Gather = %+v", cfg.Gather)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() of a missing file returned error: %v", err)
	}

	b := cfg.Backtest
	if b.FastWindow != 42 || b.SlowWindow != 252 || b.InitialCapital != 10000 {
		t.Errorf("default windows/capital = %d/%d/%v, want 42/252/10000", b.FastWindow, b.SlowWindow, b.InitialCapital)
	}
	if b.Symbol != "BTC/USD" || b.Timeframe != "1Min" || b.Strategy != "sma-cross" {
		t.Errorf("default series = %+v", b)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Alpaca.HasCredentials() {
		t.Error("Alpaca.HasCredentials() = true with no credentials configured")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `
alpaca:
  api_key: "yaml-key"
  api_secret: "yaml-secret"
storage:
  data_dir: "/original/data"
`)

	// Set environment overrides.
	t.Setenv("ALPACA_API_KEY", "env-key")
	t.Setenv("DATA_DIR", "/env/data")
	t.Setenv("CROSSBACK_PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Alpaca.APIKey != "env-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q (env override)", cfg.Alpaca.APIKey, "env-key")
	}
	// api_secret should remain from YAML since no env override was set.
	if cfg.Alpaca.APISecret != "yaml-secret" {
		t.Errorf("Alpaca.APISecret = %q, want %q (from YAML)", cfg.Alpaca.APISecret, "yaml-secret")
	}
	if cfg.Storage.DataDir != "/env/data" {
		t.Errorf("Storage.DataDir = %q, want %q (env override)", cfg.Storage.DataDir, "/env/data")
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070 (env override)", cfg.Server.Port)
	}

	// Canonical SDK variables win over the ALPACA_* aliases.
	t.Setenv("APCA_API_KEY_ID", "sdk-key")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Alpaca.APIKey != "sdk-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q (canonical env)", cfg.Alpaca.APIKey, "sdk-key")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, "backtest: [not a map")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() of malformed YAML should fail")
	}
}

func TestInvalidWindowsFailValidation(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `
backtest:
  fast_window: 300
  slow_window: 252
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if err := cfg.Backtest.Params().Validate(); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
	}
}

func TestRangeDefaultsAndErrors(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	start, end, err := BacktestConfig{}.Range(now, 24*time.Hour)
	if err != nil {
		t.Fatalf("Range() returned error: %v", err)
	}
	if !end.Equal(now) || !start.Equal(now.Add(-24*time.Hour)) {
		t.Errorf("Range() = %v..%v, want lookback window ending now", start, end)
	}

	if _, _, err := (BacktestConfig{Start: "2024-07-02", End: "2024-07-01"}).Range(now, time.Hour); err == nil {
		t.Error("Range() with start after end should fail")
	}
	if _, _, err := (BacktestConfig{Start: "yesterday"}).Range(now, time.Hour); err == nil {
		t.Error("Range() with unparseable start should fail")
	}
}
