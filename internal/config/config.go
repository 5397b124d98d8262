package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"crossback/internal/strategy"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for crossback.
type Config struct {
	Storage  Storage        `yaml:"storage"`
	Server   Server         `yaml:"server"`
	Alpaca   Alpaca         `yaml:"alpaca"`
	Logging  Logging        `yaml:"logging"`
	Backtest BacktestConfig `yaml:"backtest"`
	Gather   GatherConfig   `yaml:"gather"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port for net/http.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Alpaca holds credentials and endpoints for the Alpaca APIs.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	DataURL   string `yaml:"data_url"`
}

// HasCredentials reports whether both key and secret are set.
func (a Alpaca) HasCredentials() bool {
	return a.APIKey != "" && a.APISecret != ""
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// BacktestConfig selects the series and strategy parameters of a backtest.
type BacktestConfig struct {
	Strategy       string  `yaml:"strategy"`
	Symbol         string  `yaml:"symbol"`
	Timeframe      string  `yaml:"timeframe"`
	Start          string  `yaml:"start"`
	End            string  `yaml:"end"`
	FastWindow     int     `yaml:"fast_window"`
	SlowWindow     int     `yaml:"slow_window"`
	InitialCapital float64 `yaml:"initial_capital"`
}

// Params returns the strategy parameters carried by the backtest section.
func (b BacktestConfig) Params() strategy.Params {
	return strategy.Params{
		FastWindow:     b.FastWindow,
		SlowWindow:     b.SlowWindow,
		InitialCapital: b.InitialCapital,
	}
}

// Range parses Start and End. An empty End means now; an empty Start means
// lookback before End.
func (b BacktestConfig) Range(now time.Time, lookback time.Duration) (time.Time, time.Time, error) {
	end := now
	if b.End != "" {
		t, err := ParseTime(b.End)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing end %q: %w", b.End, err)
		}
		end = t
	}
	start := end.Add(-lookback)
	if b.Start != "" {
		t, err := ParseTime(b.Start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing start %q: %w", b.Start, err)
		}
		start = t
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start %s is not before end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return start, end, nil
}

// ParseTime accepts RFC 3339 timestamps or YYYY-MM-DD dates (UTC midnight).
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}

// GatherConfig controls historical bar fetching.
type GatherConfig struct {
	RateLimitPerMin int `yaml:"rate_limit_per_min"`
	MaxAttempts     int `yaml:"max_attempts"`
}

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

// ApplyDefaults fills every unset field with its documented default.
func (c *Config) ApplyDefaults() {
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "data/crossback.db"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Alpaca.BaseURL == "" {
		c.Alpaca.BaseURL = "https://paper-api.alpaca.markets"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	b := &c.Backtest
	if b.Strategy == "" {
		b.Strategy = "sma-cross"
	}
	if b.Symbol == "" {
		b.Symbol = "BTC/USD"
	}
	if b.Timeframe == "" {
		b.Timeframe = "1Min"
	}
	if b.FastWindow == 0 {
		b.FastWindow = strategy.DefaultFastWindow
	}
	if b.SlowWindow == 0 {
		b.SlowWindow = strategy.DefaultSlowWindow
	}
	if b.InitialCapital == 0 {
		b.InitialCapital = strategy.DefaultInitialCapital
	}

	if c.Gather.RateLimitPerMin == 0 {
		c.Gather.RateLimitPerMin = 200
	}
	if c.Gather.MaxAttempts == 0 {
		c.Gather.MaxAttempts = 3
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, applies environment variable overrides and fills defaults.
// A missing file is not an error: the result is defaults plus environment.
// A .env file in the working directory, if present, is loaded first without
// overriding variables already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	applyEnvOverrides(cfg)
	cfg.ApplyDefaults()

	return cfg, nil
}

// PathFromEnv returns $CROSSBACK_CONFIG or the default config path.
func PathFromEnv() string {
	if p := os.Getenv("CROSSBACK_CONFIG"); p != "" {
		return p
	}
	return "config/crossback.yaml"
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}

	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}

	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}

	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("CROSSBACK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	// Standard Alpaca env vars (highest priority: canonical names used by the SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
