// Package httpapi serves backtests, run history and account information
// over a JSON HTTP API.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"crossback/internal/broker"
	"crossback/internal/config"
	"crossback/internal/domain"
	"crossback/internal/store"
	"crossback/internal/strategy"
)

// DefaultLookback is the window used when a request names no start time.
const DefaultLookback = 30 * 24 * time.Hour

// Server serves the backtest HTTP API.
type Server struct {
	backtester *strategy.Backtester
	registry   *strategy.Registry
	runs       store.RunStore
	broker     broker.Broker
	defaults   config.BacktestConfig
	log        *slog.Logger

	// now is replaced in tests.
	now func() time.Time
}

// NewServer creates a Server. defaults supplies the strategy, symbol,
// timeframe and parameters used for any field a request leaves empty.
func NewServer(
	backtester *strategy.Backtester,
	registry *strategy.Registry,
	runs store.RunStore,
	b broker.Broker,
	defaults config.BacktestConfig,
	log *slog.Logger,
) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		backtester: backtester,
		registry:   registry,
		runs:       runs,
		broker:     b,
		defaults:   defaults,
		log:        log.With("component", "httpapi"),
		now:        time.Now,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/backtests", s.handleBacktest)
	mux.HandleFunc("GET /api/runs", s.handleListRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /api/account", s.handleAccount)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps domain and storage errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{
		Status:     "ok",
		Timeframe:  s.defaults.Timeframe,
		Strategies: s.registry.List(),
	}
	if s.broker != nil {
		resp.Broker = s.broker.Name()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	// An empty body runs the configured defaults.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decoding request: %v", err))
		return
	}

	cfg := s.merge(req)
	start, end, err := cfg.Range(s.now().UTC(), DefaultLookback)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bt, err := s.backtester.Run(r.Context(), cfg.Strategy, cfg.Symbol, start, end, cfg.Params())
	if err != nil {
		s.log.Warn("backtest failed", "symbol", cfg.Symbol, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	run := &domain.Run{
		Strategy:   bt.Strategy,
		Symbol:     bt.Symbol,
		Timeframe:  cfg.Timeframe,
		Start:      start,
		End:        end,
		FastWindow: bt.Params.FastWindow,
		SlowWindow: bt.Params.SlowWindow,
		Result:     bt.Result,
	}
	if s.runs != nil {
		if err := s.runs.SaveRun(r.Context(), run); err != nil {
			s.log.Error("saving run", "error", err)
			writeError(w, http.StatusInternalServerError, "saving run failed")
			return
		}
	}

	resp := RunResponse{Run: *run, Summary: run.Result.Summary()}
	if req.IncludeRows {
		resp.Rows = bt.Rows
	}
	writeJSON(w, http.StatusCreated, resp)
}

// merge overlays the non-empty request fields on the server defaults.
func (s *Server) merge(req BacktestRequest) config.BacktestConfig {
	cfg := s.defaults
	if req.Strategy != "" {
		cfg.Strategy = req.Strategy
	}
	if req.Symbol != "" {
		cfg.Symbol = req.Symbol
	}
	// Request times replace the configured range as a pair.
	if req.Start != "" || req.End != "" {
		cfg.Start, cfg.End = req.Start, req.End
	}
	if req.FastWindow != 0 {
		cfg.FastWindow = req.FastWindow
	}
	if req.SlowWindow != 0 {
		cfg.SlowWindow = req.SlowWindow
	}
	if req.InitialCapital != 0 {
		cfg.InitialCapital = req.InitialCapital
	}
	return cfg
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusServiceUnavailable, "run history not configured")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(r.Context(), r.URL.Query().Get("symbol"), limit)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if runs == nil {
		runs = []domain.Run{}
	}
	writeJSON(w, http.StatusOK, RunsResponse{Runs: runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusServiceUnavailable, "run history not configured")
		return
	}

	run, err := s.runs.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, RunResponse{Run: *run, Summary: run.Result.Summary()})
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	if s.broker == nil {
		writeError(w, http.StatusServiceUnavailable, "broker not configured")
		return
	}

	acct, err := s.broker.GetAccount(r.Context())
	if err != nil {
		s.log.Warn("fetching account", "broker", s.broker.Name(), "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, acct)
}
