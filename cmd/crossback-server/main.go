package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"crossback/internal/broker"
	"crossback/internal/config"
	"crossback/internal/httpapi"
	"crossback/internal/store"
	"crossback/internal/strategy"
	"crossback/internal/strategy/builtins"
	"crossback/internal/util"
)

func main() {
	// Load config.
	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	logFileName := filepath.Join(os.TempDir(), fmt.Sprintf("crossback-server-%s.log", time.Now().Format("2006-01-02")))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("opening log file: %v", err)
	}
	defer logFile.Close()

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, io.MultiWriter(os.Stdout, logFile))
	util.SetDefault(logger)

	// Create stores and server.
	bars := store.NewParquetStore(cfg.Storage.DataDir, cfg.Backtest.Timeframe)
	runs, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening run history: %v", err)
	}
	defer runs.Close()

	var b broker.Broker
	if cfg.Alpaca.HasCredentials() {
		b = broker.NewAlpacaBroker(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.BaseURL)
	} else {
		logger.Warn("no Alpaca credentials configured, serving simulated account")
		b = broker.NewSimulatorBroker(cfg.Backtest.InitialCapital)
	}

	reg := strategy.NewRegistry()
	builtins.Register(reg)
	srv := httpapi.NewServer(strategy.NewBacktester(bars, reg), reg, runs, b, cfg.Backtest, logger)

	// Start HTTP server.
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("crossback server listening", "addr", httpServer.Addr, "timeframe", cfg.Backtest.Timeframe, "broker", b.Name())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down crossback server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
