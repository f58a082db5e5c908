/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the salary tracker server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, SALARY_* environment, flags)
  2. Configure logging
  3. Initialize SQLite store and seed rates on first start
  4. Create record book, API handler and router
  5. Start the settlement scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides SALARY_PORT)
  -db      SQLite database path (overrides SALARY_DB)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/salary.db"

  # Run with in-memory database and console logs
  SALARY_LOG_PRETTY=true ./server -db=":memory:"

SEE ALSO:
  - config/config.go: Configuration keys
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Chung0221/salary-tracker/api"
	"github.com/Chung0221/salary-tracker/config"
	"github.com/Chung0221/salary-tracker/logging"
	"github.com/Chung0221/salary-tracker/payroll"
	"github.com/Chung0221/salary-tracker/store/sqlite"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Flags
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DB, "SQLite database path")
	flag.Parse()
	cfg.Port, cfg.DB = *port, *dbPath

	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func run(cfg config.Config) error {
	seed, err := cfg.Rates()
	if err != nil {
		return fmt.Errorf("invalid rate configuration: %w", err)
	}

	// Initialize store
	store, err := sqlite.New(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	if err := seedRates(context.Background(), store, seed); err != nil {
		return err
	}

	book := payroll.NewBook(store, store, store)
	book.Defaults = seed

	handler := api.NewHandler(book)
	handler.Reset = store
	router := api.NewRouter(handler, cfg.CORSOrigins)

	scheduler := api.NewSettlementScheduler(book)
	scheduler.CheckInterval = cfg.SettlementInterval
	scheduler.Enabled = cfg.SchedulerEnabled
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("db", cfg.DB).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// seedRates saves the configured rates when the database has none yet.
func seedRates(ctx context.Context, store *sqlite.Store, rates payroll.RateConfig) error {
	saved, err := store.LoadRates(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rates: %w", err)
	}
	if saved != nil {
		return nil
	}
	if err := store.SaveRates(ctx, rates); err != nil {
		return fmt.Errorf("failed to seed rates: %w", err)
	}
	log.Info().Str("hourly_rate", rates.HourlyRate.String()).Msg("rates seeded from configuration")
	return nil
}
