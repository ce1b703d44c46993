/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll hour engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment), apply command-line flags
  2. Build calculation rules (CLT defaults or RULES_FILE)
  3. Initialize SQLite store
  4. Create API handler; start holiday sync if HOLIDAY_ICS is set
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -port    HTTP server port (APP_PORT, default: 8080)
  -db      SQLite database path (DB_PATH, default: payroll.db)
           Use ":memory:" for in-memory database
  -rules   JSON or TOML rules document (RULES_FILE)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the holiday sync
  4. Close database connection

EXAMPLES:
  ./server -db="./data/payroll.db" -rules=./rules.toml
  HOLIDAY_ICS=https://example.com/feriados.ics ./server

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - factory/rules.go: Rules documents
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/hours"
	"github.com/warp/payroll-engine/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags
	port := flag.Int("port", cfg.App.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.Database.Path, "SQLite database path")
	rulesFile := flag.String("rules", cfg.Payroll.RulesFile, "JSON or TOML rules document")
	flag.Parse()

	logger := api.NewLogger(os.Stdout, cfg.SlogLevel(), cfg.App.Env)
	slog.SetDefault(logger)

	// Rules
	rules, err := buildRules(cfg.Location(), *rulesFile)
	if err != nil {
		return err
	}
	if *rulesFile != "" {
		logger.Info("rules loaded", slog.String("file", *rulesFile), slog.String("timezone", rules.Location.String()))
	}

	engine, err := hours.NewEngine(rules, nil)
	if err != nil {
		return err
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store, engine, logger)
	handler.CompanyID = cfg.Payroll.CompanyID
	handler.National = cfg.Payroll.National
	handler.IncludeOptional = cfg.Payroll.OptionalHoliday
	handler.BatchLimit = cfg.Payroll.BatchLimit

	// Holiday feed
	holidaySync := api.NewHolidaySyncScheduler(handler, cfg.Payroll.HolidayICS, cfg.Payroll.CompanyID)
	if cfg.Payroll.HolidaySync > 0 {
		holidaySync.Interval = cfg.Payroll.HolidaySync
		holidaySync.Start()
		defer holidaySync.Stop()
	} else if holidaySync.Enabled {
		if _, err := holidaySync.RunNow(); err != nil {
			logger.Warn("holiday import failed, continuing with stored holidays", slog.Any("error", err))
		}
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      api.NewRouter(handler, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.Int("port", *port), slog.String("db", *dbPath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// buildRules starts from the CLT defaults read in loc and overlays the rules
// document at path, if any. A document without a timezone keeps loc.
func buildRules(loc *time.Location, path string) (hours.Rules, error) {
	base := hours.DefaultRules()
	base.Location = loc
	if path == "" {
		return base, nil
	}
	rules, err := factory.LoadRulesFileOver(path, base)
	if err != nil {
		return hours.Rules{}, fmt.Errorf("loading rules: %w", err)
	}
	return rules, nil
}
