/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the team rating server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, then flags)
  2. Configure logging
  3. Load the calibration table
  4. Initialize SQLite store
  5. Create API handler, router and recompute scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -port         HTTP server port (PORT, default: 8080)
  -db           SQLite database path (DB_PATH, default: apevault.db)
                Use ":memory:" for in-memory database
  -calibration  Calibration file, .json or .toml (CALIBRATION_PATH)
  -schedule     Recompute cron spec (RECOMPUTE_SCHEDULE, default: @every 1h)

ENVIRONMENT:
  LOG_LEVEL, LOG_FORMAT (json|text), SCHEDULER_ENABLED, CORS_ORIGINS,
  MAX_WINDOW_DAYS.
  See config/config.go.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler (waits for a running recompute)
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  ./server -db="./data/team.db" -calibration=./calibration.toml
  LOG_FORMAT=text LOG_LEVEL=debug ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment keys
  - factory/calibration.go: Calibration file format
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dexim234/apevaultteams/api"
	"github.com/dexim234/apevaultteams/config"
	"github.com/dexim234/apevaultteams/factory"
	"github.com/dexim234/apevaultteams/store/sqlite"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	// Flags
	port := flag.String("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	calibrationPath := flag.String("calibration", cfg.CalibrationPath, "Calibration file (.json or .toml)")
	schedule := flag.String("schedule", cfg.RecomputeSchedule, "Recompute cron spec")
	flag.Parse()

	logger := newLogger(cfg)

	calibration, err := factory.LoadCalibration(*calibrationPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load calibration")
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer store.Close()

	// Initialize handler and router
	handler := api.NewHandler(store, calibration, logger)
	handler.MaxWindowDays = cfg.MaxWindowDays
	router := api.NewRouter(handler, cfg.CORSOrigins)

	scheduler := api.NewRecomputeScheduler(handler, *schedule, logger)
	scheduler.Enabled = cfg.SchedulerEnabled
	if err := scheduler.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start scheduler")
	}

	// Create server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"port": *port,
			"db":   *dbPath,
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
		return
	}

	logger.Info("Server stopped")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if cfg.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
