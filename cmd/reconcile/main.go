package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leasing-catalog-api/internal/batch"
	"leasing-catalog-api/internal/config"
	"leasing-catalog-api/internal/database"
	"leasing-catalog-api/internal/logging"
	"leasing-catalog-api/internal/matching"
	"leasing-catalog-api/internal/model"
	"leasing-catalog-api/internal/repository"
	"leasing-catalog-api/internal/service"
)

func main() {
	cfg := config.Load()

	var (
		dbPassword = flag.String("db-password", cfg.Database.Password, "Database password")

		input       = flag.String("input", "", "JSON file with an array of extracted cars (- for stdin)")
		output      = flag.String("output", "", "Write the report to this file instead of stdout")
		workers     = flag.Int("workers", cfg.Batch.Workers, "Number of concurrent workers")
		limit       = flag.Int("limit", cfg.Batch.Limit, "Maximum cars per run (0 = all)")
		monitorPort = flag.Int("monitor-port", cfg.Batch.MonitorPort, "HTTP monitoring server port")
		noMonitor   = flag.Bool("no-monitor", !cfg.Batch.EnableMonitoring, "Disable HTTP monitoring")
		logLevel    = flag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	)

	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Error: -input is required")
		os.Exit(1)
	}
	if *dbPassword == "" {
		fmt.Fprintln(os.Stderr, "Error: database password is required (use -db-password or DB_PASSWORD env)")
		os.Exit(1)
	}

	// Logs go to stderr so the report can be piped from stdout
	logger := logging.New(os.Stderr, *logLevel)

	cars, err := readCars(*input)
	if err != nil {
		logger.Error("failed to read extracted cars", "input", *input, "error", err)
		os.Exit(1)
	}

	logger.Info("starting reconciliation job", "cars", len(cars), "workers", *workers, "limit", *limit)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dbConfig := database.FromConfig(cfg.Database)
	dbConfig.Password = *dbPassword

	dbPool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := database.RunMigrations(ctx, dbPool); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	reconcileService := service.NewReconcileService(
		matching.NewMatcher(cfg.Match),
		repository.NewListingRepo(dbPool),
		*workers,
		logger,
	)
	reconcileService.SetFailureStore(repository.NewBatchFailureRepo(dbPool))

	progress := batch.NewProgressTracker(service.JobReconcile, len(cars))
	reconcileService.SetProgress(progress)

	if !*noMonitor {
		monitor := batch.NewHTTPMonitor(*monitorPort, progress, logger)
		monitor.Start()
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			monitor.Stop(stopCtx)
		}()
	}

	report := reconcileService.Reconcile(ctx, cars, *limit)

	if err := writeReport(*output, report); err != nil {
		logger.Error("failed to write report", "error", err)
		os.Exit(1)
	}

	if report.Failed > 0 {
		logger.Warn("reconciliation completed with failures", "failed", report.Failed)
	}
}

func readCars(path string) ([]model.ExtractedCar, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var cars []model.ExtractedCar
	if err := json.NewDecoder(r).Decode(&cars); err != nil {
		return nil, fmt.Errorf("failed to decode extracted cars: %w", err)
	}
	return cars, nil
}

func writeReport(path string, report *model.ReconcileResponse) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
