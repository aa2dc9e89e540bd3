package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leasing-catalog-api/internal/batch"
	"leasing-catalog-api/internal/config"
	"leasing-catalog-api/internal/database"
	"leasing-catalog-api/internal/logging"
	"leasing-catalog-api/internal/repository"
	"leasing-catalog-api/internal/service"
)

func main() {
	cfg := config.Load()

	// Parse command line flags, environment provides the defaults
	var (
		dbHost     = flag.String("db-host", cfg.Database.Host, "Database host")
		dbPort     = flag.Int("db-port", cfg.Database.Port, "Database port")
		dbName     = flag.String("db-name", cfg.Database.Name, "Database name")
		dbUser     = flag.String("db-user", cfg.Database.User, "Database user")
		dbPassword = flag.String("db-password", cfg.Database.Password, "Database password")
		dbSSLMode  = flag.String("db-sslmode", cfg.Database.SSLMode, "Database SSL mode")

		workers     = flag.Int("workers", cfg.Batch.Workers, "Number of concurrent workers")
		limit       = flag.Int("limit", cfg.Batch.Limit, "Maximum listings per run (0 = all)")
		force       = flag.Bool("force", false, "Recompute listings that already have a lease score")
		dryRun      = flag.Bool("dry-run", false, "Compute scores without saving them")
		monitorPort = flag.Int("monitor-port", cfg.Batch.MonitorPort, "HTTP monitoring server port")
		noMonitor   = flag.Bool("no-monitor", !cfg.Batch.EnableMonitoring, "Disable HTTP monitoring")
		logLevel    = flag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	)

	flag.Parse()

	if *dbPassword == "" {
		fmt.Fprintln(os.Stderr, "Error: database password is required (use -db-password or DB_PASSWORD env)")
		os.Exit(1)
	}

	logger := logging.Setup(*logLevel)

	logger.Info("starting lease scorer",
		"db_host", *dbHost,
		"db_name", *dbName,
		"workers", *workers,
		"limit", *limit,
		"force", *force,
		"dry_run", *dryRun,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down gracefully", "signal", sig)
		cancel()
	}()

	dbConfig := database.FromConfig(cfg.Database)
	dbConfig.Host = *dbHost
	dbConfig.Port = *dbPort
	dbConfig.Database = *dbName
	dbConfig.User = *dbUser
	dbConfig.Password = *dbPassword
	dbConfig.SSLMode = *dbSSLMode

	dbPool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	logger.Info("connected to database")

	if err := database.RunMigrations(ctx, dbPool); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations completed")

	listingRepo := repository.NewListingRepo(dbPool)
	failureRepo := repository.NewBatchFailureRepo(dbPool)

	scoringService := service.NewScoringService(
		service.ScoringConfig{
			Workers: *workers,
			Limit:   *limit,
			Force:   *force,
			DryRun:  *dryRun,
		},
		listingRepo,
		logger,
	)
	scoringService.SetFailureStore(failureRepo)

	progress := batch.NewProgressTracker(service.JobLeaseScore, 0)
	scoringService.SetProgress(progress)

	if !*noMonitor {
		monitor := batch.NewHTTPMonitor(*monitorPort, progress, logger)
		monitor.Start()
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			monitor.Stop(stopCtx)
		}()
	}

	report, err := scoringService.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("lease scorer cancelled")
			return
		}
		logger.Error("lease scorer failed", "error", err)
		os.Exit(1)
	}

	if pending, err := failureRepo.CountPending(context.WithoutCancel(ctx), service.JobLeaseScore); err == nil {
		logger.Info("pending failures", "count", pending)
	}

	if report.PartialFailure() {
		logger.Warn("lease scorer completed with failures",
			"succeeded", report.Succeeded,
			"failed", report.Failed,
		)
		return
	}

	logger.Info("lease scorer completed successfully")
}
