package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"leasing-catalog-api/internal/config"
	"leasing-catalog-api/internal/database"
	"leasing-catalog-api/internal/handler"
	"leasing-catalog-api/internal/logging"
	"leasing-catalog-api/internal/matching"
	"leasing-catalog-api/internal/repository"
	"leasing-catalog-api/internal/service"
)

func main() {
	cfg := config.Load()

	logger := logging.Setup(cfg.LogLevel)
	slog.SetDefault(logger)

	slog.Info("starting leasing-catalog-api")

	// Connect to database
	slog.Info("connecting to database", "host", cfg.Database.Host, "database", cfg.Database.Name)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.Connect(ctx, database.FromConfig(cfg.Database))
	if err != nil {
		cancel()
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db); err != nil {
		cancel()
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	cancel()
	slog.Info("database connection established")

	// Repositories
	listingRepo := repository.NewListingRepo(db)
	failureRepo := repository.NewBatchFailureRepo(db)

	// Services
	matcher := matching.NewMatcher(cfg.Match)
	reconcileSvc := service.NewReconcileService(matcher, listingRepo, cfg.Batch.Workers, logger)
	reconcileSvc.SetFailureStore(failureRepo)

	// Handlers
	healthHandler := handler.NewHealthHandler(db)
	matchHandler := handler.NewMatchHandler(matcher)
	leaseScoreHandler := handler.NewLeaseScoreHandler(listingRepo)
	reconcileHandler := handler.NewReconcileHandler(reconcileSvc, cfg.Batch.Limit)

	// Router
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Routes
	r.Get("/health", healthHandler.Check)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/match", matchHandler.Match)
		r.Post("/lease-score", leaseScoreHandler.Calculate)
		r.Post("/lease-score/best", leaseScoreHandler.Best)
		r.Get("/listings/{id}/lease-score", leaseScoreHandler.ForListing)
		r.Post("/extractions/reconcile", reconcileHandler.Reconcile)
		r.Post("/extractions/reconcile/refresh", func(w http.ResponseWriter, r *http.Request) {
			reconcileSvc.Invalidate()
			w.WriteHeader(http.StatusNoContent)
		})
	})

	// Server
	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		slog.Info("server started", "port", cfg.APIPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}

	slog.Info("server stopped")
}
