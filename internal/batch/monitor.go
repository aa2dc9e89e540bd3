package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPMonitor exposes progress and metrics of a batch job over HTTP
type HTTPMonitor struct {
	server   *http.Server
	progress *ProgressTracker
	logger   *slog.Logger
}

// NewHTTPMonitor creates a new HTTP monitoring server
func NewHTTPMonitor(port int, progress *ProgressTracker, logger *slog.Logger) *HTTPMonitor {
	monitor := &HTTPMonitor{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			ReadHeaderTimeout: 5 * time.Second,
		},
		progress: progress,
		logger:   logger,
	}
	monitor.server.Handler = monitor.Handler()
	return monitor
}

// Handler returns the monitor routes: /status, /health and /metrics
func (m *HTTPMonitor) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", m.handleStatus)
	mux.HandleFunc("/health", m.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start starts the HTTP server in a goroutine
func (m *HTTPMonitor) Start() {
	go func() {
		m.logger.Info("starting HTTP monitor", "addr", m.server.Addr)
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("HTTP monitor error", "error", err)
		}
	}()
}

// Stop gracefully stops the HTTP server
func (m *HTTPMonitor) Stop(ctx context.Context) error {
	m.logger.Info("stopping HTTP monitor")
	return m.server.Shutdown(ctx)
}

// handleStatus returns current job status as JSON
func (m *HTTPMonitor) handleStatus(w http.ResponseWriter, r *http.Request) {
	snapshot := m.progress.GetSnapshot()

	response := map[string]interface{}{
		"job":        snapshot.Job,
		"status":     snapshot.Status,
		"started_at": snapshot.StartedAt.Format(time.RFC3339),
		"elapsed":    snapshot.Elapsed.String(),
		"progress": map[string]interface{}{
			"total_items": snapshot.TotalItems,
			"processed":   snapshot.Processed,
			"success":     snapshot.Success,
			"failed":      snapshot.Failed,
			"skipped":     snapshot.Skipped,
			"percentage":  fmt.Sprintf("%.2f", snapshot.Percentage),
		},
		"matching_stats": map[string]interface{}{
			"exact_match": snapshot.ExactMatch,
			"fuzzy_match": snapshot.FuzzyMatch,
			"no_match":    snapshot.NoMatch,
			"changed":     snapshot.Changed,
		},
		"rate": map[string]interface{}{
			"items_per_sec":  fmt.Sprintf("%.2f", snapshot.ItemsPerSec),
			"time_remaining": snapshot.Remaining.String(),
		},
		"last_error":   snapshot.LastError,
		"current_item": snapshot.CurrentItem,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleHealth returns simple health check
func (m *HTTPMonitor) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}
