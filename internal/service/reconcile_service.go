package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"leasing-catalog-api/internal/batch"
	"leasing-catalog-api/internal/matching"
	"leasing-catalog-api/internal/model"
)

// JobReconcile names the reconciliation batch job
const JobReconcile = "reconcile"

// CandidateStore defines the listing methods needed to find match candidates
type CandidateStore interface {
	ListAll(ctx context.Context) ([]model.ExistingListing, error)
}

// ReconcileService matches extracted cars against the catalog
type ReconcileService struct {
	matcher  *matching.Matcher
	store    CandidateStore
	failures FailureStore
	workers  int
	progress *batch.ProgressTracker
	logger   *slog.Logger

	mu    sync.Mutex
	index map[string][]model.ExistingListing
}

// NewReconcileService creates a new reconciliation service
func NewReconcileService(matcher *matching.Matcher, store CandidateStore, workers int, logger *slog.Logger) *ReconcileService {
	return &ReconcileService{
		matcher: matcher,
		store:   store,
		workers: workers,
		logger:  logger,
	}
}

// SetFailureStore enables failure tracking
func (s *ReconcileService) SetFailureStore(store FailureStore) {
	s.failures = store
}

// SetProgress attaches a progress tracker
func (s *ReconcileService) SetProgress(progress *batch.ProgressTracker) {
	s.progress = progress
}

// candidateKey groups listings the matcher would compare with each other
func candidateKey(makeName, modelName string) string {
	return matching.Normalize(makeName) + "|" + matching.Normalize(modelName)
}

// Candidates returns the catalog listings with the same make and model as car.
// The catalog is loaded once and cached until Invalidate.
func (s *ReconcileService) Candidates(ctx context.Context, car model.ExtractedCar) ([]model.ExistingListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil {
		listings, err := s.store.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load candidates: %w", err)
		}

		index := make(map[string][]model.ExistingListing)
		for _, l := range listings {
			key := candidateKey(l.Make, l.Model)
			index[key] = append(index[key], l)
		}
		s.index = index

		s.logger.Info("candidate cache loaded", "listings", len(listings), "groups", len(index))
	}

	return s.index[candidateKey(car.Make, car.Model)], nil
}

// Invalidate drops the cached catalog
func (s *ReconcileService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = nil
}

// Match reconciles a single extracted car
func (s *ReconcileService) Match(ctx context.Context, car model.ExtractedCar) (model.MatchResult, error) {
	candidates, err := s.Candidates(ctx, car)
	if err != nil {
		return model.MatchResult{}, err
	}

	result := s.matcher.Match(car, candidates)
	if s.progress != nil {
		s.progress.RecordMatch(result.Method, result.Changed)
	}
	return result, nil
}

// Reconcile matches every car against the catalog. A limit of 0 means all.
func (s *ReconcileService) Reconcile(ctx context.Context, cars []model.ExtractedCar, limit int) *model.ReconcileResponse {
	s.logger.Info("starting reconciliation", "cars", len(cars), "limit", limit, "workers", s.workers)
	if s.progress != nil {
		total := len(cars)
		if limit > 0 {
			total = min(total, limit)
		}
		s.progress.SetTotal(total)
	}

	report := batch.Run(ctx,
		batch.Config{
			Workers:  s.workers,
			Limit:    limit,
			Job:      JobReconcile,
			Progress: s.progress,
		},
		cars,
		VehicleLabel,
		s.Match,
	)

	response := &model.ReconcileResponse{
		RunID:     report.RunID.String(),
		Processed: report.Processed,
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		Skipped:   report.Skipped,
		Items:     make([]model.ReconcileItem, 0, len(report.Outcomes)),
	}

	for _, o := range report.Outcomes {
		item := model.ReconcileItem{
			Index:   o.Index,
			Vehicle: o.Key,
			Status:  string(o.Status),
		}

		switch o.Status {
		case batch.StatusSucceeded:
			result := o.Result
			item.Match = &result
			switch result.Method {
			case model.MatchExact:
				response.Exact++
			case model.MatchFuzzy:
				response.Fuzzy++
			default:
				response.New++
			}
			if result.Changed {
				response.Changed++
			}
		default:
			if o.Err != nil {
				item.Error = o.Err.Error()
			}
			item.ErrorType = o.ErrorType
		}

		if o.Status == batch.StatusFailed {
			s.logger.Warn("failed to reconcile car", "vehicle", o.Key, "error", o.Err)
			if s.failures != nil {
				if err := s.failures.Upsert(context.WithoutCancel(ctx), JobReconcile, o.Key, o.ErrorType, o.Err.Error()); err != nil {
					s.logger.Error("failed to save failure record", "vehicle", o.Key, "error", err)
				}
			}
		}

		response.Items = append(response.Items, item)
	}

	if s.progress != nil {
		s.progress.Finish()
	}

	s.logger.Info("reconciliation finished",
		"run_id", response.RunID,
		"processed", response.Processed,
		"exact", response.Exact,
		"fuzzy", response.Fuzzy,
		"new", response.New,
		"changed", response.Changed,
		"failed", response.Failed,
	)

	return response
}

// VehicleLabel is the human readable key of an extracted car
func VehicleLabel(car model.ExtractedCar) string {
	return strings.Join(strings.Fields(car.Make+" "+car.Model+" "+car.Variant), " ")
}
