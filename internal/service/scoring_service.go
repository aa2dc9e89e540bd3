package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"leasing-catalog-api/internal/batch"
	"leasing-catalog-api/internal/leasescore"
	"leasing-catalog-api/internal/model"
)

// JobLeaseScore names the lease score batch job in metrics and failure records
const JobLeaseScore = "lease-score"

// ScoringStore defines the listing methods needed by the scoring job
type ScoringStore interface {
	ListForScoring(ctx context.Context, limit int, force bool) ([]model.ExistingListing, error)
	SaveLeaseScore(ctx context.Context, score model.StoredLeaseScore) error
}

// FailureStore defines methods for tracking failed batch items
type FailureStore interface {
	Upsert(ctx context.Context, job, itemKey, errorType, message string) error
	MarkResolved(ctx context.Context, job, itemKey string) error
}

// ScoringConfig holds configuration for the scoring job
type ScoringConfig struct {
	Workers int
	Limit   int
	// Recompute listings that already have a score
	Force bool
	// Compute scores without saving them
	DryRun bool
}

// ScoringService computes and stores the lease score of catalog listings
type ScoringService struct {
	config   ScoringConfig
	store    ScoringStore
	failures FailureStore
	progress *batch.ProgressTracker
	logger   *slog.Logger
	now      func() time.Time
}

// NewScoringService creates a new scoring service
func NewScoringService(config ScoringConfig, store ScoringStore, logger *slog.Logger) *ScoringService {
	return &ScoringService{
		config: config,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// SetFailureStore enables failure tracking
func (s *ScoringService) SetFailureStore(store FailureStore) {
	s.failures = store
}

// SetProgress attaches a progress tracker, e.g. one served by a batch.HTTPMonitor
func (s *ScoringService) SetProgress(progress *batch.ProgressTracker) {
	s.progress = progress
}

// ScoreListing selects the best offer of a listing and returns the score to store
func (s *ScoringService) ScoreListing(listing model.ExistingListing) (model.StoredLeaseScore, error) {
	if listing.RetailPrice == nil {
		return model.StoredLeaseScore{}, fmt.Errorf("listing %s: %w", listing.ID, model.ErrMissingRetailPrice)
	}
	if len(listing.Offers) == 0 {
		return model.StoredLeaseScore{}, fmt.Errorf("listing %s: %w", listing.ID, model.ErrNoOffers)
	}

	best, _, err := leasescore.SelectBest(*listing.RetailPrice, listing.Offers)
	if err != nil {
		return model.StoredLeaseScore{}, fmt.Errorf("listing %s: %w", listing.ID, err)
	}

	return model.StoredLeaseScore{
		ListingID:    listing.ID,
		Score:        best.Breakdown.TotalScore,
		CalculatedAt: s.now().UTC(),
		Breakdown:    best.Breakdown,
		Selected:     best.Offer,
	}, nil
}

// Run scores every listing that needs a score. Item failures are recorded and
// never abort the run; only failing to load the listings returns an error.
func (s *ScoringService) Run(ctx context.Context) (*batch.Report[model.StoredLeaseScore], error) {
	s.logger.Info("starting lease score job",
		"workers", s.config.Workers,
		"limit", s.config.Limit,
		"force", s.config.Force,
		"dry_run", s.config.DryRun,
	)

	listings, err := s.store.ListForScoring(ctx, s.config.Limit, s.config.Force)
	if err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}

	s.logger.Info("loaded listings", "count", len(listings))
	if s.progress != nil {
		s.progress.SetTotal(len(listings))
	}

	report := batch.Run(ctx,
		batch.Config{
			Workers:  s.config.Workers,
			Limit:    s.config.Limit,
			Job:      JobLeaseScore,
			Progress: s.progress,
		},
		listings,
		func(l model.ExistingListing) string { return l.ID },
		s.scoreAndSave,
	)

	s.recordOutcomes(ctx, report)
	if s.progress != nil {
		s.progress.Finish()
	}

	s.logger.Info("lease score job finished",
		"run_id", report.RunID,
		"processed", report.Processed,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"duration", report.FinishedAt.Sub(report.StartedAt).String(),
	)

	return report, nil
}

func (s *ScoringService) scoreAndSave(ctx context.Context, listing model.ExistingListing) (model.StoredLeaseScore, error) {
	score, err := s.ScoreListing(listing)
	if err != nil {
		return score, err
	}

	if s.config.DryRun {
		s.logger.Info("dry run - would save lease score",
			"id", listing.ID,
			"score", score.Score,
		)
		return score, nil
	}

	if err := s.store.SaveLeaseScore(ctx, score); err != nil {
		return score, err
	}

	s.logger.Debug("lease score saved", "id", listing.ID, "score", score.Score)
	return score, nil
}

// recordOutcomes writes failures and resolves previously failed items
func (s *ScoringService) recordOutcomes(ctx context.Context, report *batch.Report[model.StoredLeaseScore]) {
	for _, o := range report.Outcomes {
		switch o.Status {
		case batch.StatusFailed:
			s.logger.Warn("failed to score listing",
				"id", o.Key,
				"error_type", o.ErrorType,
				"error", o.Err,
			)
			if s.failures == nil || s.config.DryRun {
				continue
			}
			// ctx may be cancelled by now; failure records must still be written
			if err := s.failures.Upsert(context.WithoutCancel(ctx), JobLeaseScore, o.Key, o.ErrorType, o.Err.Error()); err != nil {
				s.logger.Error("failed to save failure record", "id", o.Key, "error", err)
			}
		case batch.StatusSucceeded:
			if s.failures == nil || s.config.DryRun {
				continue
			}
			if err := s.failures.MarkResolved(context.WithoutCancel(ctx), JobLeaseScore, o.Key); err != nil {
				s.logger.Warn("failed to mark failure as resolved", "id", o.Key, "error", err)
			}
		}
	}
}
