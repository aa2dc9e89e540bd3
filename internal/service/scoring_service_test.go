package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leasing-catalog-api/internal/batch"
	"leasing-catalog-api/internal/model"
)

var (
	standardOffer = model.Offer{MonthlyPrice: 3500, PeriodMonths: 36, MileagePerYear: 15000}
	cheapOffer    = model.Offer{MonthlyPrice: 2500, FirstPayment: 20000, PeriodMonths: 12, MileagePerYear: 25050}
)

func scoredListing(id string, retail *float64, offers ...model.Offer) model.ExistingListing {
	return model.ExistingListing{
		ID:              id,
		VehicleIdentity: model.VehicleIdentity{Make: "Toyota", Model: "bZ4X", Variant: "Executive"},
		RetailPrice:     retail,
		Offers:          offers,
	}
}

func TestScoreListing_SelectsBestOffer(t *testing.T) {
	svc := NewScoringService(ScoringConfig{}, newFakeListingStore(), testLogger())
	fixed := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	score, err := svc.ScoreListing(scoredListing("l-1", floatPtr(300000), standardOffer, cheapOffer))
	require.NoError(t, err)

	assert.Equal(t, "l-1", score.ListingID)
	assert.Equal(t, cheapOffer, score.Selected)
	assert.Equal(t, score.Breakdown.TotalScore, score.Score)
	assert.Equal(t, fixed, score.CalculatedAt)
}

func TestScoreListing_Errors(t *testing.T) {
	svc := NewScoringService(ScoringConfig{}, newFakeListingStore(), testLogger())

	_, err := svc.ScoreListing(scoredListing("l-1", nil, standardOffer))
	assert.ErrorIs(t, err, model.ErrMissingRetailPrice)

	_, err = svc.ScoreListing(scoredListing("l-2", floatPtr(300000)))
	assert.ErrorIs(t, err, model.ErrNoOffers)

	_, err = svc.ScoreListing(scoredListing("l-3", floatPtr(0), standardOffer))
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestScoringRun_IsolatesFailures(t *testing.T) {
	store := newFakeListingStore(
		scoredListing("ok-1", floatPtr(300000), standardOffer),
		scoredListing("no-price", nil, standardOffer),
		scoredListing("ok-2", floatPtr(300000), cheapOffer),
		scoredListing("db-fail", floatPtr(300000), standardOffer),
	)
	store.saveErr["db-fail"] = errors.New("failed to update lease score: connection reset")
	failures := &fakeFailureStore{}
	progress := batch.NewProgressTracker(JobLeaseScore, 0)

	svc := NewScoringService(ScoringConfig{Workers: 2, Limit: 10, Force: true}, store, testLogger())
	svc.SetFailureStore(failures)
	svc.SetProgress(progress)

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, store.gotLimit)
	assert.True(t, store.gotForce)
	assert.Equal(t, 4, report.Processed)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	assert.True(t, report.PartialFailure())

	assert.Contains(t, store.saved, "ok-1")
	assert.Contains(t, store.saved, "ok-2")
	assert.Equal(t, 77, store.saved["ok-1"].Score)

	assert.ElementsMatch(t, []failureRecord{
		{JobLeaseScore, "no-price", model.ErrorTypeMissingRetailPrice},
		{JobLeaseScore, "db-fail", model.ErrorTypeDatabase},
	}, failures.upserts)
	assert.ElementsMatch(t, []string{"ok-1", "ok-2"}, failures.resolved)

	snap := progress.GetSnapshot()
	assert.Equal(t, 4, snap.TotalItems)
	assert.Equal(t, 4, snap.Processed)
	assert.Equal(t, "finished", snap.Status)
}

func TestScoringRun_DryRunSavesNothing(t *testing.T) {
	store := newFakeListingStore(scoredListing("l-1", floatPtr(300000), standardOffer))
	failures := &fakeFailureStore{}

	svc := NewScoringService(ScoringConfig{Workers: 1, DryRun: true}, store, testLogger())
	svc.SetFailureStore(failures)

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 77, report.Outcomes[0].Result.Score)
	assert.Empty(t, store.saved)
	assert.Empty(t, failures.resolved)
}

func TestScoringRun_LoadError(t *testing.T) {
	store := newFakeListingStore()
	store.listErr = errors.New("connection refused")

	svc := NewScoringService(ScoringConfig{Workers: 1}, store, testLogger())
	report, err := svc.Run(context.Background())

	assert.Nil(t, report)
	assert.ErrorContains(t, err, "failed to load listings")
}
