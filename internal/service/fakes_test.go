package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"leasing-catalog-api/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeListingStore struct {
	mu        sync.Mutex
	listings  []model.ExistingListing
	listErr   error
	saveErr   map[string]error
	saved     map[string]model.StoredLeaseScore
	listCalls int
	gotLimit  int
	gotForce  bool
}

func newFakeListingStore(listings ...model.ExistingListing) *fakeListingStore {
	return &fakeListingStore{
		listings: listings,
		saveErr:  map[string]error{},
		saved:    map[string]model.StoredLeaseScore{},
	}
}

func (f *fakeListingStore) ListForScoring(_ context.Context, limit int, force bool) ([]model.ExistingListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.gotLimit = limit
	f.gotForce = force
	return f.listings, f.listErr
}

func (f *fakeListingStore) ListAll(_ context.Context) ([]model.ExistingListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.listings, f.listErr
}

func (f *fakeListingStore) SaveLeaseScore(_ context.Context, score model.StoredLeaseScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.saveErr[score.ListingID]; err != nil {
		return err
	}
	f.saved[score.ListingID] = score
	return nil
}

type failureRecord struct {
	job, key, errorType string
}

type fakeFailureStore struct {
	mu       sync.Mutex
	upserts  []failureRecord
	resolved []string
}

func (f *fakeFailureStore) Upsert(_ context.Context, job, itemKey, errorType, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, failureRecord{job, itemKey, errorType})
	return nil
}

func (f *fakeFailureStore) MarkResolved(_ context.Context, _ string, itemKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved = append(f.resolved, itemKey)
	return nil
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
