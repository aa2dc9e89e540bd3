package batch

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leasing-catalog-api/internal/model"
)

func itemKey(n int) string { return strconv.Itoa(n) }

func TestRun_AllSucceed(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	report := Run(context.Background(), Config{Workers: 3, Job: "test"}, items, itemKey,
		func(_ context.Context, n int) (int, error) { return n * n, nil })

	assert.NotEqual(t, uuid.Nil, report.RunID)
	assert.Equal(t, 5, report.Processed)
	assert.Equal(t, 5, report.Succeeded)
	assert.Zero(t, report.Failed)
	assert.False(t, report.PartialFailure())
	require.Len(t, report.Outcomes, 5)
	for i, o := range report.Outcomes {
		assert.Equal(t, i, o.Index)
		assert.Equal(t, itemKey(items[i]), o.Key)
		assert.Equal(t, StatusSucceeded, o.Status)
		assert.Equal(t, items[i]*items[i], o.Result)
	}
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
}

func TestRun_FailureIsIsolated(t *testing.T) {
	items := []int{1, 2, 3, 4}

	report := Run(context.Background(), Config{Workers: 2, Job: "test"}, items, itemKey,
		func(_ context.Context, n int) (int, error) {
			if n == 2 {
				return 0, fmt.Errorf("listing %d: %w", n, model.ErrMissingRetailPrice)
			}
			return n, nil
		})

	assert.Equal(t, 3, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.True(t, report.PartialFailure())

	failed := report.Failures()
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].Index)
	assert.ErrorIs(t, failed[0].Err, model.ErrMissingRetailPrice)
	assert.Equal(t, model.ErrorTypeMissingRetailPrice, failed[0].ErrorType)
}

func TestRun_PanicBecomesItemFailure(t *testing.T) {
	items := []int{1, 2, 3}

	report := Run(context.Background(), Config{Workers: 3, Job: "test"}, items, itemKey,
		func(_ context.Context, n int) (string, error) {
			if n == 3 {
				var m map[string]int
				m["boom"] = n
			}
			return "ok", nil
		})

	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, StatusFailed, report.Outcomes[2].Status)
	assert.ErrorIs(t, report.Outcomes[2].Err, model.ErrItemPanic)
	assert.Equal(t, model.ErrorTypePanic, report.Outcomes[2].ErrorType)
	assert.Empty(t, report.Outcomes[2].Result)
}

func TestRun_Limit(t *testing.T) {
	var calls atomic.Int32
	report := Run(context.Background(), Config{Workers: 2, Limit: 2, Job: "test"}, []int{1, 2, 3, 4}, itemKey,
		func(_ context.Context, n int) (int, error) {
			calls.Add(1)
			return n, nil
		})

	assert.Equal(t, int32(2), calls.Load())
	assert.Len(t, report.Outcomes, 2)
	assert.Equal(t, 2, report.Processed)
}

func TestRun_RespectsWorkerLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	items := make([]int, 20)

	Run(context.Background(), Config{Workers: 3, Job: "test"}, items, itemKey,
		func(_ context.Context, _ int) (int, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return 0, nil
		})

	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestRun_CancelledContextSkipsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	items := []int{1, 2, 3, 4, 5}
	progress := NewProgressTracker("test", len(items))

	report := Run(ctx, Config{Workers: 1, Job: "test", Progress: progress}, items, itemKey,
		func(_ context.Context, n int) (int, error) {
			if n == 2 {
				cancel()
			}
			return n, nil
		})

	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 3, report.Skipped)
	assert.Equal(t, len(items), report.Processed+report.Skipped)
	for _, o := range report.Outcomes[2:] {
		assert.Equal(t, StatusSkipped, o.Status)
		assert.True(t, errors.Is(o.Err, context.Canceled))
		assert.Equal(t, model.ErrorTypeCancelled, o.ErrorType)
	}

	snap := progress.GetSnapshot()
	assert.Equal(t, 2, snap.Processed)
	assert.Equal(t, 3, snap.Skipped)
}

func TestRun_EmptyInput(t *testing.T) {
	report := Run(context.Background(), Config{Job: "test"}, []int(nil), itemKey,
		func(_ context.Context, n int) (int, error) { return n, nil })

	assert.Empty(t, report.Outcomes)
	assert.Zero(t, report.Processed)
	assert.False(t, report.PartialFailure())
}

func TestRun_UpdatesProgress(t *testing.T) {
	progress := NewProgressTracker("test", 3)

	Run(context.Background(), Config{Workers: 2, Job: "test", Progress: progress}, []int{1, 2, 3}, itemKey,
		func(_ context.Context, n int) (int, error) {
			if n == 1 {
				return 0, errors.New("bad row")
			}
			return n, nil
		})

	snap := progress.GetSnapshot()
	assert.Equal(t, 3, snap.Processed)
	assert.Equal(t, 2, snap.Success)
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, "bad row", snap.LastError)
}
