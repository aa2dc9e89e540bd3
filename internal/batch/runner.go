// Package batch runs independent items in parallel with per-item failure
// isolation and reports one outcome per item.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"leasing-catalog-api/internal/model"
)

// Status is the final state of one batch item
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Config holds the batch run settings
type Config struct {
	// Number of items processed concurrently, at least 1
	Workers int
	// Process at most this many items; 0 means all
	Limit int
	// Job name used for metrics and failure records
	Job string
	// Optional; receives processed/succeeded/failed counters
	Progress *ProgressTracker
}

// Outcome is the result of one item
type Outcome[R any] struct {
	Index     int
	Key       string
	Status    Status
	Result    R
	Err       error
	ErrorType string
	Duration  time.Duration
}

// Report summarizes a batch run. Outcomes keeps input order.
type Report[R any] struct {
	RunID      uuid.UUID
	Job        string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []Outcome[R]
	Processed  int
	Succeeded  int
	Failed     int
	Skipped    int
}

// PartialFailure reports whether some items failed while others succeeded
func (r *Report[R]) PartialFailure() bool {
	return r.Failed > 0 && r.Succeeded > 0
}

// Failures returns the failed outcomes in input order
func (r *Report[R]) Failures() []Outcome[R] {
	var failed []Outcome[R]
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Run applies fn to every item with at most cfg.Workers items in flight.
// A failing or panicking item never affects the others. Once ctx is done no
// further items are started and the unstarted ones are reported as skipped.
func Run[T, R any](
	ctx context.Context,
	cfg Config,
	items []T,
	key func(T) string,
	fn func(context.Context, T) (R, error),
) *Report[R] {
	if cfg.Limit > 0 && cfg.Limit < len(items) {
		items = items[:cfg.Limit]
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	report := &Report[R]{
		RunID:     uuid.New(),
		Job:       cfg.Job,
		StartedAt: time.Now(),
		Outcomes:  make([]Outcome[R], len(items)),
	}

	for i, item := range items {
		report.Outcomes[i] = Outcome[R]{Index: i, Key: key(item), Status: StatusSkipped}
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i, item := range items {
		if ctx.Err() != nil {
			break
		}
		i, item := i, item
		g.Go(func() error {
			// Each goroutine owns exactly one slot of Outcomes
			runItem(ctx, cfg, item, fn, &report.Outcomes[i])
			return nil
		})
	}
	_ = g.Wait()

	for i := range report.Outcomes {
		o := &report.Outcomes[i]
		switch o.Status {
		case StatusSucceeded:
			report.Succeeded++
			report.Processed++
		case StatusFailed:
			report.Failed++
			report.Processed++
		case StatusSkipped:
			report.Skipped++
			if o.Err == nil && ctx.Err() != nil {
				o.Err = ctx.Err()
				o.ErrorType = model.ErrorTypeCancelled
			}
			ItemsTotal.WithLabelValues(cfg.Job, string(StatusSkipped)).Inc()
			if cfg.Progress != nil {
				cfg.Progress.IncrementSkipped()
			}
		}
	}

	report.FinishedAt = time.Now()
	return report
}

func runItem[T, R any](
	ctx context.Context,
	cfg Config,
	item T,
	fn func(context.Context, T) (R, error),
	out *Outcome[R],
) {
	if ctx.Err() != nil {
		return
	}

	ItemsActive.WithLabelValues(cfg.Job).Inc()
	defer ItemsActive.WithLabelValues(cfg.Job).Dec()

	if cfg.Progress != nil {
		cfg.Progress.SetCurrentItem(out.Key)
	}

	start := time.Now()
	result, err := safeCall(ctx, item, fn)
	out.Duration = time.Since(start)
	ItemDuration.WithLabelValues(cfg.Job).Observe(out.Duration.Seconds())

	if err != nil {
		out.Status = StatusFailed
		out.Err = err
		out.ErrorType = model.ClassifyError(err)
	} else {
		out.Status = StatusSucceeded
		out.Result = result
	}
	ItemsTotal.WithLabelValues(cfg.Job, string(out.Status)).Inc()

	if cfg.Progress != nil {
		cfg.Progress.IncrementProcessed()
		if err != nil {
			cfg.Progress.IncrementFailed(err.Error())
		} else {
			cfg.Progress.IncrementSuccess()
		}
	}
}

// safeCall turns a panic of fn into an error wrapping model.ErrItemPanic
func safeCall[T, R any](ctx context.Context, item T, fn func(context.Context, T) (R, error)) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero R
			result = zero
			err = fmt.Errorf("%w: %v", model.ErrItemPanic, r)
		}
	}()
	return fn(ctx, item)
}
