package batch

import (
	"sync"
	"time"

	"leasing-catalog-api/internal/model"
)

// ProgressTracker tracks the progress of a running batch job
type ProgressTracker struct {
	mu sync.RWMutex

	job         string
	startedAt   time.Time
	finishedAt  time.Time
	totalItems  int
	processed   int
	success     int
	failed      int
	skipped     int
	currentItem string
	lastError   string

	// Matching stats
	exactMatch int
	fuzzyMatch int
	noMatch    int
	changed    int
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(job string, totalItems int) *ProgressTracker {
	return &ProgressTracker{
		job:        job,
		startedAt:  time.Now(),
		totalItems: totalItems,
	}
}

// SetTotal replaces the number of items expected
func (p *ProgressTracker) SetTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totalItems = total
}

// IncrementProcessed increments processed counter
func (p *ProgressTracker) IncrementProcessed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed++
}

// IncrementSuccess increments success counter
func (p *ProgressTracker) IncrementSuccess() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.success++
}

// IncrementFailed increments failed counter and sets error
func (p *ProgressTracker) IncrementFailed(err string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed++
	p.lastError = err
}

// IncrementSkipped increments skipped counter
func (p *ProgressTracker) IncrementSkipped() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.skipped++
}

// RecordMatch counts one match decision by tier
func (p *ProgressTracker) RecordMatch(method model.MatchMethod, changed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch method {
	case model.MatchExact:
		p.exactMatch++
	case model.MatchFuzzy:
		p.fuzzyMatch++
	default:
		p.noMatch++
	}
	if changed {
		p.changed++
	}
}

// SetCurrentItem sets the key of the item being processed
func (p *ProgressTracker) SetCurrentItem(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentItem = key
}

// Finish marks the job as done
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finishedAt = time.Now()
	p.currentItem = ""
}

// GetSnapshot returns a snapshot of current progress
func (p *ProgressTracker) GetSnapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	status := "running"
	end := time.Now()
	if !p.finishedAt.IsZero() {
		status = "finished"
		end = p.finishedAt
	}
	elapsed := end.Sub(p.startedAt)

	percentage := 0.0
	if p.totalItems > 0 {
		percentage = (float64(p.processed) / float64(p.totalItems)) * 100
	}

	// Calculate ETA
	var remaining time.Duration
	if p.processed > 0 && status == "running" {
		avgPerItem := elapsed / time.Duration(p.processed)
		remaining = avgPerItem * time.Duration(max(0, p.totalItems-p.processed))
	}

	itemsPerSec := 0.0
	if elapsed.Seconds() > 0 {
		itemsPerSec = float64(p.processed) / elapsed.Seconds()
	}

	return ProgressSnapshot{
		Job:         p.job,
		Status:      status,
		StartedAt:   p.startedAt,
		Elapsed:     elapsed,
		TotalItems:  p.totalItems,
		Processed:   p.processed,
		Success:     p.success,
		Failed:      p.failed,
		Skipped:     p.skipped,
		Percentage:  percentage,
		CurrentItem: p.currentItem,
		LastError:   p.lastError,
		ExactMatch:  p.exactMatch,
		FuzzyMatch:  p.fuzzyMatch,
		NoMatch:     p.noMatch,
		Changed:     p.changed,
		ItemsPerSec: itemsPerSec,
		Remaining:   remaining,
	}
}

// ProgressSnapshot is a point-in-time snapshot of progress
type ProgressSnapshot struct {
	Job         string
	Status      string
	StartedAt   time.Time
	Elapsed     time.Duration
	TotalItems  int
	Processed   int
	Success     int
	Failed      int
	Skipped     int
	Percentage  float64
	CurrentItem string
	LastError   string
	ExactMatch  int
	FuzzyMatch  int
	NoMatch     int
	Changed     int
	ItemsPerSec float64
	Remaining   time.Duration
}
