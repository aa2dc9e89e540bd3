package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"leasing-catalog-api/internal/model"
)

// BatchFailureRepo handles database operations for failed batch items
type BatchFailureRepo struct {
	pool *pgxpool.Pool
}

// NewBatchFailureRepo creates a new batch failure repository
func NewBatchFailureRepo(pool *pgxpool.Pool) *BatchFailureRepo {
	return &BatchFailureRepo{pool: pool}
}

// NextAttempt returns when an item failing with errorType should be retried.
// Nil means no automatic retry: the data has to change first.
func NextAttempt(errorType string, now time.Time) *time.Time {
	var delay time.Duration
	switch errorType {
	case model.ErrorTypeValidation, model.ErrorTypeNoOffers, model.ErrorTypeMissingRetailPrice:
		return nil
	case model.ErrorTypeCancelled:
		delay = 0
	case model.ErrorTypeDatabase:
		delay = 5 * time.Minute
	default:
		delay = 30 * time.Minute
	}
	t := now.Add(delay)
	return &t
}

// Upsert inserts or updates a failure record.
// An item that already failed gets its attempt counter incremented.
func (r *BatchFailureRepo) Upsert(ctx context.Context, job, itemKey, errorType, message string) error {
	query := `
		INSERT INTO batch_failures (
			job, item_key, error_type, error_message, attempts,
			last_attempt, next_attempt
		) VALUES ($1, $2, $3, $4, 1, NOW(), $5)
		ON CONFLICT (job, item_key) DO UPDATE SET
			error_type = EXCLUDED.error_type,
			error_message = EXCLUDED.error_message,
			attempts = batch_failures.attempts + 1,
			last_attempt = NOW(),
			next_attempt = EXCLUDED.next_attempt,
			resolved = FALSE,
			resolved_at = NULL
	`

	_, err := r.pool.Exec(ctx, query, job, itemKey, errorType, message, NextAttempt(errorType, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to upsert batch failure: %w", err)
	}

	return nil
}

// MarkResolved marks a failure as resolved once the item succeeds
func (r *BatchFailureRepo) MarkResolved(ctx context.Context, job, itemKey string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE batch_failures
		SET resolved = TRUE, resolved_at = NOW()
		WHERE job = $1 AND item_key = $2 AND resolved = FALSE
	`, job, itemKey)
	if err != nil {
		return fmt.Errorf("failed to mark failure as resolved: %w", err)
	}

	return nil
}

// GetPendingRetries returns failures of a job that are due for retry
func (r *BatchFailureRepo) GetPendingRetries(ctx context.Context, job string, limit int) ([]model.BatchFailure, error) {
	query := `
		SELECT
			id, job, item_key, error_type, error_message,
			attempts, last_attempt, next_attempt,
			resolved, resolved_at, created_at
		FROM batch_failures
		WHERE job = $1
		AND resolved = FALSE
		AND next_attempt IS NOT NULL AND next_attempt <= NOW()
		ORDER BY next_attempt ASC, attempts ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, job, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending retries: %w", err)
	}
	defer rows.Close()

	var failures []model.BatchFailure
	for rows.Next() {
		var f model.BatchFailure
		err := rows.Scan(
			&f.ID, &f.Job, &f.ItemKey, &f.ErrorType, &f.ErrorMessage,
			&f.Attempts, &f.LastAttempt, &f.NextAttempt,
			&f.Resolved, &f.ResolvedAt, &f.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan failure row: %w", err)
		}
		failures = append(failures, f)
	}

	return failures, rows.Err()
}

// GetStats returns unresolved failure counts per error type
func (r *BatchFailureRepo) GetStats(ctx context.Context, job string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT error_type, COUNT(*)
		FROM batch_failures
		WHERE job = $1 AND resolved = FALSE
		GROUP BY error_type
	`, job)
	if err != nil {
		return nil, fmt.Errorf("failed to query failure stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var errorType string
		var count int
		if err := rows.Scan(&errorType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats[errorType] = count
	}

	return stats, rows.Err()
}

// CountPending returns the number of unresolved failures of a job
func (r *BatchFailureRepo) CountPending(ctx context.Context, job string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM batch_failures WHERE job = $1 AND resolved = FALSE
	`, job).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending failures: %w", err)
	}
	return count, nil
}

// DeleteResolved removes resolved failure records older than specified duration
func (r *BatchFailureRepo) DeleteResolved(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	result, err := r.pool.Exec(ctx, `
		DELETE FROM batch_failures
		WHERE resolved = TRUE AND resolved_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete resolved failures: %w", err)
	}

	return result.RowsAffected(), nil
}
