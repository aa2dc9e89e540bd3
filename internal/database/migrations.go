package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type migration struct {
	name string
	sql  string
}

// migrations are idempotent and run in order on every start
var migrations = []migration{
	{"create listings", `
		CREATE TABLE IF NOT EXISTS listings (
			id TEXT PRIMARY KEY,
			make TEXT NOT NULL,
			model TEXT NOT NULL,
			variant TEXT NOT NULL DEFAULT '',
			horsepower INTEGER,
			fuel_type TEXT NOT NULL DEFAULT '',
			transmission TEXT NOT NULL DEFAULT '',
			body_type TEXT NOT NULL DEFAULT '',
			year INTEGER,
			wltp DOUBLE PRECISION,
			co2_emission DOUBLE PRECISION,
			consumption_l_100km DOUBLE PRECISION,
			retail_price NUMERIC(12,2),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`},
	{"add lease score columns", `
		ALTER TABLE listings
			ADD COLUMN IF NOT EXISTS lease_score INTEGER,
			ADD COLUMN IF NOT EXISTS lease_score_calculated_at TIMESTAMPTZ,
			ADD COLUMN IF NOT EXISTS lease_score_breakdown JSONB
	`},
	{"create idx_listings_make_model", `
		CREATE INDEX IF NOT EXISTS idx_listings_make_model
		ON listings (LOWER(make), LOWER(model))
	`},
	{"create idx_listings_lease_score_missing", `
		CREATE INDEX IF NOT EXISTS idx_listings_lease_score_missing
		ON listings (id) WHERE lease_score IS NULL
	`},
	{"create lease_pricing", `
		CREATE TABLE IF NOT EXISTS lease_pricing (
			id SERIAL PRIMARY KEY,
			listing_id TEXT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
			monthly_price INTEGER NOT NULL,
			first_payment INTEGER NOT NULL DEFAULT 0,
			period_months INTEGER NOT NULL,
			mileage_per_year INTEGER NOT NULL,
			CONSTRAINT lease_pricing_non_negative CHECK (
				monthly_price >= 0 AND first_payment >= 0 AND
				period_months >= 0 AND mileage_per_year >= 0
			)
		)
	`},
	{"create idx_lease_pricing_listing", `
		CREATE INDEX IF NOT EXISTS idx_lease_pricing_listing
		ON lease_pricing (listing_id)
	`},
	{"create batch_failures", `
		CREATE TABLE IF NOT EXISTS batch_failures (
			id SERIAL PRIMARY KEY,
			job TEXT NOT NULL,
			item_key TEXT NOT NULL,
			error_type TEXT NOT NULL,
			error_message TEXT NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 1,
			last_attempt TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			next_attempt TIMESTAMPTZ,
			resolved BOOLEAN NOT NULL DEFAULT FALSE,
			resolved_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT batch_failures_job_item UNIQUE (job, item_key)
		)
	`},
	{"create idx_batch_failures_pending", `
		CREATE INDEX IF NOT EXISTS idx_batch_failures_pending
		ON batch_failures (job, next_attempt) WHERE resolved = FALSE
	`},
}

// RunMigrations executes all database migrations
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("failed to %s: %w", m.name, err)
		}
	}
	return nil
}
