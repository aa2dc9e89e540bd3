package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leasing-catalog-api/internal/model"
)

// ListingRepo reads catalog listings with their offers and stores lease scores
type ListingRepo struct {
	db *pgxpool.Pool
}

func NewListingRepo(db *pgxpool.Pool) *ListingRepo {
	return &ListingRepo{db: db}
}

const listingSelect = `
	SELECT
		l.id, l.make, l.model, l.variant,
		l.horsepower, l.fuel_type, l.transmission, l.body_type, l.year,
		l.wltp, l.co2_emission, l.consumption_l_100km,
		l.retail_price::float8,
		COALESCE(
			json_agg(json_build_object(
				'monthly_price', p.monthly_price,
				'first_payment', p.first_payment,
				'period_months', p.period_months,
				'mileage_per_year', p.mileage_per_year
			) ORDER BY p.id) FILTER (WHERE p.id IS NOT NULL),
			'[]'
		) AS offers
	FROM listings l
	LEFT JOIN lease_pricing p ON p.listing_id = l.id
`

// ListForScoring returns listings without a lease score, or every listing when
// force is set. A limit of 0 means no limit.
func (r *ListingRepo) ListForScoring(ctx context.Context, limit int, force bool) ([]model.ExistingListing, error) {
	query := listingSelect + `
		WHERE ($1 OR l.lease_score IS NULL)
		GROUP BY l.id
		ORDER BY l.id
		LIMIT NULLIF($2, 0)
	`

	rows, err := r.db.Query(ctx, query, force, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings for scoring: %w", err)
	}
	return scanListings(rows)
}

// ListAll returns every listing with its offers
func (r *ListingRepo) ListAll(ctx context.Context) ([]model.ExistingListing, error) {
	query := listingSelect + `
		GROUP BY l.id
		ORDER BY l.id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	return scanListings(rows)
}

// GetByID returns one listing, nil when it does not exist
func (r *ListingRepo) GetByID(ctx context.Context, id string) (*model.ExistingListing, error) {
	query := listingSelect + `
		WHERE l.id = $1
		GROUP BY l.id
	`

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query listing %s: %w", id, err)
	}
	listings, err := scanListings(rows)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, nil
	}
	return &listings[0], nil
}

// SaveLeaseScore persists the score, its timestamp and the breakdown including
// the selected offer
func (r *ListingRepo) SaveLeaseScore(ctx context.Context, score model.StoredLeaseScore) error {
	breakdown, err := marshalBreakdown(score)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(ctx, `
		UPDATE listings
		SET lease_score = $2,
			lease_score_calculated_at = $3,
			lease_score_breakdown = $4,
			updated_at = NOW()
		WHERE id = $1
	`, score.ListingID, score.Score, score.CalculatedAt, breakdown)
	if err != nil {
		return fmt.Errorf("failed to update lease score of %s: %w", score.ListingID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("failed to update lease score: listing %s not found", score.ListingID)
	}

	return nil
}

// storedBreakdown is the JSONB layout of lease_score_breakdown
type storedBreakdown struct {
	model.LeaseScoreBreakdown
	SelectedOffer model.Offer `json:"selected_offer"`
}

func marshalBreakdown(score model.StoredLeaseScore) ([]byte, error) {
	data, err := json.Marshal(storedBreakdown{
		LeaseScoreBreakdown: score.Breakdown,
		SelectedOffer:       score.Selected,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lease score breakdown: %w", err)
	}
	return data, nil
}

func scanListings(rows pgx.Rows) ([]model.ExistingListing, error) {
	defer rows.Close()

	var listings []model.ExistingListing
	for rows.Next() {
		var (
			l            model.ExistingListing
			transmission string
			offers       []byte
		)
		err := rows.Scan(
			&l.ID, &l.Make, &l.Model, &l.Variant,
			&l.Horsepower, &l.FuelType, &transmission, &l.BodyType, &l.Year,
			&l.WLTP, &l.CO2Emission, &l.ConsumptionL100km,
			&l.RetailPrice,
			&offers,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}

		l.Transmission = model.Transmission(transmission)
		if l.Offers, err = decodeOffers(offers); err != nil {
			return nil, fmt.Errorf("listing %s: %w", l.ID, err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", err)
	}

	return listings, nil
}

func decodeOffers(data []byte) ([]model.Offer, error) {
	var offers []model.Offer
	if len(data) == 0 {
		return offers, nil
	}
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, fmt.Errorf("failed to decode offers: %w", err)
	}
	return offers, nil
}
