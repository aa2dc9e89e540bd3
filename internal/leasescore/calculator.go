// Package leasescore rates the economics of lease offers on a 0-100 scale.
package leasescore

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"leasing-catalog-api/internal/model"
)

const (
	// Sub-score weights in percent
	weightMonthlyRate = 45
	weightMileage     = 35
	weightFlexibility = 20

	// Mileage allowance that counts as a normal year
	baselineMileagePerYear = 15000.0
)

// tier maps a threshold to a score
type tier struct {
	limit float64
	score int
}

// monthlyRateTiers: first tier whose limit is above the rate wins
var monthlyRateTiers = []tier{
	{0.9, 100},
	{1.1, 90},
	{1.3, 80},
	{1.5, 70},
	{1.7, 60},
	{1.9, 50},
	{2.1, 40},
}

const monthlyRateFloor = 25

// mileageTiers: first tier whose limit is reached wins
var mileageTiers = []tier{
	{1.67, 100},
	{1.33, 90},
	{1.0, 75},
	{0.8, 55},
	{0.67, 35},
}

const mileageFloor = 20

// flexibilityTiers: first tier whose limit is not exceeded wins
var flexibilityTiers = []tier{
	{12, 100},
	{24, 90},
	{36, 75},
	{48, 55},
}

const flexibilityFloor = 30

// ErrNoValidOffers is returned when no pricing option of a vehicle can be scored
var ErrNoValidOffers = fmt.Errorf("no valid offers to score: %w", model.ErrValidation)

// ValidationError reports malformed lease economics
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Is makes every ValidationError match model.ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == model.ErrValidation
}

// Validate checks the input without scoring it
func Validate(in model.LeaseScoreInput) error {
	checks := []struct {
		field     string
		value     float64
		allowZero bool
	}{
		{"retail_price", in.RetailPrice, false},
		{"monthly_price", in.MonthlyPrice, false},
		{"mileage_per_year", in.MileagePerYear, true},
		{"contract_months", in.ContractMonths, false},
	}

	for _, c := range checks {
		switch {
		case math.IsNaN(c.value) || math.IsInf(c.value, 0):
			return &ValidationError{Field: c.field, Value: c.value, Reason: "must be finite"}
		case c.allowZero && c.value < 0:
			return &ValidationError{Field: c.field, Value: c.value, Reason: "must not be negative"}
		case !c.allowZero && c.value <= 0:
			return &ValidationError{Field: c.field, Value: c.value, Reason: "must be positive"}
		}
	}
	return nil
}

// Calculate scores one pricing option
func Calculate(in model.LeaseScoreInput) (model.LeaseScoreBreakdown, error) {
	if err := Validate(in); err != nil {
		return model.LeaseScoreBreakdown{}, err
	}

	ratePercent := in.MonthlyPrice / in.RetailPrice * 100
	mileageNormalized := in.MileagePerYear / baselineMileagePerYear

	rateScore := MonthlyRateScore(ratePercent)
	mileageScore := MileageScore(mileageNormalized)
	flexScore := FlexibilityScore(in.ContractMonths)

	// integer arithmetic keeps x.5 totals exact for round-half-up
	weighted := weightMonthlyRate*rateScore + weightMileage*mileageScore + weightFlexibility*flexScore
	total := (weighted + 50) / 100

	return model.LeaseScoreBreakdown{
		TotalScore:         total,
		MonthlyRateScore:   rateScore,
		MonthlyRatePercent: round2(ratePercent),
		MileageScore:       mileageScore,
		MileageNormalized:  round2(mileageNormalized),
		FlexibilityScore:   flexScore,
	}, nil
}

// MonthlyRateScore maps the monthly price as percent of retail to a score
func MonthlyRateScore(ratePercent float64) int {
	for _, t := range monthlyRateTiers {
		if ratePercent < t.limit {
			return t.score
		}
	}
	return monthlyRateFloor
}

// MileageScore maps yearly mileage relative to 15,000 km to a score
func MileageScore(normalized float64) int {
	for _, t := range mileageTiers {
		if normalized >= t.limit {
			return t.score
		}
	}
	return mileageFloor
}

// FlexibilityScore maps the contract length in months to a score
func FlexibilityScore(months float64) int {
	for _, t := range flexibilityTiers {
		if months <= t.limit {
			return t.score
		}
	}
	return flexibilityFloor
}

// round2 rounds half away from zero to 2 decimals
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
