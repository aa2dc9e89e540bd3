package model

import "time"

// LeaseScoreInput holds the economics of one pricing option
type LeaseScoreInput struct {
	RetailPrice    float64 `json:"retail_price"`
	MonthlyPrice   float64 `json:"monthly_price"`
	MileagePerYear float64 `json:"mileage_per_year"`
	ContractMonths float64 `json:"contract_months"`
}

// LeaseScoreBreakdown is the computed score with its sub-scores.
// MonthlyRatePercent and MileageNormalized are rounded to 2 decimals for display.
type LeaseScoreBreakdown struct {
	TotalScore         int     `json:"total_score"`
	MonthlyRateScore   int     `json:"monthly_rate_score"`
	MonthlyRatePercent float64 `json:"monthly_rate_percent"`
	MileageScore       int     `json:"mileage_score"`
	MileageNormalized  float64 `json:"mileage_normalized"`
	FlexibilityScore   int     `json:"flexibility_score"`
}

// OfferScore is the score (or the reason for no score) of one pricing option
type OfferScore struct {
	Index     int                  `json:"index"`
	Offer     Offer                `json:"offer"`
	Breakdown *LeaseScoreBreakdown `json:"breakdown,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// BestOffer is the highest scoring pricing option of a vehicle
type BestOffer struct {
	Index     int                 `json:"index"`
	Offer     Offer               `json:"offer"`
	Breakdown LeaseScoreBreakdown `json:"breakdown"`
}

// StoredLeaseScore is what gets persisted against a listing
type StoredLeaseScore struct {
	ListingID    string              `json:"listing_id"`
	Score        int                 `json:"score"`
	CalculatedAt time.Time           `json:"calculated_at"`
	Breakdown    LeaseScoreBreakdown `json:"breakdown"`
	Selected     Offer               `json:"selected_offer"`
}
