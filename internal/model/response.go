package model

import "time"

// MatchRequest is the body of a single match call
type MatchRequest struct {
	Extracted  ExtractedCar      `json:"extracted"`
	Candidates []ExistingListing `json:"candidates"`
}

// BestOfferRequest is the body of a best-offer call
type BestOfferRequest struct {
	RetailPrice float64 `json:"retail_price"`
	Offers      []Offer `json:"offers"`
}

// BestOfferResponse carries the selected option and every option's score
type BestOfferResponse struct {
	Best   *BestOffer   `json:"best,omitempty"`
	Scores []OfferScore `json:"scores"`
}

// ReconcileRequest is the body of a reconcile call
type ReconcileRequest struct {
	Cars  []ExtractedCar `json:"cars"`
	Limit int            `json:"limit,omitempty"`
}

// ReconcileItem is the match outcome of one extracted car
type ReconcileItem struct {
	Index     int          `json:"index"`
	Vehicle   string       `json:"vehicle"`
	Status    string       `json:"status"`
	Match     *MatchResult `json:"match,omitempty"`
	Error     string       `json:"error,omitempty"`
	ErrorType string       `json:"error_type,omitempty"`
}

// ReconcileResponse summarizes a reconcile run
type ReconcileResponse struct {
	RunID     string          `json:"run_id"`
	Processed int             `json:"processed"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Skipped   int             `json:"skipped"`
	Exact     int             `json:"exact"`
	Fuzzy     int             `json:"fuzzy"`
	New       int             `json:"new"`
	Changed   int             `json:"changed"`
	Items     []ReconcileItem `json:"items"`
}

// HealthResponse is the health check payload
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
