package model

import (
	"context"
	"errors"
	"strings"
	"time"
)

// BatchFailure records a failed batch item for later retry
type BatchFailure struct {
	ID           int        `json:"id"`
	Job          string     `json:"job"`
	ItemKey      string     `json:"item_key"`
	ErrorType    string     `json:"error_type"`
	ErrorMessage string     `json:"error_message"`
	Attempts     int        `json:"attempts"`
	LastAttempt  time.Time  `json:"last_attempt"`
	NextAttempt  *time.Time `json:"next_attempt,omitempty"`
	Resolved     bool       `json:"resolved"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

var (
	// ErrValidation is matched by every input validation error
	ErrValidation = errors.New("validation failed")
	// ErrNoOffers means a listing has no pricing options to score
	ErrNoOffers = errors.New("listing has no offers")
	// ErrMissingRetailPrice means a listing cannot be scored without a retail price
	ErrMissingRetailPrice = errors.New("listing has no retail price")
	// ErrItemPanic wraps a recovered panic of a single batch item
	ErrItemPanic = errors.New("item panicked")
)

// Error types for categorization
const (
	ErrorTypeValidation         = "validation"
	ErrorTypeNoOffers           = "no_offers"
	ErrorTypeMissingRetailPrice = "missing_retail_price"
	ErrorTypeDatabase           = "database"
	ErrorTypePanic              = "panic"
	ErrorTypeCancelled          = "cancelled"
	ErrorTypeUnknown            = "unknown"
)

// ClassifyError categorizes an item error into a type
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return ErrorTypeValidation
	case errors.Is(err, ErrNoOffers):
		return ErrorTypeNoOffers
	case errors.Is(err, ErrMissingRetailPrice):
		return ErrorTypeMissingRetailPrice
	case errors.Is(err, ErrItemPanic):
		return ErrorTypePanic
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeCancelled
	case contains(err.Error(), "context canceled", "deadline exceeded"):
		return ErrorTypeCancelled
	case contains(err.Error(), "connection", "timeout", "dial", "sqlstate", "failed to query", "failed to update"):
		return ErrorTypeDatabase
	default:
		return ErrorTypeUnknown
	}
}

// contains checks if s contains any of the substrings (case-insensitive)
func contains(s string, substrs ...string) bool {
	sLower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(sLower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
