package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"leasing-catalog-api/internal/leasescore"
	"leasing-catalog-api/internal/model"
)

// ListingGetter loads a single catalog listing
type ListingGetter interface {
	GetByID(ctx context.Context, id string) (*model.ExistingListing, error)
}

type LeaseScoreHandler struct {
	listings ListingGetter
}

func NewLeaseScoreHandler(listings ListingGetter) *LeaseScoreHandler {
	return &LeaseScoreHandler{listings: listings}
}

// Calculate scores a single pricing option
func (h *LeaseScoreHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var in model.LeaseScoreInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(model.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid JSON in request body",
		})
		return
	}

	breakdown, err := leasescore.Calculate(in)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(model.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(breakdown)
}

// Best scores every offer and returns the best one with all per-offer scores
func (h *LeaseScoreHandler) Best(w http.ResponseWriter, r *http.Request) {
	var req model.BestOfferRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(model.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid JSON in request body",
		})
		return
	}

	writeBestOffer(w, req.RetailPrice, req.Offers)
}

// ForListing scores the stored offers of a catalog listing without saving
func (h *LeaseScoreHandler) ForListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	listing, err := h.listings.GetByID(r.Context(), id)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(model.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to load listing",
		})
		return
	}
	if listing == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(model.ErrorResponse{
			Error:   "not_found",
			Message: "Listing not found",
		})
		return
	}
	if listing.RetailPrice == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(model.ErrorResponse{
			Error:   model.ErrorTypeMissingRetailPrice,
			Message: model.ErrMissingRetailPrice.Error(),
		})
		return
	}

	writeBestOffer(w, *listing.RetailPrice, listing.Offers)
}

func writeBestOffer(w http.ResponseWriter, retailPrice float64, offers []model.Offer) {
	best, scores, err := leasescore.SelectBest(retailPrice, offers)
	if errors.Is(err, leasescore.ErrNoValidOffers) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(model.ErrorResponse{
			Error:   "no_valid_offers",
			Message: err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.BestOfferResponse{
		Best:   &best,
		Scores: scores,
	})
}
