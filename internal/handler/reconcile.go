package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"leasing-catalog-api/internal/model"
)

// Reconciler matches a batch of extracted cars against the catalog
type Reconciler interface {
	Reconcile(ctx context.Context, cars []model.ExtractedCar, limit int) *model.ReconcileResponse
}

type ReconcileHandler struct {
	reconciler Reconciler
	maxCars    int
}

// NewReconcileHandler creates the handler; maxCars caps the cars processed per call
func NewReconcileHandler(reconciler Reconciler, maxCars int) *ReconcileHandler {
	return &ReconcileHandler{reconciler: reconciler, maxCars: maxCars}
}

// Reconcile runs a reconciliation batch and returns the per-car outcomes
func (h *ReconcileHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req model.ReconcileRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(model.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid JSON in request body",
		})
		return
	}

	if len(req.Cars) == 0 || req.Limit < 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(model.ErrorResponse{
			Error:   "invalid_request",
			Message: "At least one car and a non-negative limit are required",
		})
		return
	}

	limit := req.Limit
	if h.maxCars > 0 && (limit == 0 || limit > h.maxCars) {
		limit = h.maxCars
	}

	response := h.reconciler.Reconcile(r.Context(), req.Cars, limit)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
