package handler

import (
	"encoding/json"
	"net/http"

	"leasing-catalog-api/internal/matching"
	"leasing-catalog-api/internal/model"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 10 << 20

type MatchHandler struct {
	matcher *matching.Matcher
}

func NewMatchHandler(matcher *matching.Matcher) *MatchHandler {
	return &MatchHandler{matcher: matcher}
}

// Match decides whether the extracted car corresponds to one of the candidates
func (h *MatchHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req model.MatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(model.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid JSON in request body",
		})
		return
	}

	result := h.matcher.Match(req.Extracted, req.Candidates)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
