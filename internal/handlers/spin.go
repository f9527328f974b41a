package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Story91/Gambly/internal/services"
	"github.com/Story91/Gambly/internal/validation"
)

type SpinHandler struct {
	service *services.StatsService
}

func NewSpinHandler(service *services.StatsService) *SpinHandler {
	return &SpinHandler{service: service}
}

type SpinRequest struct {
	Address string `json:"address" validate:"required,eth_addr"`
	Seed    string `json:"seed"`
}

// PostSpin rolls the slot machine for an address and records the outcome.
func (h *SpinHandler) PostSpin(w http.ResponseWriter, r *http.Request) {
	var req SpinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Address == "" {
		writeErrorResponse(w, http.StatusBadRequest, "Address is required")
		return
	}
	if err := validation.Validate(req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.service.Spin(r.Context(), validation.NormalizeAddress(req.Address), req.Seed)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to process spin")
		return
	}

	writeJSONResponse(w, http.StatusOK, outcome)
}
