package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Story91/Gambly/internal/services"
	"github.com/Story91/Gambly/internal/validation"
)

type StatsHandler struct {
	service *services.StatsService
}

func NewStatsHandler(service *services.StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// GetUserStats returns the counters for one address. Unknown addresses
// get the zero value, matching the "empty state is valid" contract.
func (h *StatsHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		writeErrorResponse(w, http.StatusBadRequest, "Address is required")
		return
	}
	if err := validation.ValidateAddress(address); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	stats := h.service.GetUserStats(r.Context(), validation.NormalizeAddress(address))
	writeJSONResponse(w, http.StatusOK, stats)
}

// UserStatsRequest covers both POST /user-stats actions. IsWin is a
// pointer so a missing or non-boolean value is distinguishable for the
// update action.
type UserStatsRequest struct {
	Address   string `json:"address" validate:"required,eth_addr"`
	Action    string `json:"action" validate:"required,oneof=create update"`
	IsWin     *bool  `json:"isWin"`
	TokensWon string `json:"tokensWon"`
}

// PostUserStats creates an account or records a completed spin,
// depending on the action field.
func (h *StatsHandler) PostUserStats(w http.ResponseWriter, r *http.Request) {
	var req UserStatsRequest
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
	address := validation.NormalizeAddress(req.Address)

	switch req.Action {
	case "create":
		if err := h.service.CreateAccount(r.Context(), address); err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Failed to create user account")
			return
		}
		writeJSONResponse(w, http.StatusOK, map[string]bool{"success": true})

	case "update":
		if req.IsWin == nil {
			writeErrorResponse(w, http.StatusBadRequest, "isWin must be a boolean")
			return
		}
		updated, err := h.service.RecordSpin(r.Context(), address, *req.IsWin, req.TokensWon)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Failed to update user stats")
			return
		}
		writeJSONResponse(w, http.StatusOK, updated)
	}
}

// GetGlobalStats returns the process-wide counters.
func (h *StatsHandler) GetGlobalStats(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.service.GetGlobalStats(r.Context()))
}

// AllUserStats is the bulk export of every address's counters. It dumps
// the whole user table, so the router mounts it behind bearer auth.
func (h *StatsHandler) AllUserStats(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.AllUserStats(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to fetch all user stats")
		return
	}
	writeJSONResponse(w, http.StatusOK, all)
}
