package handlers

import (
	"net/http"
	"strconv"

	"github.com/Story91/Gambly/internal/leaderboard"
	"github.com/Story91/Gambly/internal/models"
	"github.com/Story91/Gambly/internal/services"
)

type LeaderboardHandler struct {
	service *services.StatsService
}

func NewLeaderboardHandler(service *services.StatsService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

// GetLeaderboard serves one page of a ranking. Pagination parameters are
// validated here so bad requests never reach the index.
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	typ := models.RankingType(query.Get("type"))
	if typ == "" {
		typ = models.RankingTotalWon
	}
	if !typ.Valid() {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid type. Must be total_won or win_ratio")
		return
	}

	limit := 10
	if v := query.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > leaderboard.MaxPageSize {
			writeErrorResponse(w, http.StatusBadRequest, "Limit must be between 1 and 50")
			return
		}
		limit = parsed
	}

	offset := 0
	if v := query.Get("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeErrorResponse(w, http.StatusBadRequest, "Offset must be non-negative")
			return
		}
		offset = parsed
	}

	resolveNames := query.Get("resolveNames") == "true"

	result, err := h.service.Leaderboard(r.Context(), typ, limit, offset, resolveNames)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to get leaderboard")
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}
