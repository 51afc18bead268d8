package handler

import (
	"log/slog"
	"net/http"

	"github.com/habitedge/habitedge/internal/service"
)

type StatsHandler struct {
	statsService *service.StatsService
}

func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) Streaks(w http.ResponseWriter, r *http.Request) {
	streaks, err := h.statsService.Streaks()
	if err != nil {
		slog.Error("failed to compute streaks", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to compute streaks")
		return
	}

	respondJSON(w, http.StatusOK, streaks)
}

func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.statsService.Dashboard()
	if err != nil {
		slog.Error("failed to build dashboard", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}

	respondJSON(w, http.StatusOK, dashboard)
}
