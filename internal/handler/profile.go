package handler

import (
	"log/slog"
	"net/http"

	"github.com/habitedge/habitedge/internal/ctxkeys"
	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())
	if profile == nil {
		respondError(w, http.StatusNotFound, "profile not found")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req struct {
		Name     string `json:"name"`
		Sport    string `json:"sport"`
		Position string `json:"position"`
		Level    string `json:"level"`
		Timezone string `json:"timezone"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile := &model.Profile{
		Name:     req.Name,
		Sport:    req.Sport,
		Position: req.Position,
		Level:    req.Level,
		Timezone: req.Timezone,
	}

	updated, err := h.profileService.Update(user.ID, profile)
	if err != nil {
		if respondValidationError(w, err) {
			return
		}
		slog.Error("failed to update profile", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}
