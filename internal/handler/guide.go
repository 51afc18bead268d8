package handler

import (
	"log/slog"
	"net/http"

	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/service"
)

type GuideHandler struct {
	guideService *service.GuideService
}

func NewGuideHandler(guideService *service.GuideService) *GuideHandler {
	return &GuideHandler{guideService: guideService}
}

// List returns the training guides, optionally filtered by sport or
// tag. Guides without a sport apply to everyone and survive the
// sport filter.
func (h *GuideHandler) List(w http.ResponseWriter, r *http.Request) {
	var guides []*model.Guide
	var err error

	switch {
	case r.URL.Query().Get("sport") != "":
		guides, err = h.guideService.GuidesBySport(r.URL.Query().Get("sport"))
	case r.URL.Query().Get("tag") != "":
		guides, err = h.guideService.GuidesByTag(r.URL.Query().Get("tag"))
	default:
		guides, err = h.guideService.Guides()
	}
	if err != nil {
		slog.Error("failed to load guides", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load guides")
		return
	}

	respondJSON(w, http.StatusOK, guides)
}

func (h *GuideHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	guide, err := h.guideService.Guide(slug)
	if err != nil {
		respondError(w, http.StatusNotFound, "guide not found")
		return
	}

	respondJSON(w, http.StatusOK, guide)
}
