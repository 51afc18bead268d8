package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/habitedge/habitedge/internal/markdown"
	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/service"
)

type TargetHandler struct {
	targetService *service.TargetService
	markdown      *markdown.Parser
}

func NewTargetHandler(targetService *service.TargetService) *TargetHandler {
	return &TargetHandler{
		targetService: targetService,
		markdown:      markdown.NewParser(),
	}
}

// targetResponse decorates a target with the derived numbers clients
// render everywhere (progress bars, countdowns).
type targetResponse struct {
	*model.Target
	Total           float64 `json:"total"`
	PercentComplete float64 `json:"percentComplete"`
	DaysRemaining   *int    `json:"daysRemaining,omitempty"`
	PlanHTML        string  `json:"planHtml,omitempty"`
}

func newTargetResponse(t *model.Target, now time.Time) targetResponse {
	resp := targetResponse{
		Target:          t,
		Total:           t.Total(),
		PercentComplete: t.PercentComplete(),
	}
	if days, ok := t.DaysRemaining(now); ok {
		resp.DaysRemaining = &days
	}
	return resp
}

func newTargetResponses(targets []*model.Target) []targetResponse {
	now := time.Now()
	resp := make([]targetResponse, 0, len(targets))
	for _, t := range targets {
		resp = append(resp, newTargetResponse(t, now))
	}
	return resp
}

func (h *TargetHandler) List(w http.ResponseWriter, r *http.Request) {
	targets, err := h.targetService.Targets()
	if err != nil {
		slog.Error("failed to load targets", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load targets")
		return
	}

	respondJSON(w, http.StatusOK, newTargetResponses(targets))
}

func (h *TargetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid target id")
		return
	}

	target, err := h.targetService.ByID(id)
	if err != nil {
		h.respondTargetError(w, err, "failed to load target")
		return
	}

	// The detail view shows the plan rendered; list responses carry
	// only the raw text.
	resp := newTargetResponse(target, time.Now())
	if target.Plan != "" {
		html, err := h.markdown.Plan(target.Plan)
		if err != nil {
			slog.Warn("failed to render plan", "error", err, "target_id", target.ID)
		} else {
			resp.PlanHTML = html
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

type targetRequest struct {
	Title       string     `json:"title"`
	Kind        string     `json:"kind"`
	TargetValue float64    `json:"targetValue"`
	Unit        string     `json:"unit"`
	Plan        string     `json:"plan"`
	Deadline    *time.Time `json:"deadline"`
}

func (h *TargetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := h.targetService.Create(req.Title, req.Kind, service.TargetEdit{
		TargetValue: req.TargetValue,
		Unit:        req.Unit,
		Plan:        req.Plan,
		Deadline:    req.Deadline,
	})
	if err != nil {
		h.respondTargetError(w, err, "failed to create target")
		return
	}

	respondJSON(w, http.StatusCreated, newTargetResponse(target, time.Now()))
}

func (h *TargetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid target id")
		return
	}

	var req targetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := h.targetService.Update(id, service.TargetEdit{
		Title:       req.Title,
		TargetValue: req.TargetValue,
		Unit:        req.Unit,
		Plan:        req.Plan,
		Deadline:    req.Deadline,
	})
	if err != nil {
		h.respondTargetError(w, err, "failed to update target")
		return
	}

	respondJSON(w, http.StatusOK, newTargetResponse(target, time.Now()))
}

func (h *TargetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid target id")
		return
	}

	if err := h.targetService.Delete(id); err != nil {
		h.respondTargetError(w, err, "failed to delete target")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

type progressRequest struct {
	ID        int64     `json:"id"`
	Value     float64   `json:"value"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

// LogProgress appends a progress value, or updates one in place when
// the request carries an existing entry id.
func (h *TargetHandler) LogProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid target id")
		return
	}

	var req progressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := h.targetService.LogProgress(id, model.ProgressEntry{
		ID:        req.ID,
		Value:     req.Value,
		Note:      req.Note,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		h.respondTargetError(w, err, "failed to log progress")
		return
	}

	respondJSON(w, http.StatusOK, newTargetResponse(target, time.Now()))
}

func (h *TargetHandler) RemoveProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid target id")
		return
	}
	entryID, err := pathID(r, "entryId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	target, err := h.targetService.RemoveProgress(id, entryID)
	if err != nil {
		h.respondTargetError(w, err, "failed to remove progress")
		return
	}

	respondJSON(w, http.StatusOK, newTargetResponse(target, time.Now()))
}

type completeRequest struct {
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *TargetHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid target id")
		return
	}

	var req completeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := h.targetService.Complete(id, req.Note, req.Timestamp)
	if err != nil {
		h.respondTargetError(w, err, "failed to complete target")
		return
	}

	respondJSON(w, http.StatusOK, newTargetResponse(target, time.Now()))
}

func (h *TargetHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid target id")
		return
	}

	target, err := h.targetService.Reopen(id)
	if err != nil {
		h.respondTargetError(w, err, "failed to reopen target")
		return
	}

	respondJSON(w, http.StatusOK, newTargetResponse(target, time.Now()))
}

// SetPriority returns the whole collection because toggling one
// target's flag clears everyone else's.
func (h *TargetHandler) SetPriority(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid target id")
		return
	}

	targets, err := h.targetService.SetPriority(id)
	if err != nil {
		h.respondTargetError(w, err, "failed to set priority")
		return
	}

	respondJSON(w, http.StatusOK, newTargetResponses(targets))
}

func (h *TargetHandler) respondTargetError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrTargetNotFound):
		respondError(w, http.StatusNotFound, "target not found")
	case errors.Is(err, service.ErrNotNumeric), errors.Is(err, service.ErrNotBoolean):
		respondError(w, http.StatusBadRequest, err.Error())
	case respondValidationError(w, err):
	default:
		slog.Error(logMsg, "error", err)
		respondError(w, http.StatusInternalServerError, "something went wrong")
	}
}
