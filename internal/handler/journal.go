package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/habitedge/habitedge/internal/ctxkeys"
	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/repository"
	"github.com/habitedge/habitedge/internal/service"
	"github.com/habitedge/habitedge/internal/validation"
)

type JournalHandler struct {
	journalService *service.JournalService
	mediaService   *service.MediaService
}

func NewJournalHandler(journalService *service.JournalService, mediaService *service.MediaService) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
		mediaService:   mediaService,
	}
}

// entryResponse attaches uploaded media to an entry.
type entryResponse struct {
	*model.JournalEntry
	Attachments []*model.Media `json:"attachments,omitempty"`
}

func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := service.EntryFilter{
		Type: r.URL.Query().Get("type"),
	}

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := parseDate(from)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		filter.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := parseDate(to)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		filter.To = t
	}

	entries, err := h.journalService.Entries(filter)
	if err != nil {
		slog.Error("failed to load journal", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load journal")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	entry, err := h.journalService.ByID(id)
	if err != nil {
		h.respondEntryError(w, err, "failed to load entry")
		return
	}

	resp := entryResponse{JournalEntry: entry}
	if h.mediaService.Enabled() {
		attachments, err := h.mediaService.ByEntry(id)
		if err != nil {
			slog.Warn("failed to load attachments", "error", err, "entry_id", id)
		} else {
			resp.Attachments = attachments
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var entry model.JournalEntry
	if err := decodeJSON(w, r, &entry); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.journalService.Create(&entry)
	if err != nil {
		h.respondEntryError(w, err, "failed to create entry")
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

func (h *JournalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	var entry model.JournalEntry
	if err := decodeJSON(w, r, &entry); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	entry.ID = id

	updated, err := h.journalService.Update(&entry)
	if err != nil {
		h.respondEntryError(w, err, "failed to update entry")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	if err := h.journalService.Delete(id); err != nil {
		h.respondEntryError(w, err, "failed to delete entry")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// UploadAttachment accepts a photo or film clip for an entry.
func (h *JournalHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	if !h.mediaService.Enabled() {
		respondError(w, http.StatusServiceUnavailable, "uploads are disabled on this server")
		return
	}

	user := ctxkeys.User(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	if _, err := h.journalService.ByID(id); err != nil {
		h.respondEntryError(w, err, "failed to load entry")
		return
	}

	// Limit upload size (aligned with the video constraint)
	r.Body = http.MaxBytesReader(w, r.Body, validation.VideoConstraints.MaxSize+(1<<20))

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer func() { _ = file.Close() }()

	if err := validation.ValidateFile(header, validation.ImageConstraints, validation.VideoConstraints); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	media, err := h.mediaService.Upload(user.ID, &id, model.MediaTypeAttachment, file, header)
	if err != nil {
		slog.Error("failed to upload attachment", "error", err, "entry_id", id)
		respondError(w, http.StatusInternalServerError, "failed to upload attachment")
		return
	}

	respondJSON(w, http.StatusCreated, media)
}

func (h *JournalHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	mediaID := r.PathValue("mediaId")
	if mediaID == "" {
		respondError(w, http.StatusBadRequest, "invalid media id")
		return
	}

	err := h.mediaService.Delete(mediaID)
	if err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			respondError(w, http.StatusNotFound, "attachment not found")
			return
		}
		slog.Error("failed to delete attachment", "error", err, "media_id", mediaID)
		respondError(w, http.StatusInternalServerError, "failed to delete attachment")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (h *JournalHandler) respondEntryError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		respondError(w, http.StatusNotFound, "entry not found")
	case respondValidationError(w, err):
	default:
		slog.Error(logMsg, "error", err)
		respondError(w, http.StatusInternalServerError, "something went wrong")
	}
}

// parseDate accepts a date ("2006-01-02") or a full RFC3339
// timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
