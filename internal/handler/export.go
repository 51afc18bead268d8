package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/habitedge/habitedge/internal/ctxkeys"
	"github.com/habitedge/habitedge/internal/service"
)

// Imports carry a whole journal history, so they get a bigger cap
// than regular requests.
const maxImportSize = 32 << 20

type ExportHandler struct {
	exportService *service.ExportService
}

func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Download streams the full backup as a JSON attachment.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	export, err := h.exportService.Export(user.ID)
	if err != nil {
		slog.Error("failed to build export", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to build export")
		return
	}

	filename := fmt.Sprintf("habitedge-export-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	respondJSON(w, http.StatusOK, export)
}

// Upload restores a backup. The whole file is validated first; a bad
// record anywhere rejects the import without touching stored data.
func (h *ExportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "import file too large")
		return
	}

	summary, err := h.exportService.Import(user.ID, body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedExport), errors.Is(err, service.ErrMalformedExport):
			respondError(w, http.StatusBadRequest, err.Error())
		case respondValidationError(w, err):
		default:
			slog.Error("failed to import backup", "error", err, "user_id", user.ID)
			respondError(w, http.StatusInternalServerError, "failed to import backup")
		}
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
