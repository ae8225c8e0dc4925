package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sitefoto/sitefoto/internal/archive"
	"github.com/sitefoto/sitefoto/internal/database"
)

// ExportHandler handles album archive downloads.
type ExportHandler struct {
	exporter *archive.Exporter
}

// NewExportHandler creates a new export handler.
func NewExportHandler(exporter *archive.Exporter) *ExportHandler {
	return &ExportHandler{exporter: exporter}
}

// Download streams a zip archive of all project photos.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	arch, err := h.exporter.Export(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "no photos to export")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to build archive")
		return
	}
	defer arch.Close()

	rc, err := arch.Open()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to open archive")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/zip")
	// The archive name derives from the user-chosen project name; quote
	// and escape it so it cannot break out of the header value.
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": arch.Name}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("archive download interrupted", "archive", arch.Name, "error", err)
	}
}
