package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sitefoto/sitefoto/internal/config"
	"github.com/sitefoto/sitefoto/internal/database"
	"github.com/sitefoto/sitefoto/internal/ingest"
)

// multipartMemoryLimit caps the in-memory part of multipart parsing;
// larger files spill to disk.
const multipartMemoryLimit = 32 << 20

// UploadHandler handles photo upload endpoints.
type UploadHandler struct {
	config *config.Config
	ingest *ingest.Service
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(cfg *config.Config, ingestSvc *ingest.Service) *UploadHandler {
	return &UploadHandler{config: cfg, ingest: ingestSvc}
}

// Upload handles multipart photo uploads into a project.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Upload.MaxRequestBytes)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	fileHeaders := r.MultipartForm.File["photos"]
	if len(fileHeaders) == 0 {
		respondError(w, http.StatusBadRequest, "no photos provided")
		return
	}

	files := make([]ingest.File, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to open uploaded file")
			return
		}
		defer f.Close()
		files = append(files, ingest.File{Filename: fh.Filename, Content: f})
	}

	result, err := h.ingest.Ingest(r.Context(), chi.URLParam(r, "id"), files, r.FormValue("default_description"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "project not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to ingest photos")
		return
	}
	respondJSON(w, http.StatusOK, result)
}
