package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sitefoto/sitefoto/internal/config"
	"github.com/sitefoto/sitefoto/internal/database"
	"github.com/sitefoto/sitefoto/internal/imaging"
	"github.com/sitefoto/sitefoto/internal/ingest"
	"github.com/sitefoto/sitefoto/internal/lifecycle"
)

// PhotosHandler handles photo endpoints.
type PhotosHandler struct {
	config     *config.Config
	projects   database.ProjectRepository
	photos     database.PhotoRepository
	lifecycle  *lifecycle.Manager
	normalizer *imaging.Normalizer
	ingest     *ingest.Service
}

// NewPhotosHandler creates a new photos handler.
func NewPhotosHandler(
	cfg *config.Config,
	projects database.ProjectRepository,
	photos database.PhotoRepository,
	lm *lifecycle.Manager,
	normalizer *imaging.Normalizer,
	ingestSvc *ingest.Service,
) *PhotosHandler {
	return &PhotosHandler{
		config:     cfg,
		projects:   projects,
		photos:     photos,
		lifecycle:  lm,
		normalizer: normalizer,
		ingest:     ingestSvc,
	}
}

type photoResponse struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	Filename    string `json:"filename"`
	UploadedAt  string `json:"uploaded_at"`
	TakenAt     string `json:"taken_at,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

func toPhotoResponse(p *database.Photo) photoResponse {
	return photoResponse{
		ID:          p.ID,
		ProjectID:   p.ProjectID,
		Filename:    p.Filename,
		UploadedAt:  p.UploadedAt.UTC().Format("2006-01-02T15:04:05Z"),
		TakenAt:     formatTakenAt(p.TakenAt),
		Location:    p.Location,
		Description: p.Description,
	}
}

// getPhoto loads the photo from the URL parameter, writing the error
// response itself. Returns nil when the request is already answered.
func (h *PhotosHandler) getPhoto(w http.ResponseWriter, r *http.Request) *database.Photo {
	photo, err := h.photos.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "photo not found")
			return nil
		}
		respondError(w, http.StatusInternalServerError, "failed to get photo")
		return nil
	}
	return photo
}

// renamePhoto applies a new display name to the photo and moves the
// on-disk file to match. A name without an extension inherits the
// photo's current extension. The record is not persisted here.
func (h *PhotosHandler) renamePhoto(photo *database.Photo, newName string) error {
	if filepath.Ext(newName) == "" {
		newName += strings.ToLower(filepath.Ext(photo.Filename))
	}
	sanitized := ingest.SanitizeFilename(newName)
	if sanitized == photo.Filename {
		return nil
	}

	dir := h.ingest.ProjectDir(photo.ProjectID)
	resolved := ingest.ResolveFilename(dir, sanitized)
	newPath := filepath.Join(dir, resolved)

	if err := os.Rename(photo.Filepath, newPath); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		// File already gone; the record still tracks the new location.
		slog.Warn("photo file missing during rename", "photo_id", photo.ID, "path", photo.Filepath)
	}

	photo.Filename = resolved
	photo.Filepath = newPath
	return nil
}

func (h *PhotosHandler) Get(w http.ResponseWriter, r *http.Request) {
	photo := h.getPhoto(w, r)
	if photo == nil {
		return
	}
	respondJSON(w, http.StatusOK, toPhotoResponse(photo))
}

func (h *PhotosHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	if _, err := h.projects.Get(r.Context(), projectID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "project not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get project")
		return
	}

	photos, err := h.photos.ListByProject(r.Context(), projectID, database.OrderUploadedDesc)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list photos")
		return
	}
	result := make([]photoResponse, len(photos))
	for i := range photos {
		result[i] = toPhotoResponse(&photos[i])
	}
	respondJSON(w, http.StatusOK, result)
}

type photoUpdateRequest struct {
	Filename    *string `json:"filename"`
	TakenAt     *string `json:"taken_at"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
}

func (h *PhotosHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req photoUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	photo := h.getPhoto(w, r)
	if photo == nil {
		return
	}

	if req.TakenAt != nil {
		takenAt, err := parseTakenAt(*req.TakenAt)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid taken_at date")
			return
		}
		photo.TakenAt = takenAt
	}
	if req.Location != nil {
		photo.Location = *req.Location
	}
	if req.Description != nil {
		photo.Description = *req.Description
	}
	if req.Filename != nil {
		if *req.Filename == "" {
			respondError(w, http.StatusBadRequest, "filename must not be empty")
			return
		}
		if err := h.renamePhoto(photo, *req.Filename); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to rename photo file")
			return
		}
	}

	if err := h.photos.Update(r.Context(), photo); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update photo")
		return
	}
	respondJSON(w, http.StatusOK, toPhotoResponse(photo))
}

func (h *PhotosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.lifecycle.DeletePhoto(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "photo not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete photo")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PhotosHandler) DeleteByProject(w http.ResponseWriter, r *http.Request) {
	if err := h.lifecycle.DeleteAllPhotos(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "project not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete photos")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PhotosHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	photo := h.getPhoto(w, r)
	if photo == nil {
		return
	}

	data, err := h.normalizer.Thumbnail(photo.Filepath, h.config.Imaging.Thumbnail.Box)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			respondError(w, http.StatusNotFound, "photo file not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to build thumbnail")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *PhotosHandler) Original(w http.ResponseWriter, r *http.Request) {
	photo := h.getPhoto(w, r)
	if photo == nil {
		return
	}

	f, err := os.Open(photo.Filepath)
	if err != nil {
		if os.IsNotExist(err) {
			respondError(w, http.StatusNotFound, "photo file not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to open photo file")
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to open photo file")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+photo.Filename+`"`)
	http.ServeContent(w, r, photo.Filename, stat.ModTime(), f)
}

func (h *PhotosHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	photo := h.getPhoto(w, r)
	if photo == nil {
		return
	}

	if err := h.renamePhoto(photo, req.Name); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to rename photo file")
		return
	}
	if err := h.photos.Update(r.Context(), photo); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update photo")
		return
	}
	respondJSON(w, http.StatusOK, toPhotoResponse(photo))
}

func (h *PhotosHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	photo := h.getPhoto(w, r)
	if photo == nil {
		return
	}

	photo.Description = req.Description
	if err := h.photos.Update(r.Context(), photo); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update photo")
		return
	}
	respondJSON(w, http.StatusOK, toPhotoResponse(photo))
}

type batchEditRequest struct {
	ProjectID   string   `json:"project_id"`
	IDs         []string `json:"ids"`
	TakenAt     *string  `json:"taken_at"`
	Location    *string  `json:"location"`
	Description *string  `json:"description"`
}

func (h *PhotosHandler) BatchEdit(w http.ResponseWriter, r *http.Request) {
	var req batchEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.ProjectID == "" {
		respondError(w, http.StatusBadRequest, "project_id is required")
		return
	}
	if len(req.IDs) == 0 {
		respondError(w, http.StatusBadRequest, "ids are required")
		return
	}

	var fields database.PhotoFields
	if req.TakenAt != nil {
		takenAt, err := parseTakenAt(*req.TakenAt)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid taken_at date")
			return
		}
		fields.TakenAt = new(*time.Time)
		*fields.TakenAt = takenAt
	}
	fields.Location = req.Location
	fields.Description = req.Description

	updated, err := h.photos.UpdateBatch(r.Context(), req.ProjectID, req.IDs, fields)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update photos")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

type batchRenameRequest struct {
	IDs   []string `json:"ids"`
	Names []string `json:"names"`
}

func (h *PhotosHandler) BatchRename(w http.ResponseWriter, r *http.Request) {
	var req batchRenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.IDs) == 0 || len(req.IDs) != len(req.Names) {
		respondError(w, http.StatusBadRequest, "ids and names must be non-empty and the same length")
		return
	}

	renamed := 0
	var failed []string
	for i, id := range req.IDs {
		if req.Names[i] == "" {
			failed = append(failed, id)
			continue
		}
		photo, err := h.photos.Get(r.Context(), id)
		if err != nil {
			failed = append(failed, id)
			continue
		}
		if err := h.renamePhoto(photo, req.Names[i]); err != nil {
			failed = append(failed, id)
			continue
		}
		if err := h.photos.Update(r.Context(), photo); err != nil {
			failed = append(failed, id)
			continue
		}
		renamed++
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"renamed": renamed,
		"failed":  failed,
	})
}
