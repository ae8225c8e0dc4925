package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sitefoto/sitefoto/internal/database"
	"github.com/sitefoto/sitefoto/internal/lifecycle"
)

// ProjectsHandler handles project CRUD endpoints.
type ProjectsHandler struct {
	projects  database.ProjectRepository
	lifecycle *lifecycle.Manager
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(projects database.ProjectRepository, lm *lifecycle.Manager) *ProjectsHandler {
	return &ProjectsHandler{projects: projects, lifecycle: lm}
}

type projectResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	ManagerName  string `json:"manager_name"`
	ManagerPhone string `json:"manager_phone"`
	ManagerEmail string `json:"manager_email"`
	CreatedAt    string `json:"created_at"`
}

func toProjectResponse(p *database.Project) projectResponse {
	return projectResponse{
		ID:           p.ID,
		Name:         p.Name,
		Address:      p.Address,
		ManagerName:  p.ManagerName,
		ManagerPhone: p.ManagerPhone,
		ManagerEmail: p.ManagerEmail,
		CreatedAt:    p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

type projectRequest struct {
	Name         *string `json:"name"`
	Address      *string `json:"address"`
	ManagerName  *string `json:"manager_name"`
	ManagerPhone *string `json:"manager_phone"`
	ManagerEmail *string `json:"manager_email"`
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Name == nil || *req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	project := &database.Project{Name: *req.Name}
	if req.Address != nil {
		project.Address = *req.Address
	}
	if req.ManagerName != nil {
		project.ManagerName = *req.ManagerName
	}
	if req.ManagerPhone != nil {
		project.ManagerPhone = *req.ManagerPhone
	}
	if req.ManagerEmail != nil {
		project.ManagerEmail = *req.ManagerEmail
	}

	if err := h.projects.Create(r.Context(), project); err != nil {
		if errors.Is(err, database.ErrDuplicateName) {
			respondError(w, http.StatusConflict, "project name already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create project")
		return
	}
	respondJSON(w, http.StatusCreated, toProjectResponse(project))
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	result := make([]projectResponse, len(projects))
	for i := range projects {
		result[i] = toProjectResponse(&projects[i])
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "project not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	respondJSON(w, http.StatusOK, toProjectResponse(project))
}

func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	project, err := h.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "project not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get project")
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			respondError(w, http.StatusBadRequest, "name must not be empty")
			return
		}
		project.Name = *req.Name
	}
	if req.Address != nil {
		project.Address = *req.Address
	}
	if req.ManagerName != nil {
		project.ManagerName = *req.ManagerName
	}
	if req.ManagerPhone != nil {
		project.ManagerPhone = *req.ManagerPhone
	}
	if req.ManagerEmail != nil {
		project.ManagerEmail = *req.ManagerEmail
	}

	if err := h.projects.Update(r.Context(), project); err != nil {
		if errors.Is(err, database.ErrDuplicateName) {
			respondError(w, http.StatusConflict, "project name already exists")
			return
		}
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "project not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to update project")
		return
	}
	respondJSON(w, http.StatusOK, toProjectResponse(project))
}

func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.lifecycle.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "project not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
