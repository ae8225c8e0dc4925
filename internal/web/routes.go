package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/sitefoto/sitefoto/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	projectsHandler := handlers.NewProjectsHandler(s.projects, s.lifecycle)
	photosHandler := handlers.NewPhotosHandler(s.config, s.projects, s.photos, s.lifecycle, s.normalizer, s.ingest)
	uploadHandler := handlers.NewUploadHandler(s.config, s.ingest)
	exportHandler := handlers.NewExportHandler(s.exporter)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Projects
		r.Post("/projects", projectsHandler.Create)
		r.Get("/projects", projectsHandler.List)
		r.Get("/projects/{id}", projectsHandler.Get)
		r.Put("/projects/{id}", projectsHandler.Update)
		r.Delete("/projects/{id}", projectsHandler.Delete)

		// Per-project photos
		r.Post("/projects/{id}/photos", uploadHandler.Upload)
		r.Get("/projects/{id}/photos", photosHandler.ListByProject)
		r.Delete("/projects/{id}/photos", photosHandler.DeleteByProject)
		r.Get("/projects/{id}/archive", exportHandler.Download)

		// Photos
		r.Get("/photos/{id}", photosHandler.Get)
		r.Put("/photos/{id}", photosHandler.Update)
		r.Delete("/photos/{id}", photosHandler.Delete)
		r.Get("/photos/{id}/thumbnail", photosHandler.Thumbnail)
		r.Get("/photos/{id}/original", photosHandler.Original)
		r.Post("/photos/{id}/rename", photosHandler.Rename)
		r.Put("/photos/{id}/description", photosHandler.UpdateDescription)
		r.Post("/photos/batch/edit", photosHandler.BatchEdit)
		r.Post("/photos/batch/rename", photosHandler.BatchRename)
	})
}
