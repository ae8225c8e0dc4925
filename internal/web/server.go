// Package web exposes the photo documentation API over HTTP.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sitefoto/sitefoto/internal/archive"
	"github.com/sitefoto/sitefoto/internal/config"
	"github.com/sitefoto/sitefoto/internal/database"
	"github.com/sitefoto/sitefoto/internal/imaging"
	"github.com/sitefoto/sitefoto/internal/ingest"
	"github.com/sitefoto/sitefoto/internal/lifecycle"
)

// Server represents the web server
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server

	projects   database.ProjectRepository
	photos     database.PhotoRepository
	ingest     *ingest.Service
	exporter   *archive.Exporter
	lifecycle  *lifecycle.Manager
	normalizer *imaging.Normalizer
}

// NewServer creates a new web server wired to the given services.
func NewServer(
	cfg *config.Config,
	projects database.ProjectRepository,
	photos database.PhotoRepository,
	ingestSvc *ingest.Service,
	exporter *archive.Exporter,
	lifecycleMgr *lifecycle.Manager,
	normalizer *imaging.Normalizer,
) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:     cfg,
		router:     r,
		projects:   projects,
		photos:     photos,
		ingest:     ingestSvc,
		exporter:   exporter,
		lifecycle:  lifecycleMgr,
		normalizer: normalizer,
	}

	// Set up middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Long timeout for uploads and archive downloads
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	slog.Info("starting web server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down web server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
