// Package ingest turns uploaded image files into normalized on-disk
// photos plus database records. Files in a batch are processed strictly
// sequentially; the collision-avoidance loop in ResolveFilename depends
// on it.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sitefoto/sitefoto/internal/database"
	"github.com/sitefoto/sitefoto/internal/imaging"
)

// allowedExtensions is the accepted raster image set, matched
// case-insensitively against the uploaded filename's extension.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// File is one uploaded entry: the client-claimed filename and its content.
type File struct {
	Filename string
	Content  io.Reader
}

// Status classifies the outcome of one file in a batch.
type Status string

const (
	StatusStored  Status = "stored"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// FileResult reports what happened to a single uploaded file.
type FileResult struct {
	OriginalName string `json:"original_name"`
	StoredName   string `json:"stored_name,omitempty"`
	Status       Status `json:"status"`
	Reason       string `json:"reason,omitempty"`
}

// Result summarizes an ingestion batch.
type Result struct {
	Ingested int          `json:"ingested"`
	Files    []FileResult `json:"files"`
}

// Service orchestrates the ingestion pipeline.
type Service struct {
	projects   database.ProjectRepository
	photos     database.PhotoRepository
	normalizer *imaging.Normalizer
	uploadDir  string
}

// NewService creates an ingestion service writing under uploadDir.
func NewService(projects database.ProjectRepository, photos database.PhotoRepository, normalizer *imaging.Normalizer, uploadDir string) *Service {
	return &Service{
		projects:   projects,
		photos:     photos,
		normalizer: normalizer,
		uploadDir:  uploadDir,
	}
}

// ProjectDir returns the directory holding a project's photo files.
func (s *Service) ProjectDir(projectID string) string {
	return filepath.Join(s.uploadDir, projectID)
}

// Ingest processes an ordered batch of uploaded files for a project.
// Files with missing names or disallowed extensions are skipped; per-file
// save errors are logged and skipped without aborting the batch. All
// accepted photos are committed to the record store in one transaction.
// An empty or fully-rejected batch yields Ingested == 0 and no error.
func (s *Service) Ingest(ctx context.Context, projectID string, files []File, defaultDescription string) (*Result, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, fmt.Errorf("ingest into project %s: %w", projectID, err)
	}

	projectDir := s.ProjectDir(projectID)
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return nil, fmt.Errorf("create project directory %s: %w", projectDir, err)
	}

	result := &Result{}
	var staged []*database.Photo

	for _, file := range files {
		outcome := s.ingestOne(projectID, projectDir, file, defaultDescription, &staged)
		result.Files = append(result.Files, outcome)
	}

	if len(staged) > 0 {
		if err := s.photos.CreateBatch(ctx, staged); err != nil {
			// Saved files stay on disk; the batch can be retried and the
			// resolver will assign fresh names.
			return nil, fmt.Errorf("commit photo batch for project %s: %w", projectID, err)
		}
	}
	result.Ingested = len(staged)

	slog.Info("ingestion batch finished",
		"project_id", projectID, "received", len(files), "ingested", result.Ingested)
	return result, nil
}

// ingestOne runs the per-file pipeline and appends an accepted photo to
// staged. It never returns an error; failures become FileResult outcomes.
func (s *Service) ingestOne(projectID, projectDir string, file File, defaultDescription string, staged *[]*database.Photo) FileResult {
	if file.Filename == "" {
		return FileResult{Status: StatusSkipped, Reason: "missing filename"}
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return FileResult{
			OriginalName: file.Filename,
			Status:       StatusSkipped,
			Reason:       fmt.Sprintf("unsupported file type %q", ext),
		}
	}

	safeName := SanitizeFilename(file.Filename)
	storedName := ResolveFilename(projectDir, safeName)
	storedPath := filepath.Join(projectDir, storedName)

	if err := saveFile(storedPath, file.Content); err != nil {
		slog.Error("failed to save uploaded file",
			"project_id", projectID, "filename", file.Filename, "error", err)
		return FileResult{
			OriginalName: file.Filename,
			Status:       StatusFailed,
			Reason:       "could not save file",
		}
	}

	// Normalization failure is never fatal: the un-normalized original
	// stays on disk and the photo is recorded anyway.
	if err := s.normalizer.Normalize(storedPath); err != nil {
		slog.Warn("image normalization failed, keeping original",
			"project_id", projectID, "path", storedPath, "error", err)
	}

	takenAt, description := ExtractPhotoInfo(storedName)
	if description == "" {
		description = defaultDescription
	}

	*staged = append(*staged, &database.Photo{
		ProjectID:   projectID,
		Filename:    storedName,
		Filepath:    storedPath,
		TakenAt:     takenAt,
		Description: description,
	})
	return FileResult{
		OriginalName: file.Filename,
		StoredName:   storedName,
		Status:       StatusStored,
	}
}

func saveFile(path string, content io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, content); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	return out.Close()
}
