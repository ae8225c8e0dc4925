// Package lifecycle coordinates deletions across the filesystem and the
// record store. Filesystem effects are best-effort compensating actions:
// a failed file removal is logged but never blocks the record deletion,
// while record-store mutations stay transactional.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sitefoto/sitefoto/internal/database"
)

// Manager deletes photos and projects consistently.
type Manager struct {
	projects  database.ProjectRepository
	photos    database.PhotoRepository
	uploadDir string
}

// NewManager creates a lifecycle manager rooted at uploadDir.
func NewManager(projects database.ProjectRepository, photos database.PhotoRepository, uploadDir string) *Manager {
	return &Manager{projects: projects, photos: photos, uploadDir: uploadDir}
}

func (m *Manager) projectDir(projectID string) string {
	return filepath.Join(m.uploadDir, projectID)
}

// removeFile deletes a photo file if it exists. Absence is not an error;
// other failures are logged and swallowed.
func removeFile(photoID, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Error("failed to remove photo file", "photo_id", photoID, "path", path, "error", err)
	}
}

// pruneDirIfEmpty removes a project directory once its last photo is gone.
func pruneDirIfEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}
	if err := os.Remove(dir); err != nil {
		slog.Warn("failed to prune empty project directory", "dir", dir, "error", err)
	}
}

// DeletePhoto removes a single photo's file and record. A file already
// missing from disk still deletes the record.
func (m *Manager) DeletePhoto(ctx context.Context, photoID string) error {
	photo, err := m.photos.Get(ctx, photoID)
	if err != nil {
		return fmt.Errorf("delete photo %s: %w", photoID, err)
	}

	removeFile(photo.ID, photo.Filepath)

	if err := m.photos.Delete(ctx, photoID); err != nil {
		return fmt.Errorf("delete photo record %s: %w", photoID, err)
	}
	slog.Info("photo deleted", "photo_id", photoID, "project_id", photo.ProjectID)
	return nil
}

// DeleteAllPhotos removes every photo of a project (files best-effort,
// records in one statement) and prunes the project directory if empty.
func (m *Manager) DeleteAllPhotos(ctx context.Context, projectID string) error {
	if _, err := m.projects.Get(ctx, projectID); err != nil {
		return fmt.Errorf("delete photos of project %s: %w", projectID, err)
	}

	photos, err := m.photos.ListByProject(ctx, projectID, database.OrderUploadedAsc)
	if err != nil {
		return fmt.Errorf("list photos of project %s: %w", projectID, err)
	}

	for _, photo := range photos {
		removeFile(photo.ID, photo.Filepath)
	}

	if err := m.photos.DeleteByProject(ctx, projectID); err != nil {
		return fmt.Errorf("delete photo records of project %s: %w", projectID, err)
	}

	pruneDirIfEmpty(m.projectDir(projectID))

	slog.Info("all photos deleted", "project_id", projectID, "count", len(photos))
	return nil
}

// DeleteProject removes a project's files, its directory tree, and the
// project record. The record store cascades the photo records in the
// same transaction as the project delete.
func (m *Manager) DeleteProject(ctx context.Context, projectID string) error {
	project, err := m.projects.Get(ctx, projectID)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", projectID, err)
	}

	photos, err := m.photos.ListByProject(ctx, projectID, database.OrderUploadedAsc)
	if err != nil {
		return fmt.Errorf("list photos of project %s: %w", projectID, err)
	}
	for _, photo := range photos {
		removeFile(photo.ID, photo.Filepath)
	}

	if err := os.RemoveAll(m.projectDir(projectID)); err != nil {
		slog.Error("failed to remove project directory", "project_id", projectID, "error", err)
	}

	if err := m.projects.Delete(ctx, projectID); err != nil {
		return fmt.Errorf("delete project record %s: %w", projectID, err)
	}
	slog.Info("project deleted", "project_id", projectID, "name", project.Name)
	return nil
}
