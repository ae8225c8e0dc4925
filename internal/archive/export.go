// Package archive assembles a project's photos into a downloadable zip.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sitefoto/sitefoto/internal/database"
)

// Archive is a built zip file in a private temporary directory. Close
// removes the temporary directory; failures to remove are only logged.
type Archive struct {
	Name    string // suggested download filename
	Entries int    // number of photo files included
	path    string
	tempDir string
}

// Open returns a reader over the archive bytes. The caller must close
// the reader before calling Close on the archive.
func (a *Archive) Open() (io.ReadCloser, error) {
	f, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return f, nil
}

// Close removes the archive's temporary directory.
func (a *Archive) Close() {
	if err := os.RemoveAll(a.tempDir); err != nil {
		slog.Warn("failed to remove archive temp directory", "dir", a.tempDir, "error", err)
	}
}

// Exporter builds photo archives from the record store and the upload tree.
type Exporter struct {
	projects database.ProjectRepository
	photos   database.PhotoRepository
}

// NewExporter creates an archive exporter.
func NewExporter(projects database.ProjectRepository, photos database.PhotoRepository) *Exporter {
	return &Exporter{projects: projects, photos: photos}
}

// Export builds a zip archive of every photo file the project currently
// has on disk, in upload order. Photos whose files are missing are
// skipped. Duplicate display filenames are disambiguated by appending
// _1, _2, ... before the extension. A project without photos yields
// database.ErrNotFound.
func (e *Exporter) Export(ctx context.Context, projectID string) (*Archive, error) {
	project, err := e.projects.Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("export project %s: %w", projectID, err)
	}

	photos, err := e.photos.ListByProject(ctx, projectID, database.OrderUploadedAsc)
	if err != nil {
		return nil, fmt.Errorf("list photos for export: %w", err)
	}
	if len(photos) == 0 {
		return nil, fmt.Errorf("project %s has no photos: %w", projectID, database.ErrNotFound)
	}

	tempDir, err := os.MkdirTemp("", "sitefoto-export-*")
	if err != nil {
		return nil, fmt.Errorf("create export temp directory: %w", err)
	}

	name := fmt.Sprintf("%s_album.zip", project.Name)
	zipPath := filepath.Join(tempDir, "album.zip")

	entries, err := writeZip(zipPath, photos)
	if err != nil {
		if rmErr := os.RemoveAll(tempDir); rmErr != nil {
			slog.Warn("failed to remove archive temp directory", "dir", tempDir, "error", rmErr)
		}
		return nil, err
	}

	return &Archive{Name: name, Entries: entries, path: zipPath, tempDir: tempDir}, nil
}

func writeZip(zipPath string, photos []database.Photo) (int, error) {
	out, err := os.Create(zipPath)
	if err != nil {
		return 0, fmt.Errorf("create archive file: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	used := make(map[string]bool)
	entries := 0

	for _, photo := range photos {
		src, err := os.Open(photo.Filepath)
		if err != nil {
			// Externally deleted files are expected; skip them.
			slog.Debug("skipping missing photo file", "photo_id", photo.ID, "path", photo.Filepath)
			continue
		}

		entry := uniqueEntryName(used, photo.Filename)
		used[entry] = true

		w, err := zw.Create(entry)
		if err != nil {
			src.Close()
			zw.Close()
			return 0, fmt.Errorf("create archive entry %s: %w", entry, err)
		}
		if _, err := io.Copy(w, src); err != nil {
			src.Close()
			zw.Close()
			return 0, fmt.Errorf("write archive entry %s: %w", entry, err)
		}
		src.Close()
		entries++
	}

	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("finalize archive: %w", err)
	}
	return entries, nil
}

// uniqueEntryName disambiguates duplicate display filenames inside one
// archive the same way the on-disk resolver does: name_1.ext, name_2.ext.
func uniqueEntryName(used map[string]bool, filename string) string {
	if !used[filename] {
		return filename
	}
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", base, counter, ext)
		if !used[candidate] {
			return candidate
		}
	}
}
