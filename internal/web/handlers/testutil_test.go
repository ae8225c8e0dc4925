package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sitefoto/sitefoto/internal/archive"
	"github.com/sitefoto/sitefoto/internal/config"
	"github.com/sitefoto/sitefoto/internal/database"
	"github.com/sitefoto/sitefoto/internal/database/mock"
	"github.com/sitefoto/sitefoto/internal/imaging"
	"github.com/sitefoto/sitefoto/internal/ingest"
	"github.com/sitefoto/sitefoto/internal/lifecycle"
)

// testConfig creates a minimal config for testing
func testConfig(uploadDir string) *config.Config {
	cfg := &config.Config{}
	cfg.Upload.Dir = uploadDir
	cfg.Upload.MaxRequestBytes = 100 << 20
	cfg.Imaging.Normalize.MaxWidth = 1920
	cfg.Imaging.Normalize.MaxHeight = 1080
	cfg.Imaging.Normalize.JPEGQuality = 85
	cfg.Imaging.Thumbnail.Box = 300
	return cfg
}

// testEnv bundles the mock repositories and handlers under test.
type testEnv struct {
	cfg       *config.Config
	projects  *mock.ProjectRepository
	photos    *mock.PhotoRepository
	lifecycle *lifecycle.Manager
	uploadDir string

	projectsHandler *ProjectsHandler
	photosHandler   *PhotosHandler
	uploadHandler   *UploadHandler
	exportHandler   *ExportHandler
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	projects := mock.NewProjectRepository()
	photos := mock.NewPhotoRepository()
	uploadDir := t.TempDir()
	cfg := testConfig(uploadDir)

	normalizer := imaging.New(&cfg.Imaging)
	ingestSvc := ingest.NewService(projects, photos, normalizer, uploadDir)
	lm := lifecycle.NewManager(projects, photos, uploadDir)

	// Emulate the store-level photo cascade.
	projects.OnDelete = func(projectID string) {
		_ = photos.DeleteByProject(context.Background(), projectID)
	}

	return &testEnv{
		cfg:       cfg,
		projects:  projects,
		photos:    photos,
		lifecycle: lm,
		uploadDir: uploadDir,

		projectsHandler: NewProjectsHandler(projects, lm),
		photosHandler:   NewPhotosHandler(cfg, projects, photos, lm, normalizer, ingestSvc),
		uploadHandler:   NewUploadHandler(cfg, ingestSvc),
		exportHandler:   NewExportHandler(archive.NewExporter(projects, photos)),
	}
}

func (env *testEnv) createProject(t *testing.T, name string) *database.Project {
	t.Helper()
	project := &database.Project{Name: name}
	if err := env.projects.Create(context.Background(), project); err != nil {
		t.Fatalf("could not create project: %v", err)
	}
	return project
}

// addPhoto stores a photo record and writes its file into the project
// directory.
func (env *testEnv) addPhoto(t *testing.T, projectID, filename string, content []byte) *database.Photo {
	t.Helper()
	dir := filepath.Join(env.uploadDir, projectID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("could not create project dir: %v", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("could not write photo file: %v", err)
	}
	photo := &database.Photo{ProjectID: projectID, Filename: filename, Filepath: path}
	if err := env.photos.CreateBatch(context.Background(), []*database.Photo{photo}); err != nil {
		t.Fatalf("could not store photo: %v", err)
	}
	return photo
}

// pngBytes encodes a solid gray PNG of the given size.
func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 120, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("could not encode png: %v", err)
	}
	return buf.Bytes()
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// jsonRequest creates a request carrying a JSON body and chi URL parameters.
func jsonRequest(method, path, body string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if params != nil {
		req = requestWithChiParams(req, params)
	}
	return req
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
