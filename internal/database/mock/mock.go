// Package mock provides in-memory implementations of the database
// repository interfaces for testing.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sitefoto/sitefoto/internal/database"
)

// ProjectRepository is an in-memory database.ProjectRepository.
type ProjectRepository struct {
	mu       sync.RWMutex
	projects map[string]*database.Project

	// Error injection
	CreateError error
	GetError    error
	ListError   error
	UpdateError error
	DeleteError error

	// OnDelete, when set, is called after a project record is removed.
	// Used to emulate the store-level photo cascade in tests.
	OnDelete func(projectID string)
}

// NewProjectRepository creates an empty project store.
func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{projects: make(map[string]*database.Project)}
}

func (m *ProjectRepository) Create(ctx context.Context, project *database.Project) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.projects {
		if p.Name == project.Name {
			return database.ErrDuplicateName
		}
	}
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	project.CreatedAt = time.Now()
	cp := *project
	m.projects[project.ID] = &cp
	return nil
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*database.Project, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *ProjectRepository) List(ctx context.Context) ([]database.Project, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.Project
	for _, p := range m.projects {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *ProjectRepository) Update(ctx context.Context, project *database.Project) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[project.ID]; !ok {
		return database.ErrNotFound
	}
	for id, p := range m.projects {
		if id != project.ID && p.Name == project.Name {
			return database.ErrDuplicateName
		}
	}
	cp := *project
	m.projects[project.ID] = &cp
	return nil
}

func (m *ProjectRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	delete(m.projects, id)
	m.mu.Unlock()
	if m.OnDelete != nil {
		m.OnDelete(id)
	}
	return nil
}

// PhotoRepository is an in-memory database.PhotoRepository.
type PhotoRepository struct {
	mu     sync.RWMutex
	photos map[string]*database.Photo
	seq    int

	// Error injection
	CreateBatchError error
	GetError         error
	ListError        error
	UpdateError      error
	UpdateBatchError error
	DeleteError      error
	DeleteAllError   error
}

// NewPhotoRepository creates an empty photo store.
func NewPhotoRepository() *PhotoRepository {
	return &PhotoRepository{photos: make(map[string]*database.Photo)}
}

func (m *PhotoRepository) CreateBatch(ctx context.Context, photos []*database.Photo) error {
	if m.CreateBatchError != nil {
		return m.CreateBatchError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, photo := range photos {
		if photo.ID == "" {
			photo.ID = uuid.New().String()
		}
		// Preserve insertion order for deterministic listing.
		m.seq++
		photo.UploadedAt = now.Add(time.Duration(m.seq) * time.Microsecond)
		cp := *photo
		m.photos[photo.ID] = &cp
	}
	return nil
}

func (m *PhotoRepository) Get(ctx context.Context, id string) (*database.Photo, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.photos[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *PhotoRepository) ListByProject(ctx context.Context, projectID string, order database.PhotoOrder) ([]database.Photo, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.Photo
	for _, p := range m.photos {
		if p.ProjectID == projectID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if order == database.OrderUploadedAsc {
			return out[i].UploadedAt.Before(out[j].UploadedAt)
		}
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out, nil
}

func (m *PhotoRepository) Update(ctx context.Context, photo *database.Photo) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.photos[photo.ID]; !ok {
		return database.ErrNotFound
	}
	cp := *photo
	m.photos[photo.ID] = &cp
	return nil
}

func (m *PhotoRepository) UpdateBatch(ctx context.Context, projectID string, ids []string, fields database.PhotoFields) (int64, error) {
	if m.UpdateBatchError != nil {
		return 0, m.UpdateBatchError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, id := range ids {
		p, ok := m.photos[id]
		if !ok || p.ProjectID != projectID {
			continue
		}
		if fields.TakenAt != nil {
			p.TakenAt = *fields.TakenAt
		}
		if fields.Location != nil {
			p.Location = *fields.Location
		}
		if fields.Description != nil {
			p.Description = *fields.Description
		}
		count++
	}
	return count, nil
}

func (m *PhotoRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.photos[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.photos, id)
	return nil
}

func (m *PhotoRepository) DeleteByProject(ctx context.Context, projectID string) error {
	if m.DeleteAllError != nil {
		return m.DeleteAllError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.photos {
		if p.ProjectID == projectID {
			delete(m.photos, id)
		}
	}
	return nil
}

// Count returns the number of stored photos. Test helper.
func (m *PhotoRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.photos)
}
