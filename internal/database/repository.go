// Package database defines the record types and repository contracts for
// the photo documentation store. Implementations live in the postgres
// subpackage; the mock subpackage provides in-memory doubles for tests.
package database

import (
	"context"
)

// ProjectRepository is the persistent store for Project records.
type ProjectRepository interface {
	// Create inserts a new project and assigns its ID.
	// Returns ErrDuplicateName if the name is taken.
	Create(ctx context.Context, project *Project) error

	// Get returns the project with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Project, error)

	// List returns all projects, newest first.
	List(ctx context.Context) ([]Project, error)

	// Update saves the project's mutable fields.
	// Returns ErrNotFound or ErrDuplicateName.
	Update(ctx context.Context, project *Project) error

	// Delete removes the project record. The store cascades the delete
	// to all photo records owned by the project.
	Delete(ctx context.Context, id string) error
}

// PhotoRepository is the persistent store for Photo records.
type PhotoRepository interface {
	// CreateBatch inserts all photos in a single transaction, assigning
	// ids and upload timestamps. Either every record is stored or none.
	CreateBatch(ctx context.Context, photos []*Photo) error

	// Get returns the photo with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Photo, error)

	// ListByProject returns a project's photos in the given order.
	ListByProject(ctx context.Context, projectID string, order PhotoOrder) ([]Photo, error)

	// Update saves the photo's mutable fields. Returns ErrNotFound.
	Update(ctx context.Context, photo *Photo) error

	// UpdateBatch applies fields to every listed photo that belongs to
	// projectID, in one transaction. Ids outside the project are skipped.
	// Returns the number of photos actually updated.
	UpdateBatch(ctx context.Context, projectID string, ids []string, fields PhotoFields) (int64, error)

	// Delete removes a single photo record. Returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// DeleteByProject removes every photo record owned by a project.
	DeleteByProject(ctx context.Context, projectID string) error
}
