package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/sitefoto/sitefoto/internal/database"
)

// PhotoRepository provides PostgreSQL-backed photo storage.
type PhotoRepository struct {
	pool *Pool
}

// NewPhotoRepository creates a new PhotoRepository.
func NewPhotoRepository(pool *Pool) *PhotoRepository {
	return &PhotoRepository{pool: pool}
}

// CreateBatch inserts all photos inside a single transaction so a batch
// upload either lands completely or not at all.
func (r *PhotoRepository) CreateBatch(ctx context.Context, photos []*database.Photo) error {
	if len(photos) == 0 {
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, photo := range photos {
		if photo.ID == "" {
			photo.ID = newID()
		}
		photo.UploadedAt = now
		_, err := tx.ExecContext(ctx,
			`INSERT INTO photos (id, project_id, filename, filepath, uploaded_at, taken_at, location, description)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			photo.ID, photo.ProjectID, photo.Filename, photo.Filepath,
			photo.UploadedAt, photo.TakenAt, photo.Location, photo.Description)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert photo %s: %w", photo.Filename, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit photo batch: %w", err)
	}
	return nil
}

func (r *PhotoRepository) Get(ctx context.Context, id string) (*database.Photo, error) {
	var p database.Photo
	err := r.pool.QueryRow(ctx,
		`SELECT id, project_id, filename, filepath, uploaded_at, taken_at, location, description
		 FROM photos WHERE id = $1`, id).
		Scan(&p.ID, &p.ProjectID, &p.Filename, &p.Filepath, &p.UploadedAt,
			&p.TakenAt, &p.Location, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return &p, nil
}

func (r *PhotoRepository) ListByProject(ctx context.Context, projectID string, order database.PhotoOrder) ([]database.Photo, error) {
	direction := "DESC"
	if order == database.OrderUploadedAsc {
		direction = "ASC"
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, project_id, filename, filepath, uploaded_at, taken_at, location, description
		 FROM photos WHERE project_id = $1 ORDER BY uploaded_at `+direction, projectID)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	var photos []database.Photo
	for rows.Next() {
		var p database.Photo
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.Filename, &p.Filepath,
			&p.UploadedAt, &p.TakenAt, &p.Location, &p.Description); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}
	return photos, nil
}

func (r *PhotoRepository) Update(ctx context.Context, photo *database.Photo) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE photos SET filename = $1, filepath = $2, taken_at = $3, location = $4, description = $5
		 WHERE id = $6`,
		photo.Filename, photo.Filepath, photo.TakenAt, photo.Location, photo.Description, photo.ID)
	if err != nil {
		return fmt.Errorf("update photo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update photo affected rows: %w", err)
	}
	if affected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// UpdateBatch applies the provided fields to every listed photo belonging
// to projectID. Ids outside the project simply don't match the WHERE
// clause and are excluded from the returned count.
func (r *PhotoRepository) UpdateBatch(ctx context.Context, projectID string, ids []string, fields database.PhotoFields) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var sets []string
	var args []any
	n := 1
	if fields.TakenAt != nil {
		sets = append(sets, fmt.Sprintf("taken_at = $%d", n))
		args = append(args, *fields.TakenAt)
		n++
	}
	if fields.Location != nil {
		sets = append(sets, fmt.Sprintf("location = $%d", n))
		args = append(args, *fields.Location)
		n++
	}
	if fields.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", n))
		args = append(args, *fields.Description)
		n++
	}
	if len(sets) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(
		`UPDATE photos SET %s WHERE project_id = $%d AND id = ANY($%d)`,
		strings.Join(sets, ", "), n, n+1)
	args = append(args, projectID, pq.Array(ids))

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("batch update photos: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("batch update affected rows: %w", err)
	}
	return affected, nil
}

func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete photo affected rows: %w", err)
	}
	if affected == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *PhotoRepository) DeleteByProject(ctx context.Context, projectID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM photos WHERE project_id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("delete project photos: %w", err)
	}
	return nil
}
