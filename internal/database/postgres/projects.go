package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sitefoto/sitefoto/internal/database"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaks.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func newID() string {
	return uuid.New().String()
}

// ProjectRepository provides PostgreSQL-backed project storage.
type ProjectRepository struct {
	pool *Pool
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(pool *Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func (r *ProjectRepository) Create(ctx context.Context, project *database.Project) error {
	if project.ID == "" {
		project.ID = newID()
	}
	project.CreatedAt = time.Now()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO projects (id, name, address, manager_name, manager_phone, manager_email, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		project.ID, project.Name, project.Address, project.ManagerName,
		project.ManagerPhone, project.ManagerEmail, project.CreatedAt)
	if isUniqueViolation(err) {
		return database.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*database.Project, error) {
	var p database.Project
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, address, manager_name, manager_phone, manager_email, created_at
		 FROM projects WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Address, &p.ManagerName, &p.ManagerPhone, &p.ManagerEmail, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]database.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, address, manager_name, manager_phone, manager_email, created_at
		 FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []database.Project
	for rows.Next() {
		var p database.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.ManagerName,
			&p.ManagerPhone, &p.ManagerEmail, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *database.Project) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE projects SET name = $1, address = $2, manager_name = $3,
		 manager_phone = $4, manager_email = $5 WHERE id = $6`,
		project.Name, project.Address, project.ManagerName,
		project.ManagerPhone, project.ManagerEmail, project.ID)
	if isUniqueViolation(err) {
		return database.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project affected rows: %w", err)
	}
	if affected == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	// Photo records go with the project via ON DELETE CASCADE.
	_, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
