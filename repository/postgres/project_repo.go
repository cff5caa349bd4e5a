package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

// Task counters are derived from the tasks table on every read.
const projectColumns = `
	p.id, p.owner_id, p.name, p.client_name, p.status, p.start_date, p.delivery_date,
	(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id),
	(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id AND t.status = 'done'),
	p.created_at, p.updated_at
	FROM projects p
`

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository returns a Postgres-backed ProjectRepository.
func NewProjectRepository(pool *pgxpool.Pool) repository.ProjectRepository {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+projectColumns+`WHERE p.id = $1`, id)
	return scanProject(row)
}

func (r *projectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	query := `SELECT` + projectColumns + `
	WHERE ($1 = '' OR p.owner_id = $1)
	  AND ($2 = '' OR p.status = $2)
	ORDER BY p.created_at ASC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.OwnerID, filter.Status, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	if project == nil {
		return nil, domain.ErrInvalidPayload
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO projects (id, owner_id, name, client_name, status, start_date, delivery_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		project.ID,
		project.OwnerID,
		project.Name,
		project.ClientName,
		string(project.Status),
		nullTimePtr(project.StartDate),
		nullTimePtr(project.DeliveryDate),
	).Scan(&project.CreatedAt, &project.UpdatedAt); err != nil {
		return nil, writeError(err, "project")
	}
	return project, nil
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE projects
	SET name = $2,
		client_name = $3,
		status = $4,
		start_date = $5,
		delivery_date = $6,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		project.ID,
		project.Name,
		project.ClientName,
		string(project.Status),
		nullTimePtr(project.StartDate),
		nullTimePtr(project.DeliveryDate),
	).Scan(&project.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrProjectNotFound
		}
		return writeError(err, "project")
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var project domain.Project
	var status string

	if err := row.Scan(
		&project.ID,
		&project.OwnerID,
		&project.Name,
		&project.ClientName,
		&status,
		&project.StartDate,
		&project.DeliveryDate,
		&project.TaskCount,
		&project.CompletedCount,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}

	project.Status = domain.ProjectStatus(status)
	return &project, nil
}
