package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

const taskColumns = `
	t.id, t.owner_id, t.name, t.description, t.project_id, t.assignee_id,
	t.status, t.priority, t.tickets_used, t.tickets_max, t.due_date,
	t.created_at, t.updated_at,
	p.id, p.name, p.client_name, p.status,
	u.id, u.email, u.name, u.role
	FROM tasks t
	LEFT JOIN projects p ON p.id = t.project_id
	LEFT JOIN users u ON u.id = t.assignee_id
`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
// Reads join the project and assignee so references come back resolved.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT` + taskColumns + `WHERE t.id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `SELECT` + taskColumns + `
	WHERE ($1 = '' OR t.owner_id = $1)
	  AND ($2 = '' OR t.project_id = $2)
	  AND ($3 = '' OR t.assignee_id = $3)
	  AND ($4 = '' OR t.status = $4)
	  AND ($5::timestamptz IS NULL OR t.due_date > $5)
	  AND ($6::timestamptz IS NULL OR t.due_date < $6)
	ORDER BY t.created_at ASC
	LIMIT $7 OFFSET $8
	`
	rows, err := r.pool.Query(ctx, query,
		filter.OwnerID,
		filter.ProjectID,
		filter.AssigneeID,
		filter.Status,
		nullTimePtr(filter.DueAfter),
		nullTimePtr(filter.DueBefore),
		clampLimit(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, owner_id, name, description, project_id, assignee_id, status, priority, tickets_used, tickets_max, due_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.OwnerID,
		task.Name,
		task.Description,
		nullString(task.Project.ID()),
		nullString(task.Assignee.ID()),
		string(task.Status),
		nullString(string(task.Priority)),
		task.Tickets.Used,
		task.Tickets.Max,
		nullTimePtr(task.DueDate),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, writeError(err, "task")
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET name = $2,
		description = $3,
		project_id = $4,
		assignee_id = $5,
		status = $6,
		priority = $7,
		tickets_max = $8,
		due_date = $9,
		updated_at = NOW()
	WHERE id = $1
	RETURNING tickets_used, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Name,
		task.Description,
		nullString(task.Project.ID()),
		nullString(task.Assignee.ID()),
		string(task.Status),
		nullString(string(task.Priority)),
		task.Tickets.Max,
		nullTimePtr(task.DueDate),
	).Scan(&task.Tickets.Used, &task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return writeError(err, "task")
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) ConsumeTicket(ctx context.Context, id string) (domain.TicketUsage, error) {
	const query = `
	UPDATE tasks
	SET tickets_used = tickets_used + 1,
		updated_at = NOW()
	WHERE id = $1 AND tickets_used < tickets_max
	RETURNING tickets_used, tickets_max
	`

	var usage domain.TicketUsage
	err := r.pool.QueryRow(ctx, query, id).Scan(&usage.Used, &usage.Max)
	if err == nil {
		return usage, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return usage, err
	}

	// Either the task is gone or its allowance is used up.
	task, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return usage, getErr
	}
	return task.Tickets, domain.ErrTicketsExhausted
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var (
		projectRef, assigneeRef *string
		status                  string
		priority                *string
		due                     *time.Time

		projectID, projectName, projectClient, projectStatus *string
		userID, userEmail, userName, userRole                *string
	)

	if err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Name,
		&task.Description,
		&projectRef,
		&assigneeRef,
		&status,
		&priority,
		&task.Tickets.Used,
		&task.Tickets.Max,
		&due,
		&task.CreatedAt,
		&task.UpdatedAt,
		&projectID,
		&projectName,
		&projectClient,
		&projectStatus,
		&userID,
		&userEmail,
		&userName,
		&userRole,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.Priority(derefString(priority))
	task.DueDate = due

	switch {
	case projectID != nil:
		task.Project = domain.Resolved(*projectID, domain.Project{
			ID:         *projectID,
			Name:       derefString(projectName),
			ClientName: derefString(projectClient),
			Status:     domain.ProjectStatus(derefString(projectStatus)),
		})
	case projectRef != nil:
		task.Project = domain.Unresolved[domain.Project](*projectRef)
	}

	switch {
	case userID != nil:
		task.Assignee = domain.Resolved(*userID, domain.User{
			ID:    *userID,
			Email: derefString(userEmail),
			Name:  derefString(userName),
			Role:  derefString(userRole),
		})
	case assigneeRef != nil:
		task.Assignee = domain.Unresolved[domain.User](*assigneeRef)
	}

	return &task, nil
}
