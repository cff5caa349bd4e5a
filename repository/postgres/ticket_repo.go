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

const ticketColumns = `
	k.id, k.task_id, k.requester_id, k.issue_type, k.category, k.description,
	k.priority, k.status, k.created_at, k.updated_at,
	t.id, t.name, t.status, t.project_id
	FROM tickets k
	LEFT JOIN tasks t ON t.id = k.task_id
`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository returns a Postgres-backed TicketRepository.
func NewTicketRepository(pool *pgxpool.Pool) repository.TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+ticketColumns+`WHERE k.id = $1`, id)
	return scanTicket(row)
}

func (r *ticketRepository) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	query := `SELECT` + ticketColumns + `
	WHERE ($1 = '' OR k.task_id = $1)
	  AND ($2 = '' OR k.requester_id = $2)
	  AND ($3 = '' OR k.status = $3)
	ORDER BY k.created_at DESC
	LIMIT $4 OFFSET $5
	`
	rows, err := r.pool.Query(ctx, query, filter.TaskID, filter.RequesterID, filter.Status, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, rows.Err()
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	if ticket == nil || ticket.Task.ID() == "" {
		return nil, domain.ErrInvalidPayload
	}
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tickets (id, task_id, requester_id, issue_type, category, description, priority, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.Task.ID(),
		ticket.RequesterID,
		ticket.IssueType,
		ticket.Category,
		ticket.Description,
		nullString(string(ticket.Priority)),
		string(ticket.Status),
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return nil, writeError(err, "ticket")
	}
	return ticket, nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	if ticket == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tickets
	SET issue_type = $2,
		category = $3,
		description = $4,
		priority = $5,
		status = $6,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.IssueType,
		ticket.Category,
		ticket.Description,
		nullString(string(ticket.Priority)),
		string(ticket.Status),
	).Scan(&ticket.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTicketNotFound
		}
		return writeError(err, "ticket")
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var (
		taskRef  string
		priority *string
		status   string

		taskID, taskName, taskStatus, taskProject *string
	)

	if err := row.Scan(
		&ticket.ID,
		&taskRef,
		&ticket.RequesterID,
		&ticket.IssueType,
		&ticket.Category,
		&ticket.Description,
		&priority,
		&status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&taskID,
		&taskName,
		&taskStatus,
		&taskProject,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}

	ticket.Priority = domain.Priority(derefString(priority))
	ticket.Status = domain.TicketStatus(status)

	if taskID != nil {
		task := domain.Task{
			ID:     *taskID,
			Name:   derefString(taskName),
			Status: domain.TaskStatus(derefString(taskStatus)),
		}
		if taskProject != nil {
			task.Project = domain.Unresolved[domain.Project](*taskProject)
		}
		ticket.Task = domain.Resolved(*taskID, task)
	} else {
		ticket.Task = domain.Unresolved[domain.Task](taskRef)
	}

	return &ticket, nil
}
