package repository

import (
	"context"
	"time"

	"github.com/fastygo/tracker/domain"
)

type TaskFilter struct {
	OwnerID    string
	ProjectID  string
	AssigneeID string
	Status     string
	DueAfter   *time.Time
	DueBefore  *time.Time
	Limit      int
	Offset     int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	// ConsumeTicket takes one unit of the task's ticket allowance, failing
	// with domain.ErrTicketsExhausted when none is left.
	ConsumeTicket(ctx context.Context, id string) (domain.TicketUsage, error)
}
