package ticket

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/viewmodel"
)

// ListQuery narrows and orders a ticket listing. Without a TaskID the caller
// sees the tickets they raised.
type ListQuery struct {
	TaskID    string
	Status    string
	Sort      viewmodel.SortField
	Direction viewmodel.Direction
	Limit     int
	Offset    int
}

// Patch carries the editable ticket fields. Nil fields are left unchanged.
type Patch struct {
	IssueType   *string
	Category    *string
	Description *string
	Priority    *domain.Priority
	Status      *domain.TicketStatus
}

type UseCase struct {
	tickets       repository.TicketRepository
	tasks         repository.TaskRepository
	notifications repository.NotificationRepository
	cache         repository.ViewCache
	logger        *zap.Logger
}

func New(
	tickets repository.TicketRepository,
	tasks repository.TaskRepository,
	notifications repository.NotificationRepository,
	cache repository.ViewCache,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tickets:       tickets,
		tasks:         tasks,
		notifications: notifications,
		cache:         cache,
		logger:        logger,
	}
}

func (uc *UseCase) ListTickets(ctx context.Context, userID string, q ListQuery) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{
		TaskID: q.TaskID,
		Status: q.Status,
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if q.TaskID != "" {
		if _, err := uc.visibleTask(ctx, userID, q.TaskID); err != nil {
			return nil, err
		}
	} else {
		filter.RequesterID = userID
	}

	tickets, err := uc.tickets.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if q.Sort == "" {
		return tickets, nil
	}
	if !q.Sort.Valid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown sort field")
	}
	return viewmodel.SortEntities(tickets, q.Sort, q.Direction, viewmodel.TicketAccessors), nil
}

func (uc *UseCase) GetTicket(ctx context.Context, userID, id string) (*domain.Ticket, error) {
	ticket, err := uc.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.RequesterID == userID {
		return ticket, nil
	}
	if _, err := uc.visibleTask(ctx, userID, ticket.Task.ID()); err != nil {
		return nil, domain.ErrTicketNotFound
	}
	return ticket, nil
}

// CreateTicket raises a ticket against a task, consuming one unit of the
// task's allowance. An exhausted task rejects the ticket with a conflict.
func (uc *UseCase) CreateTicket(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	if ticket == nil || ticket.RequesterID == "" || ticket.Task.ID() == "" {
		return nil, domain.ErrInvalidPayload
	}
	ticket.IssueType = strings.TrimSpace(ticket.IssueType)
	if ticket.Status == "" {
		ticket.Status = domain.TicketOpen
	}
	if err := validate(ticket); err != nil {
		return nil, err
	}

	task, err := uc.tasks.GetByID(ctx, ticket.Task.ID())
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.NewError(domain.ErrCodeInvalid, "unknown task")
		}
		return nil, err
	}

	usage, err := uc.tasks.ConsumeTicket(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx, task.OwnerID, task.Assignee.ID())
	task.Tickets = usage
	ticket.Task = domain.Resolved(task.ID, *task)

	created, err := uc.tickets.Create(ctx, ticket)
	if err != nil {
		uc.logger.Error("ticket allowance consumed but ticket not stored",
			zap.String("task_id", task.ID), zap.Error(err))
		return nil, err
	}

	uc.notify(ctx, task.OwnerID, domain.NotificationTicketCreated, created.ID, map[string]interface{}{
		"task_id":    task.ID,
		"task_name":  task.Name,
		"issue_type": created.IssueType,
		"remaining":  usage.Remaining(),
	})
	if usage.Exhausted() {
		uc.notify(ctx, task.OwnerID, domain.NotificationTicketsExhausted, task.ID, map[string]interface{}{
			"task_name": task.Name,
			"used":      usage.Used,
			"max":       usage.Max,
		})
	}
	return created, nil
}

func (uc *UseCase) UpdateTicket(ctx context.Context, userID, id string, p Patch) (*domain.Ticket, error) {
	ticket, err := uc.GetTicket(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if p.IssueType != nil {
		ticket.IssueType = strings.TrimSpace(*p.IssueType)
	}
	if p.Category != nil {
		ticket.Category = *p.Category
	}
	if p.Description != nil {
		ticket.Description = *p.Description
	}
	if p.Priority != nil {
		ticket.Priority = *p.Priority
	}
	if p.Status != nil {
		ticket.Status = *p.Status
	}
	if err := validate(ticket); err != nil {
		return nil, err
	}
	if err := uc.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// DeleteTicket is limited to the requester. The consumed allowance is not
// returned.
func (uc *UseCase) DeleteTicket(ctx context.Context, userID, id string) error {
	ticket, err := uc.tickets.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ticket.RequesterID != userID {
		return domain.ErrForbidden
	}
	return uc.tickets.Delete(ctx, id)
}

func (uc *UseCase) visibleTask(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != userID && task.Assignee.ID() != userID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func validate(t *domain.Ticket) error {
	switch {
	case t.IssueType == "":
		return domain.NewError(domain.ErrCodeInvalid, "issue type is required")
	case !t.Status.Valid():
		return domain.NewError(domain.ErrCodeInvalid, "unknown ticket status")
	case t.Priority != "" && !t.Priority.Valid():
		return domain.NewError(domain.ErrCodeInvalid, "unknown priority")
	}
	return nil
}

// invalidate drops cached boards and metrics that show the task's usage.
func (uc *UseCase) invalidate(ctx context.Context, userIDs ...string) {
	if uc.cache == nil {
		return
	}
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		if err := uc.cache.Invalidate(ctx, id); err != nil {
			uc.logger.Warn("failed to invalidate view cache", zap.String("user_id", id), zap.Error(err))
		}
	}
}

func (uc *UseCase) notify(ctx context.Context, userID, kind, entityID string, payload map[string]interface{}) {
	if uc.notifications == nil || userID == "" {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		uc.logger.Warn("notification payload encoding failed", zap.String("kind", kind), zap.Error(err))
		return
	}
	n := &domain.Notification{
		UserID:   userID,
		Kind:     kind,
		EntityID: entityID,
		Payload:  raw,
	}
	if err := uc.notifications.Save(ctx, n); err != nil {
		uc.logger.Warn("notification not stored", zap.String("kind", kind), zap.String("user_id", userID), zap.Error(err))
	}
}
