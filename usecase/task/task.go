package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase"
	"github.com/fastygo/tracker/viewmodel"
)

// ListQuery narrows and orders a task listing.
type ListQuery struct {
	Filter    repository.TaskFilter
	Sort      viewmodel.SortField
	Direction viewmodel.Direction
}

// Patch carries the editable task fields. Nil fields are left unchanged;
// an empty ProjectID or AssigneeID clears the reference.
type Patch struct {
	Name        *string
	Description *string
	ProjectID   *string
	AssigneeID  *string
	Status      *domain.TaskStatus
	Priority    *domain.Priority
	TicketMax   *int
	DueDate     **time.Time
}

type UseCase struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	cache    repository.ViewCache
	buffer   usecase.OperationBuffer
	defaults domain.Defaults
	logger   *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	cache repository.ViewCache,
	buffer usecase.OperationBuffer,
	defaults domain.Defaults,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		projects: projects,
		cache:    cache,
		buffer:   buffer,
		defaults: defaults.Normalize(),
		logger:   logger,
	}
}

// ListTasks returns the owner's tasks, sorted when q names a sort field.
func (uc *UseCase) ListTasks(ctx context.Context, ownerID string, q ListQuery) ([]domain.Task, error) {
	q.Filter.OwnerID = ownerID
	tasks, err := uc.tasks.List(ctx, q.Filter)
	if err != nil {
		return nil, err
	}
	if q.Sort == "" {
		return tasks, nil
	}
	if !q.Sort.Valid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown sort field")
	}
	return viewmodel.SortTasks(tasks, q.Sort, q.Direction), nil
}

// GetTask is visible to the task's owner and assignee.
func (uc *UseCase) GetTask(ctx context.Context, userID, id string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != userID && task.Assignee.ID() != userID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// CreateTask stores a new task owned by task.OwnerID. A non-nil ticketMax sets
// the ticket allowance as given, zero included; otherwise an unset allowance
// takes the configured default.
func (uc *UseCase) CreateTask(ctx context.Context, task *domain.Task, ticketMax *int) (*domain.Task, error) {
	if task == nil || task.OwnerID == "" {
		return nil, domain.ErrInvalidPayload
	}
	task.Name = strings.TrimSpace(task.Name)
	if task.Status == "" {
		task.Status = domain.TaskToDo
	}
	switch {
	case ticketMax != nil:
		task.Tickets.Max = *ticketMax
	case task.Tickets.Max == 0:
		task.Tickets.Max = uc.defaults.TicketMax
	}
	task.Tickets.Used = 0
	if err := uc.validate(ctx, task); err != nil {
		return nil, err
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		if uc.shouldBuffer(ctx, err, usecase.OperationCreate, task) {
			uc.invalidate(ctx, task)
			return task, nil
		}
		return nil, err
	}
	uc.invalidate(ctx, created)
	return created, nil
}

// UpdateTask applies p to a task the caller owns.
func (uc *UseCase) UpdateTask(ctx context.Context, userID, id string, p Patch) (*domain.Task, error) {
	task, err := uc.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	previousAssignee := task.Assignee.ID()

	if p.Name != nil {
		task.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.ProjectID != nil {
		task.Project = domain.Unresolved[domain.Project](*p.ProjectID)
	}
	if p.AssigneeID != nil {
		task.Assignee = domain.Unresolved[domain.User](*p.AssigneeID)
	}
	if p.Status != nil {
		task.Status = *p.Status
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.TicketMax != nil {
		task.Tickets.Max = *p.TicketMax
	}
	if p.DueDate != nil {
		task.DueDate = *p.DueDate
	}
	if err := uc.validate(ctx, task); err != nil {
		return nil, err
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, err
		}
		if !uc.shouldBuffer(ctx, err, usecase.OperationUpdate, task) {
			return nil, err
		}
	}
	uc.invalidate(ctx, task)
	if previousAssignee != "" && previousAssignee != task.Assignee.ID() {
		uc.invalidateUser(ctx, previousAssignee)
	}
	return task, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, userID, id string) error {
	task, err := uc.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return err
		}
		if !uc.shouldBuffer(ctx, err, usecase.OperationDelete, &domain.Task{ID: id, OwnerID: task.OwnerID}) {
			return err
		}
	}
	uc.invalidate(ctx, task)
	return nil
}

func (uc *UseCase) owned(ctx context.Context, userID, id string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != userID {
		if task.Assignee.ID() == userID {
			return nil, domain.ErrForbidden
		}
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func (uc *UseCase) validate(ctx context.Context, task *domain.Task) error {
	switch {
	case task.Name == "":
		return domain.NewError(domain.ErrCodeInvalid, "task name is required")
	case !task.Status.Valid():
		return domain.NewError(domain.ErrCodeInvalid, "unknown task status")
	case task.Priority != "" && !task.Priority.Valid():
		return domain.NewError(domain.ErrCodeInvalid, "unknown priority")
	case task.Tickets.Max < 0:
		return domain.NewError(domain.ErrCodeInvalid, "ticket allowance cannot be negative")
	}

	projectID := task.Project.ID()
	if projectID == "" || uc.projects == nil {
		return nil
	}
	if _, ok := task.Project.Resolved(); ok {
		return nil
	}
	project, err := uc.projects.GetByID(ctx, projectID)
	switch {
	case errors.Is(err, domain.ErrProjectNotFound):
		return domain.NewError(domain.ErrCodeInvalid, "unknown project")
	case err != nil:
		// Let the write itself decide whether to buffer.
		uc.logger.Warn("project lookup failed", zap.String("project_id", projectID), zap.Error(err))
		return nil
	case project.OwnerID != task.OwnerID:
		return domain.NewError(domain.ErrCodeInvalid, "unknown project")
	}
	task.Project = domain.Resolved(projectID, *project)
	return nil
}

func (uc *UseCase) shouldBuffer(ctx context.Context, cause error, operation string, task *domain.Task) bool {
	if uc.buffer == nil || !usecase.Bufferable(cause) {
		return false
	}
	if err := uc.buffer.BufferTask(ctx, operation, task); err != nil {
		uc.logger.Error("failed to buffer task operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("task operation buffered", zap.String("operation", operation), zap.String("task_id", task.ID))
	return true
}

func (uc *UseCase) invalidate(ctx context.Context, task *domain.Task) {
	uc.invalidateUser(ctx, task.OwnerID)
	if assignee := task.Assignee.ID(); assignee != "" && assignee != task.OwnerID {
		uc.invalidateUser(ctx, assignee)
	}
}

func (uc *UseCase) invalidateUser(ctx context.Context, userID string) {
	if uc.cache == nil || userID == "" {
		return
	}
	if err := uc.cache.Invalidate(ctx, userID); err != nil {
		uc.logger.Warn("view cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}
