package project

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase"
	"github.com/fastygo/tracker/viewmodel"
)

// ListQuery narrows and orders a project listing.
type ListQuery struct {
	Status    string
	Sort      viewmodel.SortField
	Direction viewmodel.Direction
	Limit     int
	Offset    int
}

// Patch carries the editable project fields. Nil fields are left unchanged.
type Patch struct {
	Name         *string
	ClientName   *string
	Status       *domain.ProjectStatus
	StartDate    **time.Time
	DeliveryDate **time.Time
}

type UseCase struct {
	projects repository.ProjectRepository
	cache    repository.ViewCache
	buffer   usecase.OperationBuffer
	logger   *zap.Logger
}

func New(projects repository.ProjectRepository, cache repository.ViewCache, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		projects: projects,
		cache:    cache,
		buffer:   buffer,
		logger:   logger,
	}
}

func (uc *UseCase) ListProjects(ctx context.Context, ownerID string, q ListQuery) ([]domain.Project, error) {
	projects, err := uc.projects.List(ctx, repository.ProjectFilter{
		OwnerID: ownerID,
		Status:  q.Status,
		Limit:   q.Limit,
		Offset:  q.Offset,
	})
	if err != nil {
		return nil, err
	}
	if q.Sort == "" {
		return projects, nil
	}
	if !q.Sort.Valid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown sort field")
	}
	return viewmodel.SortEntities(projects, q.Sort, q.Direction, viewmodel.ProjectAccessors), nil
}

func (uc *UseCase) GetProject(ctx context.Context, ownerID, id string) (*domain.Project, error) {
	project, err := uc.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != ownerID {
		return nil, domain.ErrProjectNotFound
	}
	return project, nil
}

func (uc *UseCase) CreateProject(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	if project == nil || project.OwnerID == "" {
		return nil, domain.ErrInvalidPayload
	}
	project.Name = strings.TrimSpace(project.Name)
	if project.Status == "" {
		project.Status = domain.ProjectDraft
	}
	if err := validate(project); err != nil {
		return nil, err
	}

	created, err := uc.projects.Create(ctx, project)
	if err != nil {
		if uc.shouldBuffer(ctx, err, usecase.OperationCreate, project) {
			return project, nil
		}
		return nil, err
	}
	uc.invalidate(ctx, created.OwnerID)
	return created, nil
}

func (uc *UseCase) UpdateProject(ctx context.Context, ownerID, id string, p Patch) (*domain.Project, error) {
	project, err := uc.GetProject(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		project.Name = strings.TrimSpace(*p.Name)
	}
	if p.ClientName != nil {
		project.ClientName = *p.ClientName
	}
	if p.Status != nil {
		project.Status = *p.Status
	}
	if p.StartDate != nil {
		project.StartDate = *p.StartDate
	}
	if p.DeliveryDate != nil {
		project.DeliveryDate = *p.DeliveryDate
	}
	if err := validate(project); err != nil {
		return nil, err
	}

	if err := uc.projects.Update(ctx, project); err != nil {
		if !uc.shouldBuffer(ctx, err, usecase.OperationUpdate, project) {
			return nil, err
		}
	}
	uc.invalidate(ctx, ownerID)
	return project, nil
}

// DeleteProject removes the project; its tasks stay and lose the reference.
func (uc *UseCase) DeleteProject(ctx context.Context, ownerID, id string) error {
	if _, err := uc.GetProject(ctx, ownerID, id); err != nil {
		return err
	}
	if err := uc.projects.Delete(ctx, id); err != nil {
		if !uc.shouldBuffer(ctx, err, usecase.OperationDelete, &domain.Project{ID: id, OwnerID: ownerID}) {
			return err
		}
	}
	uc.invalidate(ctx, ownerID)
	return nil
}

func validate(p *domain.Project) error {
	switch {
	case p.Name == "":
		return domain.NewError(domain.ErrCodeInvalid, "project name is required")
	case !p.Status.Valid():
		return domain.NewError(domain.ErrCodeInvalid, "unknown project status")
	case p.StartDate != nil && p.DeliveryDate != nil && p.DeliveryDate.Before(*p.StartDate):
		return domain.NewError(domain.ErrCodeInvalid, "delivery date precedes start date")
	}
	return nil
}

func (uc *UseCase) shouldBuffer(ctx context.Context, cause error, operation string, project *domain.Project) bool {
	if uc.buffer == nil || !usecase.Bufferable(cause) {
		return false
	}
	if err := uc.buffer.BufferProject(ctx, operation, project); err != nil {
		uc.logger.Error("failed to buffer project operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("project operation buffered", zap.String("operation", operation), zap.String("project_id", project.ID))
	return true
}

func (uc *UseCase) invalidate(ctx context.Context, ownerID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, ownerID); err != nil {
		uc.logger.Warn("view cache invalidation failed", zap.String("user_id", ownerID), zap.Error(err))
	}
}
