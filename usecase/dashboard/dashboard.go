package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase"
	"github.com/fastygo/tracker/viewmodel"
)

// Dispatcher names served by this use case.
const (
	QueryMetrics   = "dashboard.metrics"
	QueryStatus    = "dashboard.status"
	QueryBoard     = "dashboard.board"
	CommandRefresh = "dashboard.refresh"
)

// LaneMode picks what board swimlanes group by.
type LaneMode string

const (
	LanesByProject  LaneMode = "project"
	LanesByAssignee LaneMode = "assignee"
)

// ParseLaneMode defaults to project lanes.
func ParseLaneMode(raw string) (LaneMode, error) {
	switch LaneMode(raw) {
	case "", LanesByProject:
		return LanesByProject, nil
	case LanesByAssignee:
		return LanesByAssignee, nil
	}
	return "", domain.NewError(domain.ErrCodeInvalid, "unknown lane mode")
}

const (
	noProjectTitle  = "No project"
	unassignedTitle = "Unassigned"
	// Upper bound on tasks fed into one view-model pass.
	taskLimit = 500
)

type MetricsParams struct {
	UserID     string
	WindowDays int
}

type StatusParams struct {
	UserID string
}

type BoardParams struct {
	UserID string
	Lanes  LaneMode
}

type RefreshParams struct {
	UserID string
}

// Config carries the view defaults and cache lifetime.
type Config struct {
	Defaults domain.Defaults
	CacheTTL time.Duration
}

// UseCase builds the dashboard and board view-models for one user from the
// tasks they own or are assigned to.
type UseCase struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	cache    repository.ViewCache
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

func New(
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	cache repository.ViewCache,
	cfg Config,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Defaults = cfg.Defaults.Normalize()
	return &UseCase{
		tasks:    tasks,
		projects: projects,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Register exposes the dashboard queries and the refresh command on d.
func (uc *UseCase) Register(d *usecase.Dispatcher) {
	d.RegisterQuery(QueryMetrics, func(ctx context.Context, params interface{}) (interface{}, error) {
		p, err := usecase.Params[MetricsParams](QueryMetrics, params)
		if err != nil {
			return nil, err
		}
		return uc.Metrics(ctx, p.UserID, p.WindowDays)
	})
	d.RegisterQuery(QueryStatus, func(ctx context.Context, params interface{}) (interface{}, error) {
		p, err := usecase.Params[StatusParams](QueryStatus, params)
		if err != nil {
			return nil, err
		}
		return uc.StatusOverview(ctx, p.UserID)
	})
	d.RegisterQuery(QueryBoard, func(ctx context.Context, params interface{}) (interface{}, error) {
		p, err := usecase.Params[BoardParams](QueryBoard, params)
		if err != nil {
			return nil, err
		}
		return uc.Board(ctx, p.UserID, p.Lanes)
	})
	d.RegisterCommand(CommandRefresh, func(ctx context.Context, payload interface{}) (interface{}, error) {
		p, err := usecase.Params[RefreshParams](CommandRefresh, payload)
		if err != nil {
			return nil, err
		}
		return nil, uc.Refresh(ctx, p.UserID)
	})
}

// Metrics aggregates the user's tasks over windowDays, falling back to the
// configured window when windowDays is not positive.
func (uc *UseCase) Metrics(ctx context.Context, userID string, windowDays int) (viewmodel.Metrics, error) {
	if windowDays <= 0 {
		windowDays = uc.cfg.Defaults.WindowDays
	}
	key := fmt.Sprintf("metrics:%d", windowDays)

	var m viewmodel.Metrics
	gen, hit := uc.cached(ctx, userID, key, &m)
	if hit {
		return m, nil
	}
	tasks, err := uc.userTasks(ctx, userID)
	if err != nil {
		return viewmodel.Metrics{}, err
	}
	m = viewmodel.AggregateMetricsWith(tasks, uc.now(), windowDays, uc.cfg.Defaults)
	uc.store(ctx, userID, key, gen, m)
	return m, nil
}

// StatusOverview counts the user's tasks per board column.
func (uc *UseCase) StatusOverview(ctx context.Context, userID string) ([]viewmodel.StatusShare, error) {
	const key = "status"

	var shares []viewmodel.StatusShare
	gen, hit := uc.cached(ctx, userID, key, &shares)
	if hit {
		return shares, nil
	}
	tasks, err := uc.userTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	shares = viewmodel.StatusBreakdown(tasks, uc.cfg.Defaults.BoardColumns)
	uc.store(ctx, userID, key, gen, shares)
	return shares, nil
}

// Board lays the user's tasks out in swimlanes by project or assignee with
// one column per configured status.
func (uc *UseCase) Board(ctx context.Context, userID string, mode LaneMode) (viewmodel.Board, error) {
	if mode == "" {
		mode = LanesByProject
	}
	key := "board:" + string(mode)

	var board viewmodel.Board
	gen, hit := uc.cached(ctx, userID, key, &board)
	if hit {
		return board, nil
	}
	tasks, err := uc.userTasks(ctx, userID)
	if err != nil {
		return viewmodel.Board{}, err
	}

	var (
		lanes  []viewmodel.Swimlane
		laneOf viewmodel.LaneKey
	)
	switch mode {
	case LanesByProject:
		laneOf = viewmodel.LaneByProject
		lanes, err = uc.projectLanes(ctx, userID, tasks)
		if err != nil {
			return viewmodel.Board{}, err
		}
	case LanesByAssignee:
		laneOf = viewmodel.LaneByAssignee
		lanes = viewmodel.TaskSwimlanes(tasks, laneOf, viewmodel.AssigneeTitle, unassignedTitle)
	default:
		return viewmodel.Board{}, domain.NewError(domain.ErrCodeInvalid, "unknown lane mode")
	}

	board = viewmodel.BuildBoard(lanes, uc.cfg.Defaults.BoardColumns, tasks, laneOf)
	uc.store(ctx, userID, key, gen, board)
	return board, nil
}

// Refresh drops the user's cached views.
func (uc *UseCase) Refresh(ctx context.Context, userID string) error {
	if uc.cache == nil {
		return nil
	}
	return uc.cache.Invalidate(ctx, userID)
}

// projectLanes lists the user's projects, then adds lanes for projects only
// known through assigned tasks and for tasks without a project.
func (uc *UseCase) projectLanes(ctx context.Context, userID string, tasks []domain.Task) ([]viewmodel.Swimlane, error) {
	projects, err := uc.projects.List(ctx, repository.ProjectFilter{OwnerID: userID})
	if err != nil {
		return nil, err
	}
	lanes := viewmodel.ProjectSwimlanes(projects)
	known := make(map[string]struct{}, len(lanes))
	for _, l := range lanes {
		known[l.ID] = struct{}{}
	}
	for _, extra := range viewmodel.TaskSwimlanes(tasks, viewmodel.LaneByProject, viewmodel.ProjectTitle, noProjectTitle) {
		if _, ok := known[extra.ID]; ok {
			continue
		}
		lanes = append(lanes, extra)
	}
	return lanes, nil
}

// userTasks merges owned and assigned tasks, owned first.
func (uc *UseCase) userTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	owned, err := uc.tasks.List(ctx, repository.TaskFilter{OwnerID: userID, Limit: taskLimit})
	if err != nil {
		return nil, err
	}
	assigned, err := uc.tasks.List(ctx, repository.TaskFilter{AssigneeID: userID, Limit: taskLimit})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(owned))
	tasks := make([]domain.Task, 0, len(owned)+len(assigned))
	for _, group := range [][]domain.Task{owned, assigned} {
		for _, t := range group {
			if _, ok := seen[t.ID]; ok {
				continue
			}
			seen[t.ID] = struct{}{}
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// cached returns the cache generation seen before the view is computed;
// store only writes under that generation.
func (uc *UseCase) cached(ctx context.Context, userID, key string, dest interface{}) (int64, bool) {
	if uc.cache == nil || uc.cfg.CacheTTL <= 0 {
		return 0, false
	}
	gen, found, err := uc.cache.Get(ctx, userID, key, dest)
	if err != nil {
		uc.logger.Warn("view cache read failed", zap.String("key", key), zap.Error(err))
		return gen, false
	}
	return gen, found
}

func (uc *UseCase) store(ctx context.Context, userID, key string, gen int64, value interface{}) {
	if uc.cache == nil || uc.cfg.CacheTTL <= 0 {
		return
	}
	if err := uc.cache.Set(ctx, userID, key, gen, value, uc.cfg.CacheTTL); err != nil {
		uc.logger.Warn("view cache write failed", zap.String("key", key), zap.Error(err))
	}
}
