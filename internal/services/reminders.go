package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/viewmodel"
)

// ReminderConfig controls the due-soon sweep.
type ReminderConfig struct {
	Schedule   string
	WindowDays int
	BatchSize  int
}

// ReminderService notifies the people responsible for tasks entering the
// due-soon window. Each task produces at most one reminder per recipient.
type ReminderService struct {
	tasks         repository.TaskRepository
	notifications repository.NotificationRepository
	logger        *zap.Logger
	cron          *cron.Cron
	cfg           ReminderConfig
	now           func() time.Time
}

func NewReminderService(
	tasks repository.TaskRepository,
	notifications repository.NotificationRepository,
	logger *zap.Logger,
	cfg ReminderConfig,
) (*ReminderService, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = "0 */15 * * * *"
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = domain.DefaultDefaults().WindowDays
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rs := &ReminderService{
		tasks:         tasks,
		notifications: notifications,
		logger:        logger,
		cfg:           cfg,
		cron:          cron.New(cron.WithSeconds()),
		now:           time.Now,
	}

	if _, err := rs.cron.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		sent, err := rs.Sweep(ctx)
		if err != nil {
			rs.logger.Error("reminder sweep failed", zap.Error(err))
			return
		}
		if sent > 0 {
			rs.logger.Info("due-soon reminders sent", zap.Int("count", sent))
		}
	}); err != nil {
		return nil, err
	}
	return rs, nil
}

func (rs *ReminderService) Start() {
	rs.cron.Start()
	rs.logger.Info("reminder service started", zap.String("schedule", rs.cfg.Schedule))
}

func (rs *ReminderService) Stop(ctx context.Context) {
	stopCtx := rs.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	rs.logger.Info("reminder service stopped")
}

// Sweep sends reminders for open tasks due inside the window and returns how
// many were created. Tasks are read page by page until a short page.
func (rs *ReminderService) Sweep(ctx context.Context) (int, error) {
	w := viewmodel.NewWindow(rs.now(), rs.cfg.WindowDays)

	sent := 0
	for offset := 0; ; offset += rs.cfg.BatchSize {
		tasks, err := rs.tasks.List(ctx, repository.TaskFilter{
			DueAfter:  &w.DueAfter,
			DueBefore: &w.DueBefore,
			Limit:     rs.cfg.BatchSize,
			Offset:    offset,
		})
		if err != nil {
			return sent, err
		}

		for _, task := range tasks {
			ok, err := rs.remind(ctx, w, task)
			if err != nil {
				return sent, err
			}
			if ok {
				sent++
			}
		}

		if len(tasks) < rs.cfg.BatchSize {
			return sent, nil
		}
	}
}

func (rs *ReminderService) remind(ctx context.Context, w viewmodel.Window, task domain.Task) (bool, error) {
	if task.IsCompleted() || !w.DueSoon(task.DueDate) {
		return false, nil
	}
	recipient := task.Assignee.ID()
	if recipient == "" {
		recipient = task.OwnerID
	}
	if recipient == "" {
		return false, nil
	}

	exists, err := rs.notifications.Exists(ctx, recipient, domain.NotificationTaskDueSoon, task.ID)
	if err != nil || exists {
		return false, err
	}

	payload, err := json.Marshal(map[string]interface{}{
		"task_name":    task.Name,
		"project_name": task.ProjectName(),
		"due_date":     task.DueDate,
	})
	if err != nil {
		rs.logger.Warn("reminder payload encoding failed", zap.String("task_id", task.ID), zap.Error(err))
		return false, nil
	}
	n := &domain.Notification{
		UserID:   recipient,
		Kind:     domain.NotificationTaskDueSoon,
		EntityID: task.ID,
		Payload:  payload,
		Labels:   map[string]string{"status": string(task.Status)},
	}
	if err := rs.notifications.Save(ctx, n); err != nil {
		return false, err
	}
	return true, nil
}
