package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

type UseCase struct {
	notifications repository.NotificationRepository
	logger        *zap.Logger
	now           func() time.Time
}

func New(notifications repository.NotificationRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		notifications: notifications,
		logger:        logger,
		now:           time.Now,
	}
}

func (uc *UseCase) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	return uc.notifications.List(ctx, repository.NotificationFilter{
		UserID:     userID,
		UnreadOnly: unreadOnly,
		Limit:      limit,
		Offset:     offset,
	})
}

// MarkRead stamps one of userID's notifications. Already-read notifications
// keep their original timestamp.
func (uc *UseCase) MarkRead(ctx context.Context, userID, id string) (*domain.Notification, error) {
	n, err := uc.notifications.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, domain.ErrNotificationNotFound
	}
	if n.IsRead() {
		return n, nil
	}

	at := uc.now()
	if err := uc.notifications.MarkRead(ctx, id, at); err != nil {
		return nil, err
	}
	n.MarkRead(at)
	return n, nil
}
