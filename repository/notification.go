package repository

import (
	"context"
	"time"

	"github.com/fastygo/tracker/domain"
)

type NotificationFilter struct {
	UserID     string
	Kind       string
	UnreadOnly bool
	Limit      int
	Offset     int
}

type NotificationRepository interface {
	Get(ctx context.Context, id string) (*domain.Notification, error)
	List(ctx context.Context, filter NotificationFilter) ([]domain.Notification, error)
	Save(ctx context.Context, notification *domain.Notification) error
	MarkRead(ctx context.Context, id string, at time.Time) error
	// Exists reports whether userID already has a notification of kind for entityID.
	Exists(ctx context.Context, userID, kind, entityID string) (bool, error)
}
