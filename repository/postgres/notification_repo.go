package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a Postgres-backed NotificationRepository.
func NewNotificationRepository(pool *pgxpool.Pool) repository.NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Get(ctx context.Context, id string) (*domain.Notification, error) {
	const query = `
	SELECT id, user_id, kind, entity_id, payload, labels, read_at, created_at
	FROM notifications
	WHERE id = $1
	`
	return scanNotification(r.pool.QueryRow(ctx, query, id))
}

func (r *notificationRepository) List(ctx context.Context, filter repository.NotificationFilter) ([]domain.Notification, error) {
	const query = `
	SELECT id, user_id, kind, entity_id, payload, labels, read_at, created_at
	FROM notifications
	WHERE ($1 = '' OR user_id = $1)
	  AND ($2 = '' OR kind = $2)
	  AND (NOT $3 OR read_at IS NULL)
	ORDER BY created_at DESC
	LIMIT $4 OFFSET $5
	`
	rows, err := r.pool.Query(ctx, query, filter.UserID, filter.Kind, filter.UnreadOnly, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepository) Save(ctx context.Context, n *domain.Notification) error {
	if n == nil || n.UserID == "" || n.Kind == "" {
		return domain.ErrInvalidPayload
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO notifications (id, user_id, kind, entity_id, payload, labels, read_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))
	ON CONFLICT (id) DO UPDATE
	SET payload = EXCLUDED.payload,
		labels = EXCLUDED.labels,
		read_at = EXCLUDED.read_at
	RETURNING created_at
	`

	var payload []byte
	if len(n.Payload) > 0 {
		payload = []byte(n.Payload)
	}

	return r.pool.QueryRow(ctx, query,
		n.ID,
		n.UserID,
		n.Kind,
		n.EntityID,
		payload,
		marshalMap(n.Labels),
		nullTimePtr(n.ReadAt),
		nullTime(n.CreatedAt),
	).Scan(&n.CreatedAt)
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE notifications SET read_at = COALESCE(read_at, $2) WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) Exists(ctx context.Context, userID, kind, entityID string) (bool, error) {
	const query = `
	SELECT EXISTS (
		SELECT 1 FROM notifications WHERE user_id = $1 AND kind = $2 AND entity_id = $3
	)
	`
	var exists bool
	err := r.pool.QueryRow(ctx, query, userID, kind, entityID).Scan(&exists)
	return exists, err
}

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var n domain.Notification
	var (
		payload []byte
		labels  []byte
	)

	if err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Kind,
		&n.EntityID,
		&payload,
		&labels,
		&n.ReadAt,
		&n.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}

	if len(payload) > 0 {
		n.Payload = make([]byte, len(payload))
		copy(n.Payload, payload)
	}
	if len(labels) > 0 {
		_ = json.Unmarshal(labels, &n.Labels)
	}
	return &n, nil
}
