package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/testutil"
)

func TestMarkRead(t *testing.T) {
	mem := testutil.NewStore()
	ctx := context.Background()
	require.NoError(t, mem.Notifications.Save(ctx, &domain.Notification{ID: "n1", UserID: "u1", Kind: domain.NotificationTaskDueSoon}))
	require.NoError(t, mem.Notifications.Save(ctx, &domain.Notification{ID: "n2", UserID: "u1", Kind: domain.NotificationTicketCreated}))

	uc := New(mem.Notifications, nil)
	first := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return first }

	n, err := uc.MarkRead(ctx, "u1", "n1")
	require.NoError(t, err)
	require.NotNil(t, n.ReadAt)
	assert.Equal(t, first, *n.ReadAt)

	uc.now = func() time.Time { return first.Add(time.Hour) }
	n, err = uc.MarkRead(ctx, "u1", "n1")
	require.NoError(t, err)
	assert.Equal(t, first, *n.ReadAt)

	_, err = uc.MarkRead(ctx, "u2", "n2")
	assert.ErrorIs(t, err, domain.ErrNotificationNotFound)

	unread, err := uc.List(ctx, "u1", true, 0, 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "n2", unread[0].ID)

	all, err := uc.List(ctx, "u1", false, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
