package ticket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/testutil"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/viewmodel"
)

func setup(t *testing.T, usage domain.TicketUsage) (*UseCase, *testutil.Store) {
	t.Helper()
	mem := testutil.NewStore()
	mem.Tasks.Put(domain.Task{
		ID:       "t1",
		OwnerID:  "owner",
		Assignee: domain.Unresolved[domain.User]("dev"),
		Name:     "Landing page",
		Project:  domain.Resolved("p1", domain.Project{ID: "p1", Name: "Website"}),
		Status:   domain.TaskInProgress,
		Tickets:  usage,
	})
	return New(mem.Tickets, mem.Tasks, mem.Notifications, mem.Cache, nil), mem
}

func newTicket(requester string) *domain.Ticket {
	return &domain.Ticket{
		Task:        domain.Unresolved[domain.Task]("t1"),
		RequesterID: requester,
		IssueType:   "bug",
		Category:    "frontend",
		Description: "Button misaligned",
	}
}

func TestCreateTicket_ConsumesAllowance(t *testing.T) {
	uc, mem := setup(t, domain.TicketUsage{Used: 1, Max: 3})
	ctx := context.Background()

	created, err := uc.CreateTicket(ctx, newTicket("client"))
	require.NoError(t, err)
	assert.Equal(t, domain.TicketOpen, created.Status)
	assert.Equal(t, "Landing page", created.TaskName())

	task, err := mem.Tasks.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketUsage{Used: 2, Max: 3}, task.Tickets)

	notes := mem.Notifications.All()
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationTicketCreated, notes[0].Kind)
	assert.Equal(t, "owner", notes[0].UserID)
	assert.Equal(t, created.ID, notes[0].EntityID)
}

func TestCreateTicket_InvalidatesTaskViews(t *testing.T) {
	uc, mem := setup(t, domain.TicketUsage{Used: 0, Max: 3})
	ctx := context.Background()
	require.NoError(t, mem.Cache.Set(ctx, "owner", "board:project", 0, 1, time.Minute))
	require.NoError(t, mem.Cache.Set(ctx, "dev", "metrics:7", 0, 1, time.Minute))
	require.NoError(t, mem.Cache.Set(ctx, "client", "metrics:7", 0, 1, time.Minute))

	_, err := uc.CreateTicket(ctx, newTicket("client"))
	require.NoError(t, err)
	assert.Equal(t, 1, mem.Cache.Len())

	var cached int
	_, found, err := mem.Cache.Get(ctx, "client", "metrics:7", &cached)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCreateTicket_LastUnitNotifiesExhaustion(t *testing.T) {
	uc, mem := setup(t, domain.TicketUsage{Used: 2, Max: 3})

	_, err := uc.CreateTicket(context.Background(), newTicket("client"))
	require.NoError(t, err)

	notes := mem.Notifications.All()
	require.Len(t, notes, 2)
	assert.Equal(t, domain.NotificationTicketsExhausted, notes[1].Kind)
	assert.Equal(t, "t1", notes[1].EntityID)
}

func TestCreateTicket_ExhaustedTaskConflicts(t *testing.T) {
	uc, mem := setup(t, domain.TicketUsage{Used: 3, Max: 3})

	_, err := uc.CreateTicket(context.Background(), newTicket("client"))
	require.ErrorIs(t, err, domain.ErrTicketsExhausted)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))

	tickets, err := mem.Tickets.List(context.Background(), repository.TicketFilter{})
	require.NoError(t, err)
	assert.Empty(t, tickets)
	assert.Empty(t, mem.Notifications.All())
}

func TestCreateTicket_Validation(t *testing.T) {
	uc, _ := setup(t, domain.TicketUsage{Max: 3})
	ctx := context.Background()

	_, err := uc.CreateTicket(ctx, &domain.Ticket{RequesterID: "client"})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	noType := newTicket("client")
	noType.IssueType = " "
	_, err = uc.CreateTicket(ctx, noType)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	badTask := newTicket("client")
	badTask.Task = domain.Unresolved[domain.Task]("missing")
	_, err = uc.CreateTicket(ctx, badTask)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	badPriority := newTicket("client")
	badPriority.Priority = "whenever"
	_, err = uc.CreateTicket(ctx, badPriority)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestTicketVisibility(t *testing.T) {
	uc, _ := setup(t, domain.TicketUsage{Max: 5})
	ctx := context.Background()
	created, err := uc.CreateTicket(ctx, newTicket("client"))
	require.NoError(t, err)

	for _, user := range []string{"client", "owner", "dev"} {
		_, err := uc.GetTicket(ctx, user, created.ID)
		assert.NoError(t, err, user)
	}
	_, err = uc.GetTicket(ctx, "stranger", created.ID)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)

	mine, err := uc.ListTickets(ctx, "client", ListQuery{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	forTask, err := uc.ListTickets(ctx, "owner", ListQuery{TaskID: "t1"})
	require.NoError(t, err)
	assert.Len(t, forTask, 1)

	_, err = uc.ListTickets(ctx, "stranger", ListQuery{TaskID: "t1"})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestListTickets_SortsByStatus(t *testing.T) {
	uc, _ := setup(t, domain.TicketUsage{Max: 5})
	ctx := context.Background()
	first, err := uc.CreateTicket(ctx, newTicket("client"))
	require.NoError(t, err)
	second, err := uc.CreateTicket(ctx, newTicket("client"))
	require.NoError(t, err)

	resolved := domain.TicketResolved
	_, err = uc.UpdateTicket(ctx, "owner", first.ID, Patch{Status: &resolved})
	require.NoError(t, err)

	tickets, err := uc.ListTickets(ctx, "client", ListQuery{Sort: viewmodel.SortByStatus})
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, second.ID, tickets[0].ID)
	assert.Equal(t, first.ID, tickets[1].ID)
}

func TestUpdateAndDeleteTicket(t *testing.T) {
	uc, _ := setup(t, domain.TicketUsage{Max: 5})
	ctx := context.Background()
	created, err := uc.CreateTicket(ctx, newTicket("client"))
	require.NoError(t, err)

	bad := domain.TicketStatus("reopened")
	_, err = uc.UpdateTicket(ctx, "client", created.ID, Patch{Status: &bad})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	assert.ErrorIs(t, uc.DeleteTicket(ctx, "owner", created.ID), domain.ErrForbidden)
	require.NoError(t, uc.DeleteTicket(ctx, "client", created.ID))
	assert.ErrorIs(t, uc.DeleteTicket(ctx, "client", created.ID), domain.ErrTicketNotFound)
}
