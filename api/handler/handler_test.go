package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/infrastructure/monitor"
	"github.com/fastygo/tracker/internal/testutil"
	"github.com/fastygo/tracker/pkg/httpcontext"
	"github.com/fastygo/tracker/usecase"
	authUC "github.com/fastygo/tracker/usecase/auth"
	dashboardUC "github.com/fastygo/tracker/usecase/dashboard"
	notificationUC "github.com/fastygo/tracker/usecase/notification"
	projectUC "github.com/fastygo/tracker/usecase/project"
	taskUC "github.com/fastygo/tracker/usecase/task"
	ticketUC "github.com/fastygo/tracker/usecase/ticket"
)

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
	Meta   json.RawMessage `json:"meta"`
}

type request struct {
	userID string
	id     string
	query  string
	body   string
}

func call(t *testing.T, h fasthttp.RequestHandler, r request) (int, envelope) {
	t.Helper()
	var ctx fasthttp.RequestCtx
	if r.userID != "" {
		ctx.Request.Header.Set(httpcontext.HeaderUserID, r.userID)
	}
	if r.id != "" {
		ctx.SetUserValue("id", r.id)
	}
	if r.query != "" {
		ctx.Request.URI().SetQueryString(r.query)
	}
	if r.body != "" {
		ctx.Request.SetBodyString(r.body)
	}
	h(&ctx)

	var env envelope
	if body := ctx.Response.Body(); len(body) > 0 {
		require.NoError(t, json.Unmarshal(body, &env))
	}
	return ctx.Response.StatusCode(), env
}

func decodeData(t *testing.T, env envelope, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

type fixture struct {
	mem          *testutil.Store
	projects     *ProjectHandler
	tasks        *TaskHandler
	tickets      *TicketHandler
	notification *NotificationHandler
	dashboard    *DashboardHandler
}

func newFixture() *fixture {
	mem := testutil.NewStore()
	adapter := httpcontext.NewAdapter(time.Second)
	defaults := domain.DefaultDefaults()

	dispatcher := usecase.NewDispatcher()
	dashboardUC.New(mem.Tasks, mem.Projects, mem.Cache, dashboardUC.Config{Defaults: defaults}, nil).Register(dispatcher)

	return &fixture{
		mem:          mem,
		projects:     NewProjectHandler(projectUC.New(mem.Projects, mem.Cache, nil, nil), adapter, nil),
		tasks:        NewTaskHandler(taskUC.New(mem.Tasks, mem.Projects, mem.Cache, nil, defaults, nil), adapter, nil),
		tickets:      NewTicketHandler(ticketUC.New(mem.Tickets, mem.Tasks, mem.Notifications, mem.Cache, nil), adapter, nil),
		notification: NewNotificationHandler(notificationUC.New(mem.Notifications, nil), adapter, nil),
		dashboard:    NewDashboardHandler(dispatcher, adapter, nil),
	}
}

func TestTaskHandler_Lifecycle(t *testing.T) {
	f := newFixture()

	status, env := call(t, f.projects.CreateProject, request{userID: "ana", body: `{"name":"Website","client_name":"Acme","delivery_date":"2024-06-01"}`})
	require.Equal(t, http.StatusCreated, status)
	var project domain.Project
	decodeData(t, env, &project)
	assert.Equal(t, domain.ProjectDraft, project.Status)

	status, env = call(t, f.tasks.CreateTask, request{userID: "ana", body: `{"name":"Copy","project_id":"` + project.ID + `","due_date":"2024-03-20T12:00:00Z"}`})
	require.Equal(t, http.StatusCreated, status)
	var task domain.Task
	decodeData(t, env, &task)
	assert.Equal(t, domain.TaskToDo, task.Status)
	assert.Equal(t, 5, task.Tickets.Max)
	require.NotNil(t, task.DueDate)

	status, _ = call(t, f.tasks.CreateTask, request{userID: "ana", body: `{"name":"Brief"}`})
	require.Equal(t, http.StatusCreated, status)

	status, env = call(t, f.tasks.GetTasks, request{userID: "ana", query: "sort=name&dir=asc"})
	require.Equal(t, http.StatusOK, status)
	var tasks []domain.Task
	decodeData(t, env, &tasks)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Brief", tasks[0].Name)
	assert.Contains(t, string(env.Meta), `"count":2`)

	status, env = call(t, f.tasks.GetTasks, request{userID: "ana", query: "sort=name&dir=asc&toggle=name"})
	require.Equal(t, http.StatusOK, status)
	var toggled []domain.Task
	decodeData(t, env, &toggled)
	require.Len(t, toggled, 2)
	assert.Equal(t, "Copy", toggled[0].Name)
	assert.Contains(t, string(env.Meta), `"direction":"desc"`)

	status, env = call(t, f.tasks.GetTasks, request{userID: "ana", query: "sort=name&dir=desc&toggle=updated_at"})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Meta), `"sort":"updated_at"`)
	assert.Contains(t, string(env.Meta), `"direction":"asc"`)

	status, env = call(t, f.tasks.UpdateTask, request{userID: "ana", id: task.ID, body: `{"status":"in_review","due_date":""}`})
	require.Equal(t, http.StatusOK, status)
	var updated domain.Task
	decodeData(t, env, &updated)
	assert.Equal(t, domain.TaskInReview, updated.Status)
	assert.Nil(t, updated.DueDate)

	status, env = call(t, f.tasks.GetTask, request{userID: "bob", id: task.ID})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, string(domain.ErrCodeNotFound), env.Code)

	status, _ = call(t, f.tasks.DeleteTask, request{userID: "ana", id: task.ID})
	assert.Equal(t, http.StatusNoContent, status)
}

func TestTaskHandler_RejectsBadInput(t *testing.T) {
	f := newFixture()

	status, env := call(t, f.tasks.GetTasks, request{})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, string(domain.ErrCodeUnauthorized), env.Code)

	status, _ = call(t, f.tasks.CreateTask, request{userID: "ana", body: `{`})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, f.tasks.CreateTask, request{userID: "ana", body: `{"name":"x","due_date":"next week"}`})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, f.tasks.GetTasks, request{userID: "ana", query: "sort=color"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, f.tasks.UpdateTask, request{userID: "ana", body: `{}`})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestTicketHandler_AllowanceExhausted(t *testing.T) {
	f := newFixture()
	f.mem.Tasks.Put(domain.Task{ID: "t1", OwnerID: "ana", Name: "Support", Status: domain.TaskInProgress, Tickets: domain.TicketUsage{Max: 1}})

	status, env := call(t, f.tickets.CreateTicket, request{userID: "carl", body: `{"task_id":"t1","issue_type":"bug","priority":"high"}`})
	require.Equal(t, http.StatusCreated, status)
	var ticket domain.Ticket
	decodeData(t, env, &ticket)
	assert.Equal(t, domain.TicketOpen, ticket.Status)

	status, env = call(t, f.tickets.CreateTicket, request{userID: "carl", body: `{"task_id":"t1","issue_type":"bug"}`})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, string(domain.ErrCodeConflict), env.Code)

	status, _ = call(t, f.tickets.CreateTicket, request{userID: "carl", body: `{"issue_type":"bug"}`})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = call(t, f.tickets.GetTickets, request{userID: "ana", query: "task_id=t1"})
	require.Equal(t, http.StatusOK, status)
	var tickets []domain.Ticket
	decodeData(t, env, &tickets)
	assert.Len(t, tickets, 1)

	status, _ = call(t, f.tickets.DeleteTicket, request{userID: "ana", id: ticket.ID})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestTaskHandler_ZeroTicketAllowance(t *testing.T) {
	f := newFixture()

	status, env := call(t, f.tasks.CreateTask, request{userID: "ana", body: `{"name":"Internal","ticket_max":0}`})
	require.Equal(t, http.StatusCreated, status)
	var task domain.Task
	decodeData(t, env, &task)
	assert.Equal(t, 0, task.Tickets.Max)

	status, env = call(t, f.tickets.CreateTicket, request{userID: "ana", body: `{"task_id":"` + task.ID + `","issue_type":"bug"}`})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, string(domain.ErrCodeConflict), env.Code)
}

func TestNotificationHandler_MarkRead(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.mem.Notifications.Save(ctx, &domain.Notification{ID: "n1", UserID: "ana", Kind: domain.NotificationTaskDueSoon}))

	status, env := call(t, f.notification.GetNotifications, request{userID: "ana", query: "unread=true"})
	require.Equal(t, http.StatusOK, status)
	var items []domain.Notification
	decodeData(t, env, &items)
	assert.Len(t, items, 1)

	status, env = call(t, f.notification.MarkRead, request{userID: "ana", id: "n1"})
	require.Equal(t, http.StatusOK, status)
	var n domain.Notification
	decodeData(t, env, &n)
	assert.NotNil(t, n.ReadAt)

	status, _ = call(t, f.notification.MarkRead, request{userID: "bob", id: "n1"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDashboardHandler(t *testing.T) {
	f := newFixture()
	f.mem.Tasks.Put(domain.Task{ID: "t1", OwnerID: "ana", Name: "Copy", Status: domain.TaskDone, UpdatedAt: time.Now()})
	f.mem.Tasks.Put(domain.Task{ID: "t2", OwnerID: "ana", Name: "Layout", Status: domain.TaskToDo, Assignee: domain.Unresolved[domain.User]("bob")})

	status, env := call(t, f.dashboard.Metrics, request{userID: "ana", query: "window=14"})
	require.Equal(t, http.StatusOK, status)
	var metrics struct {
		WindowDays   int `json:"window_days"`
		Total        int `json:"total"`
		DoneRecently int `json:"done_recently"`
	}
	decodeData(t, env, &metrics)
	assert.Equal(t, 14, metrics.WindowDays)
	assert.Equal(t, 2, metrics.Total)
	assert.Equal(t, 1, metrics.DoneRecently)

	status, env = call(t, f.dashboard.Board, request{userID: "ana", query: "lanes=assignee"})
	require.Equal(t, http.StatusOK, status)
	var board struct {
		Lanes []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
			Total int    `json:"total"`
		} `json:"lanes"`
	}
	decodeData(t, env, &board)
	require.Len(t, board.Lanes, 2)
	assert.Equal(t, "Unassigned", board.Lanes[0].Title)
	assert.Equal(t, "bob", board.Lanes[1].ID)

	status, _ = call(t, f.dashboard.Board, request{userID: "ana", query: "lanes=team"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = call(t, f.dashboard.Status, request{userID: "ana"})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"percent":50`)

	status, _ = call(t, f.dashboard.Refresh, request{userID: "ana"})
	assert.Equal(t, http.StatusOK, status)
}

func TestAuthHandler_LoginAndLogout(t *testing.T) {
	mem := testutil.NewStore()
	require.NoError(t, mem.Users.Upsert(context.Background(), &domain.User{ID: "ana", Role: domain.RoleMember, Status: "active"}))
	uc := authUC.New(mem.Users, mem.Sessions, authUC.Config{Secret: "secret", Issuer: "tracker", TTL: time.Hour, MaxTTL: 24 * time.Hour}, nil)
	h := NewAuthHandler(uc, nil, nil, time.Hour)

	status, env := call(t, h.Login, request{body: `{"user_id":"ana","ttl_seconds":600}`})
	require.Equal(t, http.StatusCreated, status)
	var creds authUC.Credentials
	decodeData(t, env, &creds)
	require.NotEmpty(t, creds.Token)

	session, err := uc.Authenticate(context.Background(), creds.Token)
	require.NoError(t, err)

	status, _ = call(t, h.Login, request{body: `{}`})
	assert.Equal(t, http.StatusBadRequest, status)

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set(httpcontext.HeaderUserID, "ana")
	ctx.Request.Header.Set(httpcontext.HeaderSessionID, session.ID)
	h.Logout(&ctx)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	_, err = uc.Authenticate(context.Background(), creds.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

type staticStatus monitor.Status

func (s staticStatus) GetStatus() monitor.Status { return monitor.Status(s) }

func TestHealthHandler(t *testing.T) {
	status, env := call(t, NewHealthHandler(staticStatus{PostgreSQL: true, Redis: true, Buffer: true}, nil, nil).Check, request{})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", env.Status)

	status, env = call(t, NewHealthHandler(staticStatus{Redis: true, Buffer: true, BufferSize: 4}, nil, nil).Check, request{})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "DEGRADED", env.Code)

	status, env = call(t, NewHealthHandler(staticStatus{}, nil, nil).Check, request{})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "UNAVAILABLE", env.Code)
}
