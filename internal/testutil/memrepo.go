// Package testutil provides in-memory repositories for package tests.
package testutil

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

// Store bundles one in-memory repository per record type.
type Store struct {
	Users         *Users
	Sessions      *Sessions
	Projects      *Projects
	Tasks         *Tasks
	Tickets       *Tickets
	Notifications *Notifications
	Cache         *Cache
}

func NewStore() *Store {
	tasks := &Tasks{items: map[string]domain.Task{}}
	return &Store{
		Users:         &Users{items: map[string]domain.User{}},
		Sessions:      &Sessions{items: map[string]domain.Session{}},
		Projects:      &Projects{items: map[string]domain.Project{}, Tasks: tasks},
		Tasks:         tasks,
		Tickets:       &Tickets{items: map[string]domain.Ticket{}},
		Notifications: &Notifications{items: map[string]domain.Notification{}},
		Cache:         &Cache{items: map[string][]byte{}, gens: map[string]int64{}},
	}
}

type sequence struct {
	prefix string
	next   int
}

func (s *sequence) id() string {
	s.next++
	return s.prefix + strconv.Itoa(s.next)
}

func window(n, limit, offset int) (int, int) {
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}

// Users is an in-memory repository.UserRepository.
type Users struct {
	mu    sync.RWMutex
	items map[string]domain.User
	Err   error
}

func (r *Users) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.items[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *Users) Upsert(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	r.items[user.ID] = *user
	return nil
}

// Sessions is an in-memory repository.SessionRepository.
type Sessions struct {
	mu    sync.RWMutex
	items map[string]domain.Session
	Err   error
}

func (r *Sessions) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	s, ok := r.items[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (r *Sessions) Save(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	r.items[session.ID] = *session
	return nil
}

func (r *Sessions) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	delete(r.items, id)
	return nil
}

func (r *Sessions) Extend(_ context.Context, id string, ttlSeconds int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	s, ok := r.items[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.ExpiresAt = time.Now().Add(time.Duration(ttlSeconds) * time.Second)
	r.items[id] = s
	return nil
}

func (r *Sessions) DeleteByUser(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	removed := 0
	for id, s := range r.items {
		if s.UserID == userID {
			delete(r.items, id)
			removed++
		}
	}
	return removed, nil
}

// Projects is an in-memory repository.ProjectRepository. Task counters are
// taken from Tasks when it is set.
type Projects struct {
	mu    sync.RWMutex
	items map[string]domain.Project
	order []string
	seq   sequence
	Tasks *Tasks
	Err   error
}

func (r *Projects) GetByID(_ context.Context, id string) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	p, ok := r.items[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	r.count(&p)
	return &p, nil
}

func (r *Projects) List(_ context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []domain.Project
	for _, id := range r.order {
		p := r.items[id]
		if filter.OwnerID != "" && p.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != "" && string(p.Status) != filter.Status {
			continue
		}
		r.count(&p)
		out = append(out, p)
	}
	from, to := window(len(out), filter.Limit, filter.Offset)
	return out[from:to], nil
}

func (r *Projects) Create(_ context.Context, project *domain.Project) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if project == nil {
		return nil, domain.ErrInvalidPayload
	}
	if r.seq.prefix == "" {
		r.seq.prefix = "project-"
	}
	if project.ID == "" {
		project.ID = r.seq.id()
	}
	now := time.Now()
	project.CreatedAt, project.UpdatedAt = now, now
	r.items[project.ID] = *project
	r.order = append(r.order, project.ID)
	return project, nil
}

func (r *Projects) Update(_ context.Context, project *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	existing, ok := r.items[project.ID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	project.OwnerID = existing.OwnerID
	project.CreatedAt = existing.CreatedAt
	project.UpdatedAt = time.Now()
	r.items[project.ID] = *project
	return nil
}

func (r *Projects) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.items[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.items, id)
	r.order = remove(r.order, id)
	return nil
}

func (r *Projects) count(p *domain.Project) {
	if r.Tasks == nil {
		return
	}
	p.TaskCount, p.CompletedCount = r.Tasks.countFor(p.ID)
}

// Tasks is an in-memory repository.TaskRepository.
type Tasks struct {
	mu    sync.RWMutex
	items map[string]domain.Task
	order []string
	seq   sequence
	Err   error
}

// Put stores task as-is, bypassing validation and timestamps.
func (r *Tasks) Put(task domain.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[task.ID]; !ok {
		r.order = append(r.order, task.ID)
	}
	r.items[task.ID] = task
}

func (r *Tasks) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	t, ok := r.items[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (r *Tasks) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []domain.Task
	for _, id := range r.order {
		t := r.items[id]
		switch {
		case filter.OwnerID != "" && t.OwnerID != filter.OwnerID,
			filter.ProjectID != "" && t.Project.ID() != filter.ProjectID,
			filter.AssigneeID != "" && t.Assignee.ID() != filter.AssigneeID,
			filter.Status != "" && string(t.Status) != filter.Status,
			filter.DueAfter != nil && (t.DueDate == nil || !t.DueDate.After(*filter.DueAfter)),
			filter.DueBefore != nil && (t.DueDate == nil || !t.DueDate.Before(*filter.DueBefore)):
			continue
		}
		out = append(out, t)
	}
	from, to := window(len(out), filter.Limit, filter.Offset)
	return out[from:to], nil
}

func (r *Tasks) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if r.seq.prefix == "" {
		r.seq.prefix = "task-"
	}
	if task.ID == "" {
		task.ID = r.seq.id()
	}
	now := time.Now()
	task.CreatedAt, task.UpdatedAt = now, now
	r.items[task.ID] = *task
	r.order = append(r.order, task.ID)
	return task, nil
}

func (r *Tasks) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	existing, ok := r.items[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	task.OwnerID = existing.OwnerID
	task.Tickets.Used = existing.Tickets.Used
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = time.Now()
	r.items[task.ID] = *task
	return nil
}

func (r *Tasks) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.items[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.items, id)
	r.order = remove(r.order, id)
	return nil
}

func (r *Tasks) ConsumeTicket(_ context.Context, id string) (domain.TicketUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return domain.TicketUsage{}, r.Err
	}
	t, ok := r.items[id]
	if !ok {
		return domain.TicketUsage{}, domain.ErrTaskNotFound
	}
	if t.Tickets.Exhausted() {
		return t.Tickets, domain.ErrTicketsExhausted
	}
	t.Tickets.Used++
	r.items[id] = t
	return t.Tickets, nil
}

func (r *Tasks) countFor(projectID string) (total, done int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.items {
		if t.Project.ID() != projectID {
			continue
		}
		total++
		if t.IsCompleted() {
			done++
		}
	}
	return total, done
}

// Tickets is an in-memory repository.TicketRepository.
type Tickets struct {
	mu    sync.RWMutex
	items map[string]domain.Ticket
	order []string
	seq   sequence
	Err   error
}

func (r *Tickets) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	t, ok := r.items[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return &t, nil
}

func (r *Tickets) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []domain.Ticket
	for _, id := range r.order {
		t := r.items[id]
		switch {
		case filter.TaskID != "" && t.Task.ID() != filter.TaskID,
			filter.RequesterID != "" && t.RequesterID != filter.RequesterID,
			filter.Status != "" && string(t.Status) != filter.Status:
			continue
		}
		out = append(out, t)
	}
	from, to := window(len(out), filter.Limit, filter.Offset)
	return out[from:to], nil
}

func (r *Tickets) Create(_ context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if ticket == nil || ticket.Task.ID() == "" {
		return nil, domain.ErrInvalidPayload
	}
	if r.seq.prefix == "" {
		r.seq.prefix = "ticket-"
	}
	if ticket.ID == "" {
		ticket.ID = r.seq.id()
	}
	now := time.Now()
	ticket.CreatedAt, ticket.UpdatedAt = now, now
	r.items[ticket.ID] = *ticket
	r.order = append(r.order, ticket.ID)
	return ticket, nil
}

func (r *Tickets) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	existing, ok := r.items[ticket.ID]
	if !ok {
		return domain.ErrTicketNotFound
	}
	ticket.CreatedAt = existing.CreatedAt
	ticket.UpdatedAt = time.Now()
	r.items[ticket.ID] = *ticket
	return nil
}

func (r *Tickets) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.items[id]; !ok {
		return domain.ErrTicketNotFound
	}
	delete(r.items, id)
	r.order = remove(r.order, id)
	return nil
}

// Notifications is an in-memory repository.NotificationRepository.
type Notifications struct {
	mu    sync.RWMutex
	items map[string]domain.Notification
	order []string
	seq   sequence
	Err   error
}

func (r *Notifications) Get(_ context.Context, id string) (*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	n, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	return &n, nil
}

func (r *Notifications) List(_ context.Context, filter repository.NotificationFilter) ([]domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []domain.Notification
	for _, id := range r.order {
		n := r.items[id]
		switch {
		case filter.UserID != "" && n.UserID != filter.UserID,
			filter.Kind != "" && n.Kind != filter.Kind,
			filter.UnreadOnly && n.IsRead():
			continue
		}
		out = append(out, n)
	}
	from, to := window(len(out), filter.Limit, filter.Offset)
	return out[from:to], nil
}

func (r *Notifications) Save(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if n == nil || n.UserID == "" || n.Kind == "" {
		return domain.ErrInvalidPayload
	}
	if r.seq.prefix == "" {
		r.seq.prefix = "notification-"
	}
	if n.ID == "" {
		n.ID = r.seq.id()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if _, ok := r.items[n.ID]; !ok {
		r.order = append(r.order, n.ID)
	}
	r.items[n.ID] = *n
	return nil
}

func (r *Notifications) MarkRead(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	n, ok := r.items[id]
	if !ok {
		return domain.ErrNotificationNotFound
	}
	n.MarkRead(at)
	r.items[id] = n
	return nil
}

func (r *Notifications) Exists(_ context.Context, userID, kind, entityID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return false, r.Err
	}
	for _, n := range r.items {
		if n.UserID == userID && n.Kind == kind && n.EntityID == entityID {
			return true, nil
		}
	}
	return false, nil
}

// All returns every stored notification in insertion order.
func (r *Notifications) All() []domain.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Notification, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out
}

// Cache is an in-memory repository.ViewCache. TTLs are ignored.
type Cache struct {
	mu    sync.RWMutex
	items map[string][]byte
	gens  map[string]int64
	Hits  int
	Sets  int
	// Stale counts writes dropped because the generation moved on.
	Stale int
}

func (c *Cache) Get(_ context.Context, userID, key string, dest interface{}) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.gens[userID]
	raw, ok := c.items[userID+"/"+key]
	if !ok {
		return gen, false, nil
	}
	c.Hits++
	return gen, true, json.Unmarshal(raw, dest)
}

func (c *Cache) Set(_ context.Context, userID, key string, gen int64, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[userID] != gen {
		c.Stale++
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[userID+"/"+key] = raw
	c.Sets++
	return nil
}

func (c *Cache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[userID]++
	prefix := userID + "/"
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
	return nil
}

// Len reports how many entries are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

var (
	_ repository.UserRepository         = (*Users)(nil)
	_ repository.SessionRepository      = (*Sessions)(nil)
	_ repository.ProjectRepository      = (*Projects)(nil)
	_ repository.TaskRepository         = (*Tasks)(nil)
	_ repository.TicketRepository       = (*Tickets)(nil)
	_ repository.NotificationRepository = (*Notifications)(nil)
	_ repository.ViewCache              = (*Cache)(nil)
)
