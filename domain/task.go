package domain

import "time"

// TicketUsage tracks how many tickets a task has consumed from its allowance.
type TicketUsage struct {
	Used int `json:"used"`
	Max  int `json:"max"`
}

// Exhausted reports whether no ticket allowance is left.
func (u TicketUsage) Exhausted() bool {
	return u.Used >= u.Max
}

// Remaining never goes below zero.
func (u TicketUsage) Remaining() int {
	if u.Used >= u.Max {
		return 0
	}
	return u.Max - u.Used
}

// Task represents a unit of project work shown on the board.
type Task struct {
	ID          string             `json:"id"`
	OwnerID     string             `json:"owner_id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Project     Reference[Project] `json:"project"`
	Assignee    Reference[User]    `json:"assignee"`
	Status      TaskStatus         `json:"status"`
	Priority    Priority           `json:"priority,omitempty"`
	Tickets     TicketUsage        `json:"ticket_usage"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == TaskDone
}

// EffectivePriority substitutes the configured default for a missing priority.
func (t Task) EffectivePriority(d Defaults) Priority {
	if t.Priority == "" {
		return d.Priority
	}
	return t.Priority
}

// ProjectName returns the resolved project name, or "" when only the id is known.
func (t Task) ProjectName() string {
	if p, ok := t.Project.Resolved(); ok {
		return p.Name
	}
	return ""
}
