package domain

// TaskStatus is the lifecycle position of a task on the board.
type TaskStatus string

const (
	TaskToDo       TaskStatus = "to_do"
	TaskInProgress TaskStatus = "in_progress"
	TaskInReview   TaskStatus = "in_review"
	TaskDone       TaskStatus = "done"
)

// TaskStatuses lists task statuses in board order.
var TaskStatuses = []TaskStatus{TaskToDo, TaskInProgress, TaskInReview, TaskDone}

// Rank returns the position of s in TaskStatuses, or -1 when s is unknown.
func (s TaskStatus) Rank() int {
	return rankOf(TaskStatuses, s)
}

func (s TaskStatus) Valid() bool {
	return s.Rank() >= 0
}

// ProjectStatus is the lifecycle stage of a project.
type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "draft"
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectInReview  ProjectStatus = "in_review"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

var ProjectStatuses = []ProjectStatus{
	ProjectDraft,
	ProjectPlanning,
	ProjectActive,
	ProjectOnHold,
	ProjectInReview,
	ProjectCompleted,
	ProjectArchived,
}

func (s ProjectStatus) Rank() int {
	return rankOf(ProjectStatuses, s)
}

func (s ProjectStatus) Valid() bool {
	return s.Rank() >= 0
}

// TicketStatus tracks a support ticket raised against a task.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

var TicketStatuses = []TicketStatus{TicketOpen, TicketInProgress, TicketResolved, TicketClosed}

func (s TicketStatus) Rank() int {
	return rankOf(TicketStatuses, s)
}

func (s TicketStatus) Valid() bool {
	return s.Rank() >= 0
}

// Priority is shared by tasks and tickets.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists priorities from most to least pressing.
var Priorities = []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Rank() int {
	return rankOf(Priorities, p)
}

func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

func rankOf[S ~string](order []S, s S) int {
	for i, candidate := range order {
		if candidate == s {
			return i
		}
	}
	return -1
}
