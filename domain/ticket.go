package domain

import "time"

// Ticket is a request raised against a task, consuming part of its allowance.
type Ticket struct {
	ID          string          `json:"id"`
	Task        Reference[Task] `json:"task"`
	RequesterID string          `json:"requester_id"`
	IssueType   string          `json:"issue_type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Priority    Priority        `json:"priority,omitempty"`
	Status      TicketStatus    `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TaskName returns the resolved task name, or "" when only the id is known.
func (t Ticket) TaskName() string {
	if task, ok := t.Task.Resolved(); ok {
		return task.Name
	}
	return ""
}
