package domain

import (
	"encoding/json"
	"time"
)

const (
	NotificationTaskDueSoon      = "task.due_soon"
	NotificationTicketCreated    = "ticket.created"
	NotificationTicketsExhausted = "task.tickets_exhausted"
)

// Notification is a message addressed to one user about a tracked entity.
type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Kind      string            `json:"kind"`
	EntityID  string            `json:"entity_id,omitempty"`
	Payload   json.RawMessage   `json:"payload,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func (n *Notification) IsRead() bool {
	return n != nil && n.ReadAt != nil
}

// MarkRead stamps the notification once; later calls keep the first timestamp.
func (n *Notification) MarkRead(at time.Time) {
	if n == nil || n.ReadAt != nil {
		return
	}
	if at.IsZero() {
		at = time.Now()
	}
	n.ReadAt = &at
}
