package domain

import "time"

// Project groups tasks delivered for one client.
type Project struct {
	ID             string        `json:"id"`
	OwnerID        string        `json:"owner_id"`
	Name           string        `json:"name"`
	ClientName     string        `json:"client_name"`
	Status         ProjectStatus `json:"status"`
	StartDate      *time.Time    `json:"start_date,omitempty"`
	DeliveryDate   *time.Time    `json:"delivery_date,omitempty"`
	TaskCount      int           `json:"task_count"`
	CompletedCount int           `json:"completed_count"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Progress is the completed share of tasks in percent, 0 for an empty project.
func (p Project) Progress() float64 {
	if p.TaskCount <= 0 {
		return 0
	}
	done := p.CompletedCount
	if done > p.TaskCount {
		done = p.TaskCount
	}
	return float64(done) * 100 / float64(p.TaskCount)
}
