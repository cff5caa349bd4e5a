package domain

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleClient = "client"
)

// User represents an authenticated identity in the tracker.
type User struct {
	ID        string            `json:"id"`
	Email     string            `json:"email,omitempty"`
	Name      string            `json:"name,omitempty"`
	Role      string            `json:"role"`
	Status    string            `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == "active"
}

// ValidRole reports whether role is one the tracker knows about.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleMember, RoleClient:
		return true
	}
	return false
}
