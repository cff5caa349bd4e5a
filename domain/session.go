package domain

import "time"

// Session is the server-side half of a login. It is created on login, looked
// up on every authenticated request and deleted on logout.
type Session struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Role      string            `json:"role,omitempty"`
	ExpiresAt time.Time         `json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

// TTL returns the time left before expiry, zero once expired.
func (s *Session) TTL(reference time.Time) time.Duration {
	if s.IsExpired(reference) {
		return 0
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return s.ExpiresAt.Sub(reference)
}
