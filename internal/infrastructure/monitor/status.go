package monitor

import "time"

type Status struct {
	PostgreSQL bool      `json:"postgresql"`
	Redis      bool      `json:"redis"`
	Buffer     bool      `json:"buffer"`
	BufferSize int       `json:"buffer_size"`
	LastCheck  time.Time `json:"last_check"`
}

// Online means writes can go straight to the primary stores.
func (s Status) Online() bool {
	return s.PostgreSQL && s.Redis
}

// Degraded means writes are being buffered locally.
func (s Status) Degraded() bool {
	return !s.Online() && s.Buffer
}
