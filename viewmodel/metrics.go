package viewmodel

import (
	"math"
	"time"

	"github.com/fastygo/tracker/domain"
)

// PriorityHistogram counts tasks per recognized priority.
type PriorityHistogram struct {
	Urgent int `json:"urgent"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

func (h *PriorityHistogram) add(p domain.Priority) {
	switch p {
	case domain.PriorityUrgent:
		h.Urgent++
	case domain.PriorityHigh:
		h.High++
	case domain.PriorityMedium:
		h.Medium++
	case domain.PriorityLow:
		h.Low++
	}
}

// Get returns the count for p, 0 for unrecognized priorities.
func (h PriorityHistogram) Get(p domain.Priority) int {
	switch p {
	case domain.PriorityUrgent:
		return h.Urgent
	case domain.PriorityHigh:
		return h.High
	case domain.PriorityMedium:
		return h.Medium
	case domain.PriorityLow:
		return h.Low
	}
	return 0
}

func (h PriorityHistogram) Total() int {
	return h.Urgent + h.High + h.Medium + h.Low
}

// Metrics is the dashboard summary for one window.
type Metrics struct {
	WindowDays        int               `json:"window_days"`
	Total             int               `json:"total"`
	DoneRecently      int               `json:"done_recently"`
	UpdatedRecently   int               `json:"updated_recently"`
	CreatedRecently   int               `json:"created_recently"`
	DueSoon           int               `json:"due_soon"`
	PriorityHistogram PriorityHistogram `json:"priority_histogram"`
}

// Window holds the instants a metrics pass compares against.
type Window struct {
	Since     time.Time
	DueAfter  time.Time
	DueBefore time.Time
}

// NewWindow derives the comparison instants for now and windowDays.
// Days are calendar days in now's location, so any window size is safe.
func NewWindow(now time.Time, windowDays int) Window {
	return Window{
		Since:     now.AddDate(0, 0, -windowDays),
		DueAfter:  StartOfDay(now),
		DueBefore: EndOfDay(now.AddDate(0, 0, windowDays)),
	}
}

// DueSoon reports whether due falls strictly inside the due window.
func (w Window) DueSoon(due *time.Time) bool {
	return due != nil && due.After(w.DueAfter) && due.Before(w.DueBefore)
}

// AggregateMetrics computes the windowed counters and priority histogram.
// A non-positive windowDays falls back to the default window.
func AggregateMetrics(tasks []domain.Task, now time.Time, windowDays int) Metrics {
	return AggregateMetricsWith(tasks, now, windowDays, domain.DefaultDefaults())
}

// AggregateMetricsWith is AggregateMetrics with explicit defaults for the
// window size and missing priorities.
func AggregateMetricsWith(tasks []domain.Task, now time.Time, windowDays int, defaults domain.Defaults) Metrics {
	defaults = defaults.Normalize()
	if windowDays <= 0 {
		windowDays = defaults.WindowDays
	}
	w := NewWindow(now, windowDays)

	m := Metrics{WindowDays: windowDays, Total: len(tasks)}
	for _, t := range tasks {
		updated := !t.UpdatedAt.Before(w.Since)
		if updated {
			m.UpdatedRecently++
			if t.Status == domain.TaskDone {
				m.DoneRecently++
			}
		}
		if !t.CreatedAt.Before(w.Since) {
			m.CreatedRecently++
		}
		if w.DueSoon(t.DueDate) {
			m.DueSoon++
		}
		m.PriorityHistogram.add(t.EffectivePriority(defaults))
	}
	return m
}

// StatusShare is one row of the status overview widget.
type StatusShare struct {
	Status  domain.TaskStatus `json:"status"`
	Count   int               `json:"count"`
	Percent float64           `json:"percent"`
}

// StatusBreakdown counts tasks per status in board order with their share of
// all recognized tasks.
func StatusBreakdown(tasks []domain.Task, statuses []domain.TaskStatus) []StatusShare {
	buckets := BucketByStatus(tasks, statuses, taskStatus)
	total := buckets.Total()
	out := make([]StatusShare, len(buckets))
	for i, b := range buckets {
		out[i] = StatusShare{
			Status:  b.Status,
			Count:   b.Count,
			Percent: Percent(b.Count, total),
		}
	}
	return out
}

// Percent returns part/total as a percentage rounded to one decimal, 0 when
// total is not positive.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(total)) / 10
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func taskStatus(t domain.Task) domain.TaskStatus {
	return t.Status
}
