package viewmodel

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/fastygo/tracker/domain"
)

// SortField names a sortable table column.
type SortField string

const (
	SortByName        SortField = "name"
	SortByProjectName SortField = "project_name"
	SortByStatus      SortField = "status"
	SortByUpdatedAt   SortField = "updated_at"
)

func (f SortField) Valid() bool {
	switch f {
	case SortByName, SortByProjectName, SortByStatus, SortByUpdatedAt:
		return true
	}
	return false
}

// Direction is the table sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection maps "desc"/"descending" to Descending and anything else to Ascending.
func ParseDirection(raw string) Direction {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "desc", "descending":
		return Descending
	}
	return Ascending
}

// SortState is the table header selection.
type SortState struct {
	Field     SortField `json:"field"`
	Direction Direction `json:"direction"`
}

// Select applies a header click: the same field flips the direction, another
// field starts over in ascending order.
func (s SortState) Select(field SortField) SortState {
	if s.Field == field {
		if s.Direction == Ascending {
			return SortState{Field: field, Direction: Descending}
		}
		return SortState{Field: field, Direction: Ascending}
	}
	return SortState{Field: field, Direction: Ascending}
}

// Accessors extract sort keys from an entity type. Nil accessors make every
// element compare equal for that field.
type Accessors[T any] struct {
	Name        func(T) string
	ProjectName func(T) string
	StatusRank  func(T) int
	UpdatedAt   func(T) time.Time
}

// SortEntities returns a stably sorted copy of items.
// Unknown fields return the copy in input order.
func SortEntities[T any](items []T, field SortField, dir Direction, acc Accessors[T]) []T {
	out := slices.Clone(items)
	compare := comparator(field, acc)
	if compare == nil {
		return out
	}
	if dir == Descending {
		asc := compare
		compare = func(a, b T) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

func comparator[T any](field SortField, acc Accessors[T]) func(a, b T) int {
	switch field {
	case SortByName:
		return textCompare(acc.Name)
	case SortByProjectName:
		return textCompare(acc.ProjectName)
	case SortByStatus:
		if acc.StatusRank == nil {
			return nil
		}
		return func(a, b T) int { return cmp.Compare(acc.StatusRank(a), acc.StatusRank(b)) }
	case SortByUpdatedAt:
		if acc.UpdatedAt == nil {
			return nil
		}
		return func(a, b T) int { return acc.UpdatedAt(a).Compare(acc.UpdatedAt(b)) }
	}
	return nil
}

func textCompare[T any](key func(T) string) func(a, b T) int {
	if key == nil {
		return nil
	}
	return func(a, b T) int {
		return strings.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
	}
}

// TaskAccessors sorts tasks by board status rank.
var TaskAccessors = Accessors[domain.Task]{
	Name:        func(t domain.Task) string { return t.Name },
	ProjectName: func(t domain.Task) string { return t.ProjectName() },
	StatusRank:  func(t domain.Task) int { return t.Status.Rank() },
	UpdatedAt:   func(t domain.Task) time.Time { return t.UpdatedAt },
}

// TicketAccessors use the owning task's name as the ticket name.
var TicketAccessors = Accessors[domain.Ticket]{
	Name:        func(t domain.Ticket) string { return t.TaskName() },
	ProjectName: ticketProjectName,
	StatusRank:  func(t domain.Ticket) int { return t.Status.Rank() },
	UpdatedAt:   func(t domain.Ticket) time.Time { return t.UpdatedAt },
}

func ticketProjectName(t domain.Ticket) string {
	if task, ok := t.Task.Resolved(); ok {
		return task.ProjectName()
	}
	return ""
}

// ProjectAccessors treat the client name as the project-name column.
var ProjectAccessors = Accessors[domain.Project]{
	Name:        func(p domain.Project) string { return p.Name },
	ProjectName: func(p domain.Project) string { return p.ClientName },
	StatusRank:  func(p domain.Project) int { return p.Status.Rank() },
	UpdatedAt:   func(p domain.Project) time.Time { return p.UpdatedAt },
}

// SortTasks is SortEntities over TaskAccessors.
func SortTasks(tasks []domain.Task, field SortField, dir Direction) []domain.Task {
	return SortEntities(tasks, field, dir, TaskAccessors)
}
