package viewmodel

import "github.com/fastygo/tracker/domain"

// Swimlane is a horizontal board row.
type Swimlane struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Lane is one rendered swimlane with its status columns.
type Lane struct {
	Swimlane
	Columns Buckets[domain.TaskStatus, domain.Task] `json:"columns"`
	Total   int                                     `json:"total"`
}

// Board is the swimlane × column grid.
type Board struct {
	Columns []domain.TaskStatus `json:"column_statuses"`
	Lanes   []Lane              `json:"lanes"`
}

// Lane returns the lane with the given id.
func (b Board) Lane(id string) (Lane, bool) {
	for _, l := range b.Lanes {
		if l.ID == id {
			return l, true
		}
	}
	return Lane{}, false
}

// Cell returns the tasks at lane id and column status.
func (b Board) Cell(id string, status domain.TaskStatus) []domain.Task {
	l, ok := b.Lane(id)
	if !ok {
		return nil
	}
	return l.Columns.Get(status)
}

// LaneKey maps a task to the swimlane id it belongs to.
type LaneKey func(domain.Task) string

// LaneByProject groups tasks by their project id.
func LaneByProject(t domain.Task) string {
	return t.Project.ID()
}

// LaneByAssignee groups tasks by assignee id; unassigned tasks share lane "".
func LaneByAssignee(t domain.Task) string {
	return t.Assignee.ID()
}

// BuildBoard filters tasks into each swimlane and buckets them by column.
// Tasks that match no swimlane are not shown. Every lane carries every column,
// empty ones included.
func BuildBoard(swimlanes []Swimlane, columns []domain.TaskStatus, tasks []domain.Task, laneOf LaneKey) Board {
	if laneOf == nil {
		laneOf = LaneByProject
	}
	byLane := make(map[string][]domain.Task, len(swimlanes))
	for _, t := range tasks {
		id := laneOf(t)
		byLane[id] = append(byLane[id], t)
	}

	board := Board{
		Columns: append([]domain.TaskStatus(nil), columns...),
		Lanes:   make([]Lane, 0, len(swimlanes)),
	}
	for _, lane := range swimlanes {
		buckets := BucketByStatus(byLane[lane.ID], columns, taskStatus)
		board.Lanes = append(board.Lanes, Lane{
			Swimlane: lane,
			Columns:  buckets,
			Total:    buckets.Total(),
		})
	}
	return board
}

// ProjectSwimlanes builds one lane per project, in the given order.
func ProjectSwimlanes(projects []domain.Project) []Swimlane {
	lanes := make([]Swimlane, 0, len(projects))
	for _, p := range projects {
		lanes = append(lanes, Swimlane{ID: p.ID, Title: p.Name})
	}
	return lanes
}

// TaskSwimlanes derives lanes from the tasks themselves, in first-seen order.
// Titles come from resolved references and fall back to fallback, which is
// also used for the lane of tasks without a key.
func TaskSwimlanes(tasks []domain.Task, laneOf LaneKey, title func(domain.Task) string, fallback string) []Swimlane {
	if laneOf == nil {
		laneOf = LaneByProject
	}
	seen := make(map[string]struct{})
	var lanes []Swimlane
	for _, t := range tasks {
		id := laneOf(t)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		name := ""
		if title != nil {
			name = title(t)
		}
		if name == "" {
			name = fallback
		}
		lanes = append(lanes, Swimlane{ID: id, Title: name})
	}
	return lanes
}

// AssigneeTitle returns the resolved assignee's name or email.
func AssigneeTitle(t domain.Task) string {
	u, ok := t.Assignee.Resolved()
	if !ok {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// ProjectTitle returns the resolved project name.
func ProjectTitle(t domain.Task) string {
	return t.ProjectName()
}
