package viewmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/tracker/domain"
)

var now = time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return now.Add(-time.Duration(n) * 24 * time.Hour)
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func TestAggregateMetrics_DoneAndUpdatedWindow(t *testing.T) {
	tasks := []domain.Task{
		{ID: "1", Status: domain.TaskDone, UpdatedAt: daysAgo(1), CreatedAt: daysAgo(1)},
		{ID: "2", Status: domain.TaskToDo, UpdatedAt: daysAgo(10), CreatedAt: daysAgo(10)},
	}

	m := AggregateMetrics(tasks, now, 7)

	assert.Equal(t, 1, m.DoneRecently)
	assert.Equal(t, 1, m.UpdatedRecently)
	assert.Equal(t, 1, m.CreatedRecently)
	assert.Equal(t, 0, m.DueSoon)
	assert.Equal(t, 7, m.WindowDays)
	assert.Equal(t, 2, m.Total)
}

func TestAggregateMetrics_WindowBoundaryIsInclusive(t *testing.T) {
	tasks := []domain.Task{
		{Status: domain.TaskDone, UpdatedAt: daysAgo(7), CreatedAt: daysAgo(7)},
		{Status: domain.TaskDone, UpdatedAt: daysAgo(7).Add(-time.Nanosecond), CreatedAt: daysAgo(8)},
	}

	m := AggregateMetrics(tasks, now, 7)

	assert.Equal(t, 1, m.UpdatedRecently)
	assert.Equal(t, 1, m.DoneRecently)
	assert.Equal(t, 1, m.CreatedRecently)
}

func TestAggregateMetrics_DefaultWindow(t *testing.T) {
	tasks := []domain.Task{{UpdatedAt: daysAgo(6)}, {UpdatedAt: daysAgo(8)}}

	m := AggregateMetrics(tasks, now, 0)

	assert.Equal(t, 7, m.WindowDays)
	assert.Equal(t, 1, m.UpdatedRecently)
}

func TestAggregateMetrics_DueSoonBounds(t *testing.T) {
	start := StartOfDay(now)
	end := EndOfDay(now.Add(7 * 24 * time.Hour))

	cases := []struct {
		name string
		due  *time.Time
		want int
	}{
		{"no due date", nil, 0},
		{"exactly start of today", ptrTime(start), 0},
		{"just after start of today", ptrTime(start.Add(time.Second)), 1},
		{"earlier today than now", ptrTime(now.Add(-time.Hour)), 1},
		{"in three days", ptrTime(now.Add(72 * time.Hour)), 1},
		{"last second of window", ptrTime(end.Add(-time.Second)), 1},
		{"exactly end of window day", ptrTime(end), 0},
		{"day after window", ptrTime(end.Add(time.Second)), 0},
		{"yesterday", ptrTime(daysAgo(1)), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := AggregateMetrics([]domain.Task{{DueDate: tc.due}}, now, 7)
			assert.Equal(t, tc.want, m.DueSoon)
		})
	}
}

func TestAggregateMetrics_DayBoundariesFollowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	localNow := time.Date(2024, time.March, 15, 1, 0, 0, 0, loc)
	due := time.Date(2024, time.March, 15, 0, 30, 0, 0, loc)

	m := AggregateMetrics([]domain.Task{{DueDate: &due}}, localNow, 7)

	assert.Equal(t, 1, m.DueSoon)
}

func TestAggregateMetrics_PriorityHistogram(t *testing.T) {
	tasks := []domain.Task{
		{Priority: domain.PriorityUrgent},
		{Priority: domain.PriorityHigh},
		{Priority: domain.PriorityHigh},
		{Priority: ""},
		{Priority: domain.PriorityLow},
		{Priority: "critical"},
	}

	m := AggregateMetrics(tasks, now, 7)

	assert.Equal(t, PriorityHistogram{Urgent: 1, High: 2, Medium: 1, Low: 1}, m.PriorityHistogram)
	assert.Equal(t, 5, m.PriorityHistogram.Total())
	assert.Equal(t, 2, m.PriorityHistogram.Get(domain.PriorityHigh))
	assert.Equal(t, 0, m.PriorityHistogram.Get("critical"))
}

func TestAggregateMetricsWith_CustomDefaultPriority(t *testing.T) {
	d := domain.DefaultDefaults()
	d.Priority = domain.PriorityLow

	m := AggregateMetricsWith([]domain.Task{{}, {}}, now, 7, d)

	assert.Equal(t, 2, m.PriorityHistogram.Low)
	assert.Equal(t, 0, m.PriorityHistogram.Medium)
}

func TestAggregateMetrics_CounterInvariants(t *testing.T) {
	statuses := domain.TaskStatuses
	var tasks []domain.Task
	for i := 0; i < 40; i++ {
		due := now.Add(time.Duration(i-10) * 12 * time.Hour)
		tasks = append(tasks, domain.Task{
			Status:    statuses[i%len(statuses)],
			UpdatedAt: daysAgo(i % 13),
			CreatedAt: daysAgo(i % 17),
			DueDate:   &due,
		})
	}

	for _, window := range []int{1, 3, 7, 14, 30} {
		m := AggregateMetrics(tasks, now, window)
		for _, c := range []int{m.DoneRecently, m.UpdatedRecently, m.CreatedRecently, m.DueSoon} {
			assert.GreaterOrEqual(t, c, 0)
			assert.LessOrEqual(t, c, len(tasks))
		}
		assert.LessOrEqual(t, m.DoneRecently, m.UpdatedRecently)
	}
}

func TestStatusBreakdown(t *testing.T) {
	tasks := []domain.Task{
		task("1", domain.TaskDone),
		task("2", domain.TaskDone),
		task("3", domain.TaskToDo),
		task("4", "bogus"),
	}

	shares := StatusBreakdown(tasks, domain.TaskStatuses)

	assert.Equal(t, []StatusShare{
		{Status: domain.TaskToDo, Count: 1, Percent: 33.3},
		{Status: domain.TaskInProgress, Count: 0, Percent: 0},
		{Status: domain.TaskInReview, Count: 0, Percent: 0},
		{Status: domain.TaskDone, Count: 2, Percent: 66.7},
	}, shares)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(3, 0))
	assert.Equal(t, 50.0, Percent(1, 2))
	assert.Equal(t, 100.0, Percent(4, 4))
	assert.Equal(t, 12.5, Percent(1, 8))
}

func TestAggregateMetrics_VeryLargeWindow(t *testing.T) {
	tasks := []domain.Task{
		{Status: domain.TaskDone, UpdatedAt: daysAgo(1), CreatedAt: daysAgo(400)},
		{Status: domain.TaskToDo, UpdatedAt: daysAgo(3), CreatedAt: daysAgo(3), DueDate: ptrTime(now.AddDate(5, 0, 0))},
	}

	m := AggregateMetrics(tasks, now, 200000)

	assert.Equal(t, 200000, m.WindowDays)
	assert.Equal(t, 1, m.DoneRecently)
	assert.Equal(t, 2, m.UpdatedRecently)
	assert.Equal(t, 2, m.CreatedRecently)
	assert.Equal(t, 1, m.DueSoon)

	w := NewWindow(now, 200000)
	assert.True(t, w.Since.Before(now))
	assert.True(t, w.DueBefore.After(now))
}
