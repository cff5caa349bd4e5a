package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
)

func task(id string, status domain.TaskStatus) domain.Task {
	return domain.Task{ID: id, Name: id, Status: status}
}

func ids(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestBucketByStatus_DropsUnknownStatus(t *testing.T) {
	tasks := []domain.Task{
		task("t1", domain.TaskToDo),
		task("t2", domain.TaskDone),
		task("t3", "unknown"),
	}

	buckets := BucketByStatus(tasks, domain.TaskStatuses, taskStatus)

	require.Len(t, buckets, 4)
	assert.Equal(t, domain.TaskStatuses, buckets.Keys())
	assert.Equal(t, []string{"t1"}, ids(buckets.Get(domain.TaskToDo)))
	assert.Empty(t, buckets.Get(domain.TaskInProgress))
	assert.NotNil(t, buckets.Get(domain.TaskInProgress))
	assert.Empty(t, buckets.Get(domain.TaskInReview))
	assert.Equal(t, []string{"t2"}, ids(buckets.Get(domain.TaskDone)))
	assert.Equal(t, 2, buckets.Total())
}

func TestBucketByStatus_StableWithinBucket(t *testing.T) {
	tasks := []domain.Task{
		task("a", domain.TaskInProgress),
		task("b", domain.TaskToDo),
		task("c", domain.TaskInProgress),
		task("d", domain.TaskToDo),
		task("e", domain.TaskInProgress),
	}

	buckets := BucketByStatus(tasks, domain.TaskStatuses, taskStatus)

	assert.Equal(t, []string{"b", "d"}, ids(buckets.Get(domain.TaskToDo)))
	assert.Equal(t, []string{"a", "c", "e"}, ids(buckets.Get(domain.TaskInProgress)))
}

func TestBucketByStatus_UnionIsRecognizedSubset(t *testing.T) {
	tasks := []domain.Task{
		task("1", domain.TaskDone),
		task("2", "archived"),
		task("3", domain.TaskToDo),
		task("4", domain.TaskInReview),
		task("5", ""),
		task("6", domain.TaskDone),
	}
	keys := []domain.TaskStatus{domain.TaskDone, domain.TaskToDo}

	buckets := BucketByStatus(tasks, keys, taskStatus)

	var union []string
	for _, b := range buckets {
		assert.Equal(t, len(b.Items), b.Count)
		union = append(union, ids(b.Items)...)
	}
	assert.ElementsMatch(t, []string{"1", "6", "3"}, union)
	assert.Equal(t, keys, buckets.Keys())
}

func TestBucketByStatus_DuplicateKeysCollapse(t *testing.T) {
	tasks := []domain.Task{task("1", domain.TaskDone)}
	keys := []domain.TaskStatus{domain.TaskDone, domain.TaskToDo, domain.TaskDone}

	buckets := BucketByStatus(tasks, keys, taskStatus)

	require.Len(t, buckets, 2)
	assert.Equal(t, 1, buckets.Total())
}

func TestBucketByStatus_DoesNotMutateInput(t *testing.T) {
	tasks := []domain.Task{task("1", domain.TaskDone), task("2", domain.TaskToDo)}
	before := append([]domain.Task(nil), tasks...)

	buckets := BucketByStatus(tasks, domain.TaskStatuses, taskStatus)
	buckets.Get(domain.TaskDone)[0].Name = "changed"

	assert.Equal(t, before, tasks)
}

func TestBucketByStatus_EmptyInput(t *testing.T) {
	buckets := BucketByStatus(nil, domain.TaskStatuses, taskStatus)

	require.Len(t, buckets, len(domain.TaskStatuses))
	for _, b := range buckets {
		assert.True(t, b.Empty())
		assert.NotNil(t, b.Items)
	}
}

func TestBucketByStatus_Projects(t *testing.T) {
	projects := []domain.Project{
		{ID: "p1", Status: domain.ProjectActive},
		{ID: "p2", Status: domain.ProjectDraft},
		{ID: "p3", Status: domain.ProjectActive},
	}

	buckets := BucketByStatus(projects, domain.ProjectStatuses, func(p domain.Project) domain.ProjectStatus { return p.Status })

	require.Len(t, buckets, 7)
	assert.Len(t, buckets.Get(domain.ProjectActive), 2)
	assert.Len(t, buckets.Get(domain.ProjectDraft), 1)
	assert.Nil(t, buckets.Get("missing"))
}
