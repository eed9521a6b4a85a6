package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
	t2 = t0.Add(2 * time.Hour)
)

func newTestTask() *Task {
	return &Task{
		ID:        1,
		Title:     "Ship v1",
		Status:    StatusTodo,
		Priority:  PriorityMedium,
		CreatedAt: t0,
		UpdatedAt: t0,
		CreatorID: 1,
	}
}

func TestTask_SetStatus_EnterDone(t *testing.T) {
	task := newTestTask()

	task.SetStatus(StatusDone, t1)

	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, t1, *task.CompletedAt)
	assert.NoError(t, task.CheckInvariants())
}

func TestTask_SetStatus_DoneAgainKeepsTimestamp(t *testing.T) {
	task := newTestTask()
	task.SetStatus(StatusDone, t1)

	task.SetStatus(StatusDone, t2)

	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, t1, *task.CompletedAt)
}

func TestTask_SetStatus_LeaveDoneClears(t *testing.T) {
	task := newTestTask()
	task.SetStatus(StatusDone, t1)

	task.SetStatus(StatusBlocked, t2)

	assert.Nil(t, task.CompletedAt)
	assert.NoError(t, task.CheckInvariants())
}

func TestTask_SetStatus_RepairsMissingTimestamp(t *testing.T) {
	task := newTestTask()
	task.Status = StatusDone // corrupted: done without completed_at

	task.SetStatus(StatusDone, t2)

	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, t2, *task.CompletedAt)
}

func TestTask_Touch(t *testing.T) {
	task := newTestTask()

	task.Touch(t2)
	assert.Equal(t, t2, task.UpdatedAt)

	// A clock running behind never moves updated_at before created_at.
	task.Touch(t0.Add(-time.Hour))
	assert.Equal(t, t0, task.UpdatedAt)
}

func TestTask_CheckInvariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Task)
		want   error
	}{
		{"valid", func(*Task) {}, nil},
		{"empty title", func(tk *Task) { tk.Title = "  " }, ErrEmptyTitle},
		{"bad status", func(tk *Task) { tk.Status = "closed" }, ErrInvalidStatus},
		{"bad priority", func(tk *Task) { tk.Priority = "p0" }, ErrInvalidPriority},
		{"done without completed_at", func(tk *Task) { tk.Status = StatusDone }, ErrCompletionMismatch},
		{"completed_at without done", func(tk *Task) { tk.CompletedAt = &t1 }, ErrCompletionMismatch},
		{"updated before created", func(tk *Task) { tk.UpdatedAt = t0.Add(-time.Second) }, ErrTimestampOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := newTestTask()
			tt.mutate(task)
			err := task.CheckInvariants()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTaskFilter_Matches(t *testing.T) {
	alice := int64(1)
	bob := int64(2)
	project := int64(7)
	done := StatusDone

	task := newTestTask()
	task.AssigneeID = &alice
	task.ProjectID = &project

	assert.True(t, TaskFilter{}.Matches(task))
	assert.True(t, TaskFilter{AssigneeID: &alice, ProjectID: &project}.Matches(task))
	assert.False(t, TaskFilter{AssigneeID: &bob}.Matches(task))
	assert.False(t, TaskFilter{AssigneeID: &alice, Status: &done}.Matches(task))

	task.AssigneeID = nil
	assert.False(t, TaskFilter{AssigneeID: &alice}.Matches(task))
}

func TestUniqueIDs(t *testing.T) {
	assert.Nil(t, UniqueIDs(nil))
	assert.Equal(t, []int64{1, 2, 3}, UniqueIDs([]int64{3, 1, 2, 3, 1}))
}

func TestSortTasksNewestFirst(t *testing.T) {
	tasks := []*Task{
		{ID: 1, CreatedAt: t0},
		{ID: 2, CreatedAt: t2},
		{ID: 3, CreatedAt: t0},
	}

	SortTasksNewestFirst(tasks)

	assert.Equal(t, int64(2), tasks[0].ID)
	assert.Equal(t, int64(3), tasks[1].ID)
	assert.Equal(t, int64(1), tasks[2].ID)
}

func TestGoal_SetStatus(t *testing.T) {
	g := &Goal{Title: "Launch", Status: GoalNotStarted, CreatedAt: t0, UpdatedAt: t0}

	g.SetStatus(GoalAchieved, t1)
	require.NotNil(t, g.CompletedAt)
	assert.Equal(t, t1, *g.CompletedAt)

	g.SetStatus(GoalAchieved, t2)
	assert.Equal(t, t1, *g.CompletedAt)

	g.SetStatus(GoalAbandoned, t2)
	assert.Nil(t, g.CompletedAt)
}
