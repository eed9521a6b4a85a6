package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteTask_Execute_Success(t *testing.T) {
	// Setup
	b := newBoard()
	b.tasks.Tasks[1] = &domain.Task{
		ID:     1,
		Title:  "Task to delete",
		Status: domain.StatusTodo,
	}
	uc := NewDeleteTask(b.tasks, b.logger)

	// Execute
	out, err := uc.Execute(context.Background(), DeleteTaskInput{TaskID: 1})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Task to delete", out.Task.Title)
	assert.NotContains(t, b.tasks.Tasks, int64(1))
	require.Len(t, b.logger.Entries, 1)
	assert.Equal(t, "task", b.logger.Entries[0].Category)
}

func TestDeleteTask_Execute_NotFound(t *testing.T) {
	// Setup
	b := newBoard()
	uc := NewDeleteTask(b.tasks, nil)

	// Execute
	_, err := uc.Execute(context.Background(), DeleteTaskInput{TaskID: 999})

	// Assert
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestDeleteTask_Execute_DeleteError(t *testing.T) {
	// Setup
	b := newBoard()
	b.tasks.Tasks[1] = &domain.Task{ID: 1, Title: "Task", Status: domain.StatusTodo}
	b.tasks.DeleteErr = errors.New("disk full")
	uc := NewDeleteTask(b.tasks, nil)

	// Execute
	_, err := uc.Execute(context.Background(), DeleteTaskInput{TaskID: 1})

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete task")
	assert.Contains(t, b.tasks.Tasks, int64(1))
}

func TestDeleteTask_Execute_SecondDeleteIsNotFound(t *testing.T) {
	// Setup
	b := newBoard()
	task := seedTask(t, b, "Doomed")
	uc := NewDeleteTask(b.tasks, b.logger)

	// Execute
	out, err := uc.Execute(context.Background(), DeleteTaskInput{TaskID: task.ID})
	require.NoError(t, err)
	_, err = uc.Execute(context.Background(), DeleteTaskInput{TaskID: task.ID})

	// Assert
	assert.Equal(t, task.ID, out.Task.ID)
	assert.Empty(t, b.tasks.Tasks)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

// lostRaceTasks finds a task that a concurrent caller deletes first.
type lostRaceTasks struct {
	*testutil.MockTaskRepository
}

func (r lostRaceTasks) Delete(context.Context, int64) error {
	return domain.ErrTaskNotFound
}

func TestDeleteTask_Execute_ConcurrentDeleteIsNotFound(t *testing.T) {
	// Setup
	b := newBoard()
	task := seedTask(t, b, "Contested")
	uc := NewDeleteTask(lostRaceTasks{b.tasks}, b.logger)
	logged := len(b.logger.Entries)

	// Execute
	_, err := uc.Execute(context.Background(), DeleteTaskInput{TaskID: task.ID})

	// Assert
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.Equal(t, domain.ErrTaskNotFound, err)
	assert.Len(t, b.logger.Entries, logged)
}

func TestDeleteTask_Execute_KeepsTranscriptActions(t *testing.T) {
	// Setup
	b := newBoard()
	task := seedTask(t, b, "Referenced")
	tr := &domain.Transcript{Title: "Standup", Text: "notes", State: domain.TranscriptUploaded}
	require.NoError(t, b.transcripts.Create(context.Background(), tr))
	_, err := b.transcripts.Update(context.Background(), tr.ID, func(x *domain.Transcript) error {
		return x.BeginProcessing("run-1", testNow, 0)
	})
	require.NoError(t, err)
	require.NoError(t, b.transcripts.AddAction(context.Background(), &domain.TranscriptAction{
		TranscriptID: tr.ID, TaskID: &task.ID, Type: domain.ActionCreated, RunID: "run-1",
	}))

	// Execute
	_, err = NewDeleteTask(b.tasks, nil).Execute(context.Background(), DeleteTaskInput{TaskID: task.ID})

	// Assert
	require.NoError(t, err)
	got, err := b.transcripts.Get(context.Background(), tr.ID)
	require.NoError(t, err)
	require.Len(t, got.Actions, 1)
	assert.Equal(t, task.ID, *got.Actions[0].TaskID)
}
