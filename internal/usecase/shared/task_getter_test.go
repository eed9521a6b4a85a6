package shared

import (
	"context"
	"errors"
	"testing"

	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTask_Success(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.Put(&domain.Task{
		ID:     1,
		Title:  "Test task",
		Status: domain.StatusTodo,
	})

	task, err := GetTask(context.Background(), repo, 1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), task.ID)
	assert.Equal(t, "Test task", task.Title)
}

func TestGetTask_NotFound(t *testing.T) {
	repo := testutil.NewMockTaskRepository() // Empty

	task, err := GetTask(context.Background(), repo, 999)

	assert.Nil(t, task)
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetTask_RepositoryError(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.GetErr = errors.New("database connection failed")

	task, err := GetTask(context.Background(), repo, 1)

	assert.Nil(t, task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get task")
	assert.Contains(t, err.Error(), "database connection failed")
}

func TestGetTranscript_NotFound(t *testing.T) {
	repo := testutil.NewMockTranscriptRepository()

	tr, err := GetTranscript(context.Background(), repo, 7)

	assert.Nil(t, tr)
	require.ErrorIs(t, err, domain.ErrTranscriptNotFound)
}

func TestGetUser(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	id := repo.Add("Alice")

	user, err := GetUser(context.Background(), repo, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)

	_, err = GetUser(context.Background(), repo, id+1)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetProjectAndGoal_NotFound(t *testing.T) {
	_, err := GetProject(context.Background(), testutil.NewMockProjectRepository(), 1)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	_, err = GetGoal(context.Background(), testutil.NewMockGoalRepository(), 1)
	assert.ErrorIs(t, err, domain.ErrGoalNotFound)
}
