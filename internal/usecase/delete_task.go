package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/usecase/shared"
)

// DeleteTaskInput contains the parameters for deleting a task.
type DeleteTaskInput struct {
	TaskID int64
}

// DeleteTaskOutput carries the task as it was before removal.
type DeleteTaskOutput struct {
	Task *domain.Task
}

// DeleteTask removes a task from the board.
type DeleteTask struct {
	tasks  domain.TaskRepository
	logger domain.Logger
}

// NewDeleteTask creates a new DeleteTask use case.
func NewDeleteTask(tasks domain.TaskRepository, logger domain.Logger) *DeleteTask {
	return &DeleteTask{tasks: tasks, logger: logger}
}

// Execute deletes the task. Transcript actions that point at it keep their
// task ID so the processing history stays intact.
func (uc *DeleteTask) Execute(ctx context.Context, in DeleteTaskInput) (*DeleteTaskOutput, error) {
	task, err := shared.GetTask(ctx, uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	// A concurrent delete may win between the lookup and the delete.
	if err := uc.tasks.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("delete task: %w", err)
	}

	if uc.logger != nil {
		uc.logger.Info(0, "task", fmt.Sprintf("deleted #%d: %q", task.ID, task.Title))
	}

	return &DeleteTaskOutput{Task: task}, nil
}
