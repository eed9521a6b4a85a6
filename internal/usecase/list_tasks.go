package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/usecase/shared"
)

// ListTasksInput contains the parameters for listing tasks.
// All set filters are ANDed.
type ListTasksInput struct {
	AssigneeID *int64         // Filter by assignee
	ProjectID  *int64         // Filter by project
	Status     *domain.Status // Filter by status
}

// ListTasksOutput contains the result of listing tasks.
type ListTasksOutput struct {
	Tasks []*domain.Task // Matching tasks, newest first
}

// ListTasks is the use case for listing tasks.
type ListTasks struct {
	tasks domain.TaskRepository
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(tasks domain.TaskRepository) *ListTasks {
	return &ListTasks{
		tasks: tasks,
	}
}

// Execute lists tasks matching the given input criteria.
func (uc *ListTasks) Execute(ctx context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	if in.Status != nil && !in.Status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	tasks, err := uc.tasks.List(ctx, domain.TaskFilter{
		AssigneeID: in.AssigneeID,
		ProjectID:  in.ProjectID,
		Status:     in.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	domain.SortTasksNewestFirst(tasks)
	return &ListTasksOutput{Tasks: tasks}, nil
}

// ShowTaskInput contains the parameters for showing a task.
type ShowTaskInput struct {
	TaskID int64
}

// ShowTaskOutput contains the result of showing a task.
type ShowTaskOutput struct {
	Task *domain.Task
}

// ShowTask is the use case for retrieving a single task.
type ShowTask struct {
	tasks domain.TaskRepository
}

// NewShowTask creates a new ShowTask use case.
func NewShowTask(tasks domain.TaskRepository) *ShowTask {
	return &ShowTask{tasks: tasks}
}

// Execute returns the task or domain.ErrTaskNotFound.
func (uc *ShowTask) Execute(ctx context.Context, in ShowTaskInput) (*ShowTaskOutput, error) {
	task, err := shared.GetTask(ctx, uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	return &ShowTaskOutput{Task: task}, nil
}
