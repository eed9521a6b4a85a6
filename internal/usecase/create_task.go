package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/runoshun/taskboard/internal/domain"
)

// CreateTaskInput contains the parameters for creating a new task.
// Fields are ordered to minimize memory padding.
type CreateTaskInput struct {
	AssigneeID  *int64          // Assigned user (optional)
	ProjectID   *int64          // Owning project (optional)
	DueDate     *time.Time      // Due date (optional)
	Title       string          // Task title (required)
	Description string          // Task description (optional)
	Status      domain.Status   // Initial status (empty = todo)
	Priority    domain.Priority // Priority (empty = medium)
	TagIDs      []int64         // Tags (optional)
	CreatorID   int64           // Creating user (required)
}

// CreateTaskOutput contains the result of creating a new task.
type CreateTaskOutput struct {
	Task *domain.Task // The created task
}

// CreateTask is the use case for creating a new task.
type CreateTask struct {
	tasks  domain.TaskRepository
	refs   references
	clock  domain.Clock
	logger domain.Logger
}

// NewCreateTask creates a new CreateTask use case.
func NewCreateTask(tasks domain.TaskRepository, users domain.UserRepository, projects domain.ProjectRepository, tags domain.TagRepository, clock domain.Clock, logger domain.Logger) *CreateTask {
	return &CreateTask{
		tasks:  tasks,
		refs:   references{users: users, projects: projects, tags: tags},
		clock:  clock,
		logger: logger,
	}
}

// Execute creates a new task with the given input.
func (uc *CreateTask) Execute(ctx context.Context, in CreateTaskInput) (*CreateTaskOutput, error) {
	// Validate title
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}

	// Apply defaults and validate enumerations
	status := in.Status
	if status == "" {
		status = domain.StatusTodo
	}
	if !status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.DefaultPriority
	}
	if !priority.IsValid() {
		return nil, domain.ErrInvalidPriority
	}

	// Validate references
	if err := uc.refs.user(ctx, in.CreatorID, domain.ErrUnknownCreator); err != nil {
		return nil, err
	}
	if in.AssigneeID != nil {
		if err := uc.refs.user(ctx, *in.AssigneeID, domain.ErrUnknownAssignee); err != nil {
			return nil, err
		}
	}
	if in.ProjectID != nil {
		if err := uc.refs.project(ctx, *in.ProjectID); err != nil {
			return nil, err
		}
	}
	tags, err := uc.refs.tagSet(ctx, in.TagIDs)
	if err != nil {
		return nil, err
	}

	// Create task
	now := uc.clock.Now()
	task := &domain.Task{
		Title:       title,
		Description: in.Description,
		Priority:    priority,
		AssigneeID:  in.AssigneeID,
		CreatorID:   in.CreatorID,
		ProjectID:   in.ProjectID,
		DueDate:     in.DueDate,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	task.SetStatus(status, now)

	// Save task
	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	// Log task creation
	if uc.logger != nil {
		uc.logger.Info(0, "task", fmt.Sprintf("created #%d: %q", task.ID, task.Title))
	}

	return &CreateTaskOutput{Task: task}, nil
}
