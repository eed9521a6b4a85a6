package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/runoshun/taskboard/internal/domain"
)

// UpdateTaskInput contains the parameters for patching a task.
// All fields except TaskID are optional. Only non-nil fields (and set Clear* flags) are applied;
// everything else is left unchanged.
type UpdateTaskInput struct {
	Title         *string          // New title (nil = no change)
	Description   *string          // New description (nil = no change)
	Status        *domain.Status   // New status (nil = no change)
	Priority      *domain.Priority // New priority (nil = no change)
	AssigneeID    *int64           // New assignee (nil = no change)
	ProjectID     *int64           // New project (nil = no change)
	DueDate       *time.Time       // New due date (nil = no change)
	TagIDs        *[]int64         // Replacement tag set (nil = no change, empty = remove all)
	TaskID        int64            // Task ID to update (required)
	ClearAssignee bool             // Unassign the task
	ClearProject  bool             // Remove the task from its project
	ClearDueDate  bool             // Remove the due date
}

// isEmpty reports whether the patch touches no field.
func (in UpdateTaskInput) isEmpty() bool {
	return in.Title == nil && in.Description == nil && in.Status == nil && in.Priority == nil &&
		in.AssigneeID == nil && in.ProjectID == nil && in.DueDate == nil && in.TagIDs == nil &&
		!in.ClearAssignee && !in.ClearProject && !in.ClearDueDate
}

// UpdateTaskOutput contains the result of updating a task.
type UpdateTaskOutput struct {
	Task           *domain.Task  // The updated task
	PreviousStatus domain.Status // Status before the patch was applied
}

// UpdateTask is the use case for patching an existing task.
// It is the only place where a task's status changes after creation.
type UpdateTask struct {
	tasks  domain.TaskRepository
	refs   references
	clock  domain.Clock
	logger domain.Logger
}

// NewUpdateTask creates a new UpdateTask use case.
func NewUpdateTask(tasks domain.TaskRepository, users domain.UserRepository, projects domain.ProjectRepository, tags domain.TagRepository, clock domain.Clock, logger domain.Logger) *UpdateTask {
	return &UpdateTask{
		tasks:  tasks,
		refs:   references{users: users, projects: projects, tags: tags},
		clock:  clock,
		logger: logger,
	}
}

// Execute applies the patch atomically against the current state of the task.
func (uc *UpdateTask) Execute(ctx context.Context, in UpdateTaskInput) (*UpdateTaskOutput, error) {
	// Validate that at least one field is being updated
	if in.isEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}

	// Validate values
	var title string
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, domain.ErrEmptyTitle
		}
	}
	if in.Status != nil && !in.Status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}
	if in.Priority != nil && !in.Priority.IsValid() {
		return nil, domain.ErrInvalidPriority
	}

	// Validate references
	if in.AssigneeID != nil && !in.ClearAssignee {
		if err := uc.refs.user(ctx, *in.AssigneeID, domain.ErrUnknownAssignee); err != nil {
			return nil, err
		}
	}
	if in.ProjectID != nil && !in.ClearProject {
		if err := uc.refs.project(ctx, *in.ProjectID); err != nil {
			return nil, err
		}
	}
	var tags []domain.Tag
	if in.TagIDs != nil {
		var err error
		if tags, err = uc.refs.tagSet(ctx, *in.TagIDs); err != nil {
			return nil, err
		}
	}

	// Apply patch
	now := uc.clock.Now()
	var previous domain.Status
	task, err := uc.tasks.Update(ctx, in.TaskID, func(t *domain.Task) error {
		previous = t.Status
		if in.Title != nil {
			t.Title = title
		}
		if in.Description != nil {
			t.Description = *in.Description
		}
		if in.Priority != nil {
			t.Priority = *in.Priority
		}
		switch {
		case in.ClearAssignee:
			t.AssigneeID = nil
		case in.AssigneeID != nil:
			id := *in.AssigneeID
			t.AssigneeID = &id
		}
		switch {
		case in.ClearProject:
			t.ProjectID = nil
		case in.ProjectID != nil:
			id := *in.ProjectID
			t.ProjectID = &id
		}
		switch {
		case in.ClearDueDate:
			t.DueDate = nil
		case in.DueDate != nil:
			due := *in.DueDate
			t.DueDate = &due
		}
		if in.TagIDs != nil {
			t.Tags = tags
		}
		if in.Status != nil {
			t.SetStatus(*in.Status, now)
		}
		t.Touch(now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}

	if uc.logger != nil && task.Status != previous {
		uc.logger.Info(0, "task", fmt.Sprintf("#%d status: %s -> %s", task.ID, previous, task.Status))
	}

	return &UpdateTaskOutput{Task: task, PreviousStatus: previous}, nil
}
