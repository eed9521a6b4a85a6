// Package shared holds helpers used by several use cases.
package shared

import (
	"context"
	"fmt"

	"github.com/runoshun/taskboard/internal/domain"
)

// GetTask retrieves a task by ID and returns domain.ErrTaskNotFound if not found.
// This centralizes the common pattern of:
//
//	task, err := repo.Get(ctx, taskID)
//	if err != nil { return nil, fmt.Errorf("get task: %w", err) }
//	if task == nil { return nil, domain.ErrTaskNotFound }
func GetTask(ctx context.Context, repo domain.TaskRepository, taskID int64) (*domain.Task, error) {
	task, err := repo.Get(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// GetTranscript retrieves a transcript by ID and returns domain.ErrTranscriptNotFound if not found.
func GetTranscript(ctx context.Context, repo domain.TranscriptRepository, id int64) (*domain.Transcript, error) {
	tr, err := repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	if tr == nil {
		return nil, domain.ErrTranscriptNotFound
	}
	return tr, nil
}

// GetUser retrieves a user by ID and returns domain.ErrUserNotFound if not found.
func GetUser(ctx context.Context, repo domain.UserRepository, id int64) (*domain.User, error) {
	user, err := repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// GetProject retrieves a project by ID and returns domain.ErrProjectNotFound if not found.
func GetProject(ctx context.Context, repo domain.ProjectRepository, id int64) (*domain.Project, error) {
	project, err := repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return nil, domain.ErrProjectNotFound
	}
	return project, nil
}

// GetGoal retrieves a goal by ID and returns domain.ErrGoalNotFound if not found.
func GetGoal(ctx context.Context, repo domain.GoalRepository, id int64) (*domain.Goal, error) {
	goal, err := repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	if goal == nil {
		return nil, domain.ErrGoalNotFound
	}
	return goal, nil
}
