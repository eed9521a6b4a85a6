package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/taskboard/internal/domain"
)

// ComputeStatsOutput contains the dashboard statistics.
type ComputeStatsOutput struct {
	Stats domain.Stats
}

// ComputeStats is the use case for the dashboard statistics projection.
// It reads a single snapshot of all tasks and never writes.
type ComputeStats struct {
	tasks domain.TaskRepository
	users domain.UserRepository
}

// NewComputeStats creates a new ComputeStats use case.
func NewComputeStats(tasks domain.TaskRepository, users domain.UserRepository) *ComputeStats {
	return &ComputeStats{tasks: tasks, users: users}
}

// Execute computes counts by status, priority and assignee.
func (uc *ComputeStats) Execute(ctx context.Context) (*ComputeStatsOutput, error) {
	tasks, err := uc.tasks.List(ctx, domain.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	// Users are never deleted, so names resolved after the snapshot still match it.
	users, err := uc.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	return &ComputeStatsOutput{Stats: domain.ComputeStats(tasks, names)}, nil
}
