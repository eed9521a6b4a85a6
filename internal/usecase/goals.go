package usecase

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/usecase/shared"
)

// CreateGoalInput contains the parameters for creating a goal.
type CreateGoalInput struct {
	OwnerID     *int64
	TargetDate  *time.Time
	Title       string
	Description string
	Status      domain.GoalStatus // Empty = not_started
}

// CreateGoal is the use case for creating a goal.
type CreateGoal struct {
	goals domain.GoalRepository
	refs  references
	clock domain.Clock
}

// NewCreateGoal creates a new CreateGoal use case.
func NewCreateGoal(goals domain.GoalRepository, users domain.UserRepository, clock domain.Clock) *CreateGoal {
	return &CreateGoal{goals: goals, refs: references{users: users}, clock: clock}
}

// Execute creates the goal.
func (uc *CreateGoal) Execute(ctx context.Context, in CreateGoalInput) (*domain.Goal, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}
	status := in.Status
	if status == "" {
		status = domain.GoalNotStarted
	}
	if !status.IsValid() {
		return nil, domain.ErrInvalidGoalStatus
	}
	if in.OwnerID != nil {
		if err := uc.refs.user(ctx, *in.OwnerID, domain.ErrUnknownOwner); err != nil {
			return nil, err
		}
	}

	now := uc.clock.Now()
	goal := &domain.Goal{
		Title:       title,
		Description: in.Description,
		OwnerID:     in.OwnerID,
		TargetDate:  in.TargetDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	goal.SetStatus(status, now)
	if err := uc.goals.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("save goal: %w", err)
	}
	return goal, nil
}

// UpdateGoalInput contains the parameters for patching a goal.
type UpdateGoalInput struct {
	Title           *string
	Description     *string
	Status          *domain.GoalStatus
	OwnerID         *int64
	TargetDate      *time.Time
	GoalID          int64
	ClearOwner      bool
	ClearTargetDate bool
}

func (in UpdateGoalInput) isEmpty() bool {
	return in.Title == nil && in.Description == nil && in.Status == nil &&
		in.OwnerID == nil && in.TargetDate == nil && !in.ClearOwner && !in.ClearTargetDate
}

// UpdateGoal is the use case for patching a goal.
type UpdateGoal struct {
	goals domain.GoalRepository
	refs  references
	clock domain.Clock
}

// NewUpdateGoal creates a new UpdateGoal use case.
func NewUpdateGoal(goals domain.GoalRepository, users domain.UserRepository, clock domain.Clock) *UpdateGoal {
	return &UpdateGoal{goals: goals, refs: references{users: users}, clock: clock}
}

// Execute applies the patch atomically.
func (uc *UpdateGoal) Execute(ctx context.Context, in UpdateGoalInput) (*domain.Goal, error) {
	if in.isEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	var title string
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, domain.ErrEmptyTitle
		}
	}
	if in.Status != nil && !in.Status.IsValid() {
		return nil, domain.ErrInvalidGoalStatus
	}
	if in.OwnerID != nil && !in.ClearOwner {
		if err := uc.refs.user(ctx, *in.OwnerID, domain.ErrUnknownOwner); err != nil {
			return nil, err
		}
	}

	now := uc.clock.Now()
	goal, err := uc.goals.Update(ctx, in.GoalID, func(g *domain.Goal) error {
		if in.Title != nil {
			g.Title = title
		}
		if in.Description != nil {
			g.Description = *in.Description
		}
		switch {
		case in.ClearOwner:
			g.OwnerID = nil
		case in.OwnerID != nil:
			id := *in.OwnerID
			g.OwnerID = &id
		}
		switch {
		case in.ClearTargetDate:
			g.TargetDate = nil
		case in.TargetDate != nil:
			d := *in.TargetDate
			g.TargetDate = &d
		}
		if in.Status != nil {
			g.SetStatus(*in.Status, now)
		}
		g.Touch(now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	if goal == nil {
		return nil, domain.ErrGoalNotFound
	}
	return goal, nil
}

// ListGoals is the use case for listing goals newest first.
type ListGoals struct {
	goals domain.GoalRepository
}

// NewListGoals creates a new ListGoals use case.
func NewListGoals(goals domain.GoalRepository) *ListGoals {
	return &ListGoals{goals: goals}
}

// Execute lists all goals.
func (uc *ListGoals) Execute(ctx context.Context) ([]*domain.Goal, error) {
	goals, err := uc.goals.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	slices.SortStableFunc(goals, func(a, b *domain.Goal) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return goals, nil
}

// ShowGoal is the use case for retrieving one goal.
type ShowGoal struct {
	goals domain.GoalRepository
}

// NewShowGoal creates a new ShowGoal use case.
func NewShowGoal(goals domain.GoalRepository) *ShowGoal {
	return &ShowGoal{goals: goals}
}

// Execute returns the goal or domain.ErrGoalNotFound.
func (uc *ShowGoal) Execute(ctx context.Context, id int64) (*domain.Goal, error) {
	return shared.GetGoal(ctx, uc.goals, id)
}

// DeleteGoal is the use case for deleting a goal.
type DeleteGoal struct {
	goals domain.GoalRepository
}

// NewDeleteGoal creates a new DeleteGoal use case.
func NewDeleteGoal(goals domain.GoalRepository) *DeleteGoal {
	return &DeleteGoal{goals: goals}
}

// Execute deletes the goal or returns domain.ErrGoalNotFound.
func (uc *DeleteGoal) Execute(ctx context.Context, id int64) error {
	if _, err := shared.GetGoal(ctx, uc.goals, id); err != nil {
		return err
	}
	if err := uc.goals.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrGoalNotFound) {
			return err
		}
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}
