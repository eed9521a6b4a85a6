// Package domain contains core business entities and interfaces.
package domain

import (
	"slices"
	"strings"
	"time"
)

// Task represents a unit of work tracked on the board.
// Fields are ordered to minimize memory padding.
type Task struct {
	CreatedAt   time.Time  `json:"created_at"`             // Creation time (immutable)
	UpdatedAt   time.Time  `json:"updated_at"`             // Time of the last mutation
	AssigneeID  *int64     `json:"assignee_id"`            // Assigned user (nil = unassigned)
	ProjectID   *int64     `json:"project_id"`             // Owning project (nil = none)
	DueDate     *time.Time `json:"due_date"`               // Due date (optional)
	CompletedAt *time.Time `json:"completed_at"`           // Set iff Status == done
	Title       string     `json:"title"`                  // Title (required)
	Description string     `json:"description,omitempty"`  // Description (optional)
	Status      Status     `json:"status"`                 // Workflow state
	Priority    Priority   `json:"priority"`               // Urgency
	Tags        []Tag      `json:"tags"`                   // Tag set, sorted by name
	ID          int64      `json:"id"`                     // Task ID
	CreatorID   int64      `json:"creator_id"`             // Creating user (required)
}

// SetStatus changes the status and maintains the completion timestamp.
// Entering done stamps CompletedAt with now; leaving done clears it.
// Re-setting done on a task that is already done keeps the original timestamp.
func (t *Task) SetStatus(status Status, now time.Time) {
	wasDone := t.Status.IsDone()
	t.Status = status
	if !status.IsDone() {
		t.CompletedAt = nil
		return
	}
	if !wasDone || t.CompletedAt == nil {
		completed := now
		t.CompletedAt = &completed
	}
}

// Touch records a mutation at now. UpdatedAt never moves before CreatedAt.
func (t *Task) Touch(now time.Time) {
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	t.UpdatedAt = now
}

// IsAssigned returns true if the task has an assignee.
func (t *Task) IsAssigned() bool {
	return t.AssigneeID != nil
}

// TagIDs returns the IDs of the task's tags.
func (t *Task) TagIDs() []int64 {
	ids := make([]int64, 0, len(t.Tags))
	for _, tag := range t.Tags {
		ids = append(ids, tag.ID)
	}
	return ids
}

// CheckInvariants reports the first violated task invariant, or nil.
func (t *Task) CheckInvariants() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if t.Status.IsDone() != (t.CompletedAt != nil) {
		return ErrCompletionMismatch
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return ErrTimestampOrder
	}
	return nil
}

// TaskFilter specifies criteria for listing tasks.
// All set fields are ANDed; the zero value matches every task.
type TaskFilter struct {
	AssigneeID *int64  // Only tasks assigned to this user
	ProjectID  *int64  // Only tasks in this project
	Status     *Status // Only tasks in this status
}

// Matches reports whether the task satisfies the filter.
func (f TaskFilter) Matches(t *Task) bool {
	if f.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *f.AssigneeID) {
		return false
	}
	if f.ProjectID != nil && (t.ProjectID == nil || *t.ProjectID != *f.ProjectID) {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	return true
}

// UniqueIDs returns ids with duplicates removed, sorted ascending.
func UniqueIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// SortTasksNewestFirst orders tasks by creation time descending, then by ID descending.
func SortTasksNewestFirst(tasks []*Task) {
	slices.SortFunc(tasks, func(a, b *Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		default:
			return 0
		}
	})
}
