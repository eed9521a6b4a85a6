package domain

import "strings"

// Status represents the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"        // Created, not started
	StatusInProgress Status = "in_progress" // Being worked on
	StatusInReview   Status = "in_review"   // Work finished, awaiting review
	StatusDone       Status = "done"        // Completed
	StatusBlocked    Status = "blocked"     // Waiting on something external
)

// AllStatuses returns all valid status values in board column order.
func AllStatuses() []Status {
	return []Status{
		StatusTodo,
		StatusInProgress,
		StatusInReview,
		StatusDone,
		StatusBlocked,
	}
}

// ParseStatus normalizes s and returns the matching status.
// Returns ErrInvalidStatus if s is not a known status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusInReview, StatusDone, StatusBlocked:
		return true
	default:
		return false
	}
}

// CanTransitionTo returns true if the status can transition to the target status.
// The board is not a linear pipeline: every valid status is reachable from every other one.
func (s Status) CanTransitionTo(target Status) bool {
	return s.IsValid() && target.IsValid()
}

// IsDone returns true if the status is the completed state.
func (s Status) IsDone() bool {
	return s == StatusDone
}

// IsOpen returns true if work on the task is still outstanding.
func (s Status) IsOpen() bool {
	return s.IsValid() && s != StatusDone
}

// Display returns a human-readable representation of the status.
func (s Status) Display() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusInReview:
		return "In Review"
	case StatusDone:
		return "Done"
	case StatusBlocked:
		return "Blocked"
	default:
		return string(s)
	}
}
