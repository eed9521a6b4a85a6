package domain

import (
	"strings"
	"time"
)

// GoalStatus represents the state of a long-horizon goal.
// Goals never change status on their own; every transition is a user edit.
type GoalStatus string

const (
	GoalNotStarted GoalStatus = "not_started"
	GoalInProgress GoalStatus = "in_progress"
	GoalAchieved   GoalStatus = "achieved"
	GoalAbandoned  GoalStatus = "abandoned"
)

// AllGoalStatuses returns all valid goal statuses.
func AllGoalStatuses() []GoalStatus {
	return []GoalStatus{GoalNotStarted, GoalInProgress, GoalAchieved, GoalAbandoned}
}

// ParseGoalStatus normalizes s and returns the matching goal status.
func ParseGoalStatus(s string) (GoalStatus, error) {
	st := GoalStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", ErrInvalidGoalStatus
	}
	return st, nil
}

// IsValid returns true if the goal status is a known valid value.
func (s GoalStatus) IsValid() bool {
	switch s {
	case GoalNotStarted, GoalInProgress, GoalAchieved, GoalAbandoned:
		return true
	default:
		return false
	}
}

// Goal is a coarse objective tracked independently of tasks.
// Fields are ordered to minimize memory padding.
type Goal struct {
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	TargetDate  *time.Time `json:"target_date"`
	OwnerID     *int64     `json:"owner_id"`
	CompletedAt *time.Time `json:"completed_at"` // Set while Status == achieved
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      GoalStatus `json:"status"`
	ID          int64      `json:"id"`
}

// SetStatus changes the goal status and keeps CompletedAt in step with achieved.
func (g *Goal) SetStatus(status GoalStatus, now time.Time) {
	wasAchieved := g.Status == GoalAchieved
	g.Status = status
	if status != GoalAchieved {
		g.CompletedAt = nil
		return
	}
	if !wasAchieved || g.CompletedAt == nil {
		completed := now
		g.CompletedAt = &completed
	}
}

// Touch records a mutation at now.
func (g *Goal) Touch(now time.Time) {
	if now.Before(g.CreatedAt) {
		now = g.CreatedAt
	}
	g.UpdatedAt = now
}
