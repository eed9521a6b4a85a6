package domain

import (
	"cmp"
	"fmt"
	"slices"
)

// AssigneeCount is the number of tasks assigned to one user.
type AssigneeCount struct {
	Name   string `json:"name"`
	UserID int64  `json:"user_id"`
	Count  int    `json:"count"`
}

// Stats is a read-only projection of the board at one point in time.
type Stats struct {
	ByStatus   map[Status]int   `json:"by_status"`   // Every status present, zero when empty
	ByPriority map[Priority]int `json:"by_priority"` // Every priority present, zero when empty
	ByAssignee []AssigneeCount  `json:"by_assignee"` // Unassigned tasks are excluded
	Total      int              `json:"total"`
}

// ComputeStats partitions tasks by status, priority and assignee.
// names maps user IDs to display names; missing names are left empty.
func ComputeStats(tasks []*Task, names map[int64]string) Stats {
	stats := Stats{
		ByStatus:   make(map[Status]int, len(AllStatuses())),
		ByPriority: make(map[Priority]int, len(AllPriorities())),
		Total:      len(tasks),
	}
	for _, s := range AllStatuses() {
		stats.ByStatus[s] = 0
	}
	for _, p := range AllPriorities() {
		stats.ByPriority[p] = 0
	}

	perUser := make(map[int64]int)
	for _, t := range tasks {
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
		if t.AssigneeID != nil {
			perUser[*t.AssigneeID]++
		}
	}

	for id, n := range perUser {
		stats.ByAssignee = append(stats.ByAssignee, AssigneeCount{UserID: id, Name: names[id], Count: n})
	}
	slices.SortFunc(stats.ByAssignee, func(a, b AssigneeCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return stats
}

// Dashboard is the flat stats shape consumed by the board front end.
type Dashboard struct {
	ByStatus   map[Status]int   `json:"tasks_by_status"`
	ByPriority map[Priority]int `json:"tasks_by_priority"`
	ByUser     map[string]int   `json:"tasks_by_user"`
	Total      int              `json:"total_tasks"`
	Todo       int              `json:"todo_tasks"`
	InProgress int              `json:"in_progress_tasks"`
	InReview   int              `json:"in_review_tasks"`
	Completed  int              `json:"completed_tasks"`
	Blocked    int              `json:"blocked_tasks"`
}

// Dashboard flattens s. Assignees without a resolvable name are keyed by "user-<id>".
func (s Stats) Dashboard() Dashboard {
	d := Dashboard{
		ByStatus:   s.ByStatus,
		ByPriority: s.ByPriority,
		ByUser:     make(map[string]int, len(s.ByAssignee)),
		Total:      s.Total,
		Todo:       s.ByStatus[StatusTodo],
		InProgress: s.ByStatus[StatusInProgress],
		InReview:   s.ByStatus[StatusInReview],
		Completed:  s.ByStatus[StatusDone],
		Blocked:    s.ByStatus[StatusBlocked],
	}
	for _, a := range s.ByAssignee {
		name := a.Name
		if name == "" {
			name = fmt.Sprintf("user-%d", a.UserID)
		}
		d.ByUser[name] += a.Count
	}
	return d
}
