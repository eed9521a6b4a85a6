// Package extractor provides the backends that turn transcript text into intended task actions.
package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/runoshun/taskboard/internal/domain"
)

// DueDateLayout is the date format used for due dates on the wire.
const DueDateLayout = "2006-01-02"

// payload is the JSON document both backends return.
// actions is the current format; new_tasks and task_updates are the older
// two-list format and are appended after actions in that order.
type payload struct {
	Summary     string              `json:"summary"`
	Actions     []actionPayload     `json:"actions"`
	NewTasks    []actionPayload     `json:"new_tasks"`
	TaskUpdates []taskUpdatePayload `json:"task_updates"`
}

type actionPayload struct {
	TaskID       *taskID `json:"task_id"`
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	AssigneeName *string `json:"assignee_name"`
	Priority     *string `json:"priority"`
	DueDate      *string `json:"due_date"`
	Status       *string `json:"status"`
	Type         string  `json:"type"`
	Note         string  `json:"note"`
}

type taskUpdatePayload struct {
	TaskID *taskID `json:"task_id"`
	Action string  `json:"action"`
	Note   string  `json:"note"`
}

// taskID accepts 12, "12" and "#12".
type taskID int64

func (id *taskID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid task_id %s", data)
	}
	*id = taskID(n)
	return nil
}

func (id *taskID) ptr() *int64 {
	if id == nil {
		return nil
	}
	v := int64(*id)
	return &v
}

// Decode parses an extraction payload into an ExtractionResult.
// Intended actions keep the order in which they appear.
func Decode(data []byte) (*domain.ExtractionResult, error) {
	var p payload
	if err := json.Unmarshal(bytes.TrimSpace(data), &p); err != nil {
		return nil, fmt.Errorf("decode extraction payload: %w", err)
	}

	result := &domain.ExtractionResult{Summary: strings.TrimSpace(p.Summary)}
	for _, a := range p.Actions {
		result.Actions = append(result.Actions, a.intent(intentKind(a.Type)))
	}
	for _, a := range p.NewTasks {
		result.Actions = append(result.Actions, a.intent(domain.IntentCreateTask))
	}
	for _, u := range p.TaskUpdates {
		result.Actions = append(result.Actions, u.intent())
	}
	return result, nil
}

func (a actionPayload) intent(kind domain.IntentKind) domain.IntendedAction {
	return domain.IntendedAction{
		Kind:         kind,
		TaskID:       a.TaskID.ptr(),
		Title:        a.Title,
		Description:  a.Description,
		AssigneeName: a.AssigneeName,
		Priority:     a.Priority,
		Status:       a.Status,
		DueDate:      parseDueDate(a.DueDate),
		Note:         a.Note,
	}
}

func (u taskUpdatePayload) intent() domain.IntendedAction {
	action := domain.IntendedAction{TaskID: u.TaskID.ptr(), Note: u.Note}
	switch strings.ToLower(strings.TrimSpace(u.Action)) {
	case "completed", "complete":
		action.Kind = domain.IntentCompleteTask
	case "blocked":
		blocked := string(domain.StatusBlocked)
		action.Kind = domain.IntentUpdateTask
		action.Status = &blocked
	default:
		action.Kind = domain.IntentUpdateTask
	}
	return action
}

// intentKind maps the wire type to an IntentKind. Unknown types are passed
// through so that the processor can report them.
func intentKind(t string) domain.IntentKind {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "create", "created", "create_task":
		return domain.IntentCreateTask
	case "complete", "completed", "complete_task":
		return domain.IntentCompleteTask
	case "update", "updated", "update_task":
		return domain.IntentUpdateTask
	default:
		return domain.IntentKind(t)
	}
}

// parseDueDate accepts YYYY-MM-DD or RFC 3339. Anything else is dropped.
func parseDueDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	for _, layout := range []string{DueDateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
