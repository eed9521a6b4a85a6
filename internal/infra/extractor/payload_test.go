package extractor

import (
	"testing"
	"time"

	"github.com/runoshun/taskboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Actions(t *testing.T) {
	// Setup
	data := []byte(`{
	  "summary": "  Planning sync ",
	  "actions": [
	    {"type": "create", "title": "Write docs", "assignee_name": "Alice", "priority": "high", "due_date": "2024-03-15", "note": "from standup"},
	    {"type": "complete", "task_id": "#7"},
	    {"type": "update", "task_id": 3, "status": "blocked"}
	  ]
	}`)

	// Execute
	result, err := Decode(data)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Planning sync", result.Summary)
	require.Len(t, result.Actions, 3)

	create := result.Actions[0]
	assert.Equal(t, domain.IntentCreateTask, create.Kind)
	assert.Equal(t, "Write docs", *create.Title)
	assert.Equal(t, "Alice", *create.AssigneeName)
	assert.Equal(t, "high", *create.Priority)
	require.NotNil(t, create.DueDate)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *create.DueDate)
	assert.Equal(t, "from standup", create.Note)
	assert.Nil(t, create.TaskID)

	assert.Equal(t, domain.IntentCompleteTask, result.Actions[1].Kind)
	assert.Equal(t, int64(7), *result.Actions[1].TaskID)

	assert.Equal(t, domain.IntentUpdateTask, result.Actions[2].Kind)
	assert.Equal(t, int64(3), *result.Actions[2].TaskID)
	assert.Equal(t, "blocked", *result.Actions[2].Status)
}

func TestDecode_LegacyLists(t *testing.T) {
	// Setup
	data := []byte(`{
	  "summary": "Weekly",
	  "new_tasks": [{"title": "Ship release", "priority": "urgent"}],
	  "task_updates": [
	    {"task_id": 4, "action": "completed", "note": "done on Friday"},
	    {"task_id": "5", "action": "blocked"},
	    {"task_id": 6, "action": "updated", "note": "scope changed"}
	  ]
	}`)

	// Execute
	result, err := Decode(data)

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Actions, 4)
	assert.Equal(t, domain.IntentCreateTask, result.Actions[0].Kind)
	assert.Equal(t, "Ship release", *result.Actions[0].Title)

	assert.Equal(t, domain.IntentCompleteTask, result.Actions[1].Kind)
	assert.Equal(t, "done on Friday", result.Actions[1].Note)

	assert.Equal(t, domain.IntentUpdateTask, result.Actions[2].Kind)
	require.NotNil(t, result.Actions[2].Status)
	assert.Equal(t, string(domain.StatusBlocked), *result.Actions[2].Status)

	assert.Equal(t, domain.IntentUpdateTask, result.Actions[3].Kind)
	assert.Nil(t, result.Actions[3].Status)
	assert.Equal(t, "scope changed", result.Actions[3].Note)
}

func TestDecode_ActionsBeforeLegacy(t *testing.T) {
	// Setup
	data := []byte(`{"task_updates": [{"task_id": 1, "action": "completed"}], "actions": [{"type": "create", "title": "A"}]}`)

	// Execute
	result, err := Decode(data)

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Actions, 2)
	assert.Equal(t, domain.IntentCreateTask, result.Actions[0].Kind)
	assert.Equal(t, domain.IntentCompleteTask, result.Actions[1].Kind)
}

func TestDecode_UnknownTypePassesThrough(t *testing.T) {
	result, err := Decode([]byte(`{"actions": [{"type": "archive", "task_id": 2}]}`))

	require.NoError(t, err)
	require.Len(t, result.Actions, 1)
	assert.Equal(t, domain.IntentKind("archive"), result.Actions[0].Kind)
}

func TestDecode_DueDates(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *time.Time
	}{
		{name: "date", in: `"2024-05-01"`, want: ptrTime(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))},
		{name: "rfc3339", in: `"2024-05-01T09:30:00+02:00"`, want: ptrTime(time.Date(2024, 5, 1, 7, 30, 0, 0, time.UTC))},
		{name: "null string", in: `"null"`},
		{name: "json null", in: `null`},
		{name: "garbage", in: `"next friday"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Decode([]byte(`{"actions": [{"type": "create", "title": "x", "due_date": ` + tt.in + `}]}`))

			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Actions[0].DueDate)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "not json", in: "Sure! Here are the tasks"},
		{name: "bad task id", in: `{"actions": [{"type": "complete", "task_id": "abc"}]}`},
		{name: "empty", in: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	// Setup
	req := domain.ExtractionRequest{
		Text:  "Alice will write the docs.",
		Users: []domain.UserRef{{ID: 1, Name: "Alice"}},
		OpenTasks: []domain.TaskRef{
			{ID: 9, Title: "Fix login", Status: domain.StatusInProgress, AssigneeName: "Alice"},
		},
	}

	// Execute
	prompt := buildPrompt(req)

	// Assert
	assert.Contains(t, prompt, "- Alice (ID: 1)")
	assert.Contains(t, prompt, "Fix login")
	assert.Contains(t, prompt, "#9")
	assert.Contains(t, prompt, "Alice will write the docs.")
	assert.Contains(t, prompt, `"actions"`)
}

func TestBuildPrompt_Empty(t *testing.T) {
	prompt := buildPrompt(domain.ExtractionRequest{Text: "hello"})

	assert.Contains(t, prompt, "No team members")
	assert.Contains(t, prompt, "No active tasks")
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
