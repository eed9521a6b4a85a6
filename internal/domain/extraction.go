package domain

import (
	"context"
	"time"
)

// IntentKind identifies the kind of mutation an extractor asks for.
type IntentKind string

const (
	IntentCreateTask   IntentKind = "create"
	IntentCompleteTask IntentKind = "complete"
	IntentUpdateTask   IntentKind = "update"
)

// IntendedAction is one mutation proposed by an extractor.
// Which fields are meaningful depends on Kind:
//   - create: Title (required), Description, AssigneeName, Priority, DueDate
//   - complete: TaskID
//   - update: TaskID plus any of Title, Description, Status, Priority, AssigneeName, DueDate
//
// Note is a free-text explanation carried into the audit record.
type IntendedAction struct {
	TaskID       *int64
	Title        *string
	Description  *string
	AssigneeName *string
	Priority     *string
	Status       *string
	DueDate      *time.Time
	Note         string
	Kind         IntentKind
}

// UserRef is the slice of a user an extractor needs to resolve names.
type UserRef struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

// TaskRef describes an open task an extractor may refer back to.
type TaskRef struct {
	Title        string `json:"title"`
	Status       Status `json:"status"`
	AssigneeName string `json:"assignee_name,omitempty"`
	ID           int64  `json:"id"`
}

// ExtractionRequest is the input handed to an extractor.
type ExtractionRequest struct {
	Text      string
	Users     []UserRef
	OpenTasks []TaskRef
}

// ExtractionResult is the ordered list of intended actions plus a meeting summary.
type ExtractionResult struct {
	Summary string
	Actions []IntendedAction
}

// Extractor turns transcript text into intended task actions.
// Any returned error is treated as an extraction failure.
type Extractor interface {
	Extract(ctx context.Context, req ExtractionRequest) (*ExtractionResult, error)
}
