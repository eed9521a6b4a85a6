package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain error wraps exactly one of these, so callers can
// classify failures with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrExtraction = errors.New("extraction failed")
)

func kindError(kind error, msg string) error {
	return fmt.Errorf("%w: %s", kind, msg)
}

// Validation errors.
var (
	ErrEmptyTitle         = kindError(ErrValidation, "title cannot be empty")
	ErrEmptyName          = kindError(ErrValidation, "name cannot be empty")
	ErrEmptyTranscript    = kindError(ErrValidation, "transcript text cannot be empty")
	ErrInvalidStatus      = kindError(ErrValidation, "invalid status")
	ErrInvalidPriority    = kindError(ErrValidation, "invalid priority")
	ErrInvalidGoalStatus  = kindError(ErrValidation, "invalid goal status")
	ErrNoFieldsToUpdate   = kindError(ErrValidation, "no fields to update")
	ErrUnknownAssignee    = kindError(ErrValidation, "assignee does not exist")
	ErrUnknownCreator     = kindError(ErrValidation, "creator does not exist")
	ErrUnknownOwner       = kindError(ErrValidation, "owner does not exist")
	ErrUnknownProject     = kindError(ErrValidation, "project does not exist")
	ErrUnknownTag         = kindError(ErrValidation, "tag does not exist")
	ErrUnknownTaskRef     = kindError(ErrValidation, "referenced task does not exist")
	ErrMissingTaskRef     = kindError(ErrValidation, "action does not reference a task")
	ErrUnknownIntent      = kindError(ErrValidation, "unknown action type")
	ErrNoCreator          = kindError(ErrValidation, "no user available to own extracted tasks")
	ErrInvalidReference   = kindError(ErrValidation, "reference to a nonexistent entity")
	ErrCompletionMismatch = kindError(ErrValidation, "completed_at must be set iff status is done")
	ErrTimestampOrder     = kindError(ErrValidation, "updated_at precedes created_at")
	ErrProcessedMismatch  = kindError(ErrValidation, "processed_at must be set iff processed")
	ErrInvalidConfig      = kindError(ErrValidation, "invalid config")
)

// Not found errors.
var (
	ErrTaskNotFound       = kindError(ErrNotFound, "task not found")
	ErrUserNotFound       = kindError(ErrNotFound, "user not found")
	ErrProjectNotFound    = kindError(ErrNotFound, "project not found")
	ErrTagNotFound        = kindError(ErrNotFound, "tag not found")
	ErrGoalNotFound       = kindError(ErrNotFound, "goal not found")
	ErrTranscriptNotFound = kindError(ErrNotFound, "transcript not found")
)

// Conflict errors.
var (
	ErrUserExists        = kindError(ErrConflict, "user already exists")
	ErrProjectExists     = kindError(ErrConflict, "project already exists")
	ErrTagExists         = kindError(ErrConflict, "tag already exists")
	ErrDuplicate         = kindError(ErrConflict, "entity already exists")
	ErrAlreadyProcessed  = kindError(ErrConflict, "transcript already processed")
	ErrTranscriptBusy    = kindError(ErrConflict, "transcript is being processed")
	ErrClaimLost         = kindError(ErrConflict, "processing claim taken over by another pass")
	ErrConfigExists      = kindError(ErrConflict, "config file already exists")
)

// ExtractionError wraps a failure of the extraction capability.
func ExtractionError(err error) error {
	return fmt.Errorf("%w: %w", ErrExtraction, err)
}
