package domain

import "time"

// TranscriptState is the processing lifecycle state of a meeting transcript.
//
//	uploaded → processing → processed (terminal)
//	               ↓  ↑
//	             failed (retryable)
type TranscriptState string

const (
	TranscriptUploaded   TranscriptState = "uploaded"   // Stored, never processed
	TranscriptProcessing TranscriptState = "processing" // A processing pass holds the claim
	TranscriptProcessed  TranscriptState = "processed"  // Processed successfully (terminal)
	TranscriptFailed     TranscriptState = "failed"     // Last pass failed; may be retried
)

// IsValid returns true if the state is a known value.
func (s TranscriptState) IsValid() bool {
	switch s {
	case TranscriptUploaded, TranscriptProcessing, TranscriptProcessed, TranscriptFailed:
		return true
	default:
		return false
	}
}

// Transcript holds raw meeting notes and the outcome of processing them.
// Fields are ordered to minimize memory padding.
type Transcript struct {
	CreatedAt           time.Time          `json:"created_at"`
	ProcessedAt         *time.Time         `json:"processed_at"`                    // Set exactly once, on success
	ProcessingStartedAt *time.Time         `json:"processing_started_at,omitempty"` // Start or last renewal of the claim
	ProcessingRunID     string             `json:"processing_run_id,omitempty"`     // Pass holding the claim
	Title               string             `json:"title"`
	Text                string             `json:"transcript"`
	Summary             string             `json:"summary,omitempty"`
	LastError           string             `json:"last_error,omitempty"` // Reason of the last failed pass
	State               TranscriptState    `json:"state"`
	Actions             []TranscriptAction `json:"actions"`
	ID                  int64              `json:"id"`
	Processed           bool               `json:"processed"`
}

// BeginProcessing claims the transcript for the processing pass runID.
// A claim held by another pass is honored until it is older than staleAfter;
// a non-positive staleAfter never expires claims.
func (t *Transcript) BeginProcessing(runID string, now time.Time, staleAfter time.Duration) error {
	if t.Processed {
		return ErrAlreadyProcessed
	}
	if t.State == TranscriptProcessing && t.ProcessingStartedAt != nil {
		if staleAfter <= 0 || now.Sub(*t.ProcessingStartedAt) < staleAfter {
			return ErrTranscriptBusy
		}
	}
	started := now
	t.State = TranscriptProcessing
	t.ProcessingStartedAt = &started
	t.ProcessingRunID = runID
	return nil
}

// HoldsClaim returns ErrClaimLost unless runID owns the current processing claim.
func (t *Transcript) HoldsClaim(runID string) error {
	if t.State != TranscriptProcessing || t.ProcessingRunID != runID {
		return ErrClaimLost
	}
	return nil
}

// RenewClaim restarts the stale timer of a claim still owned by runID.
func (t *Transcript) RenewClaim(runID string, now time.Time) error {
	if err := t.HoldsClaim(runID); err != nil {
		return err
	}
	renewed := now
	t.ProcessingStartedAt = &renewed
	return nil
}

// MarkProcessed finishes the successful pass runID.
func (t *Transcript) MarkProcessed(runID, summary string, now time.Time) error {
	if err := t.HoldsClaim(runID); err != nil {
		return err
	}
	processed := now
	t.Processed = true
	t.ProcessedAt = &processed
	t.Summary = summary
	t.State = TranscriptProcessed
	t.LastError = ""
	t.releaseClaim()
	return nil
}

// MarkFailed releases the claim of the failed pass runID. The transcript stays unprocessed.
func (t *Transcript) MarkFailed(runID, reason string) error {
	if err := t.HoldsClaim(runID); err != nil {
		return err
	}
	t.State = TranscriptFailed
	t.LastError = reason
	t.releaseClaim()
	return nil
}

func (t *Transcript) releaseClaim() {
	t.ProcessingStartedAt = nil
	t.ProcessingRunID = ""
}

// CheckInvariants reports the first violated transcript invariant, or nil.
func (t *Transcript) CheckInvariants() error {
	if t.Processed != (t.ProcessedAt != nil) {
		return ErrProcessedMismatch
	}
	if t.Processed != (t.State == TranscriptProcessed) {
		return ErrProcessedMismatch
	}
	return nil
}

// ActionType classifies a recorded transcript action. The set is open.
type ActionType string

const (
	ActionCreated   ActionType = "created"
	ActionCompleted ActionType = "completed"
	ActionUpdated   ActionType = "updated"
	ActionBlocked   ActionType = "blocked"
)

// TranscriptAction is an immutable audit record of one task mutation caused by processing.
// TaskID keeps pointing at the task even after the task is deleted.
type TranscriptAction struct {
	CreatedAt    time.Time  `json:"created_at"`
	TaskID       *int64     `json:"task_id"`
	Type         ActionType `json:"action_type"`
	Description  string     `json:"description"`
	RunID        string     `json:"run_id"` // Processing pass that produced the record
	ID           int64      `json:"id"`
	TranscriptID int64      `json:"transcript_id"`
}
