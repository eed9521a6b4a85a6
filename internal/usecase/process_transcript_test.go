package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (b *board) processTranscript(ex domain.Extractor, opts ProcessTranscriptOptions) *ProcessTranscript {
	uc := NewProcessTranscript(b.transcripts, b.tasks, b.users, ex, b.createTask(), b.updateTask(), b.clock, b.logger, opts)
	uc.SetRunIDFunc(func() string { return "run-1" })
	return uc
}

func (b *board) uploadTranscript(t *testing.T, text string) *domain.Transcript {
	t.Helper()
	out, err := NewCreateTranscript(b.transcripts, b.clock, b.logger).Execute(context.Background(), CreateTranscriptInput{
		Title: "Standup",
		Text:  text,
	})
	require.NoError(t, err)
	return out.Transcript
}

func createIntent(title, assignee string) domain.IntendedAction {
	a := domain.IntendedAction{Kind: domain.IntentCreateTask, Title: &title}
	if assignee != "" {
		a.AssigneeName = &assignee
	}
	return a
}

func TestProcessTranscript_Execute_ReadmeScenario(t *testing.T) {
	// Setup
	b := newBoard()
	alice := b.users.Add("Alice")
	tr := b.uploadTranscript(t, "Alice will write the README")
	ex := &testutil.MockExtractor{Result: &domain.ExtractionResult{
		Summary: "README work assigned.",
		Actions: []domain.IntendedAction{createIntent("Write README", "Alice")},
	}}

	// Execute
	out, err := b.processTranscript(ex, ProcessTranscriptOptions{}).Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})

	// Assert
	require.NoError(t, err)
	require.Len(t, b.tasks.Tasks, 1)
	task := b.tasks.Tasks[out.CreatedTaskIDs[0]]
	assert.Equal(t, "Write README", task.Title)
	assert.Equal(t, alice, *task.AssigneeID)
	assert.Equal(t, alice, task.CreatorID)

	require.Len(t, out.Transcript.Actions, 1)
	action := out.Transcript.Actions[0]
	assert.Equal(t, domain.ActionCreated, action.Type)
	assert.Equal(t, task.ID, *action.TaskID)
	assert.Equal(t, "run-1", action.RunID)
	assert.Equal(t, "Created task: Write README", action.Description)

	assert.True(t, out.Transcript.Processed)
	assert.Equal(t, domain.TranscriptProcessed, out.Transcript.State)
	assert.Equal(t, "README work assigned.", out.Transcript.Summary)
	assert.NoError(t, out.Transcript.CheckInvariants())
	assert.Equal(t, "run-1", out.RunID)
}

func TestProcessTranscript_Execute_PartialFailureTolerance(t *testing.T) {
	// Setup
	b := newBoard()
	b.users.Add("Alice")
	existing := seedTask(t, b, "Fix login")
	tr := b.uploadTranscript(t, "notes")
	missingTask := int64(999)
	ex := &testutil.MockExtractor{Result: &domain.ExtractionResult{
		Summary: "mixed bag",
		Actions: []domain.IntendedAction{
			createIntent("Write docs", "Alice"),
			createIntent("Ghost work", "Mallory"),
			{Kind: domain.IntentCompleteTask, TaskID: &existing.ID, Note: "Login fixed"},
			{Kind: domain.IntentCompleteTask, TaskID: &missingTask},
			{Kind: domain.IntentCreateTask, Title: ptr("Bad priority"), Priority: ptr("someday")},
			{Kind: "delete"},
			createIntent("Deploy", ""),
		},
	}}

	// Execute
	out, err := b.processTranscript(ex, ProcessTranscriptOptions{}).Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})

	// Assert
	require.NoError(t, err)
	assert.True(t, out.Transcript.Processed)
	require.Len(t, out.Actions, 3)
	assert.Equal(t, domain.ActionCreated, out.Actions[0].Type)
	assert.Equal(t, domain.ActionCompleted, out.Actions[1].Type)
	assert.Equal(t, "Login fixed", out.Actions[1].Description)
	assert.Equal(t, domain.ActionCreated, out.Actions[2].Type)
	assert.Equal(t, []int64{existing.ID}, out.UpdatedTaskIDs)
	assert.Len(t, out.CreatedTaskIDs, 2)

	require.Len(t, out.Skipped, 4)
	assert.Equal(t, []int{1, 3, 4, 5}, []int{out.Skipped[0].Index, out.Skipped[1].Index, out.Skipped[2].Index, out.Skipped[3].Index})
	assert.Contains(t, out.Skipped[0].Reason, "Mallory")

	done := b.tasks.Tasks[existing.ID]
	assert.Equal(t, domain.StatusDone, done.Status)
	assert.NoError(t, done.CheckInvariants())
}

func TestProcessTranscript_Execute_UpdateActions(t *testing.T) {
	// Setup
	b := newBoard()
	bob := b.users.Add("Bob")
	blocked := seedTask(t, b, "Blocked one")
	edited := seedTask(t, b, "Edited one")
	tr := b.uploadTranscript(t, "notes")
	due := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	ex := &testutil.MockExtractor{Result: &domain.ExtractionResult{Actions: []domain.IntendedAction{
		{Kind: domain.IntentUpdateTask, TaskID: &blocked.ID, Status: ptr("Blocked")},
		{Kind: domain.IntentUpdateTask, TaskID: &edited.ID, AssigneeName: ptr("bob"), Priority: ptr("URGENT"), DueDate: &due},
		{Kind: domain.IntentUpdateTask, TaskID: &edited.ID, Note: "just talk"},
		{Kind: domain.IntentUpdateTask},
	}}}

	// Execute
	out, err := b.processTranscript(ex, ProcessTranscriptOptions{}).Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})

	// Assert
	require.NoError(t, err)
	require.Len(t, out.Actions, 2)
	assert.Equal(t, domain.ActionBlocked, out.Actions[0].Type)
	assert.Equal(t, "Task blocked", out.Actions[0].Description)
	assert.Equal(t, domain.ActionUpdated, out.Actions[1].Type)
	require.Len(t, out.Skipped, 2)
	assert.Contains(t, out.Skipped[0].Reason, domain.ErrNoFieldsToUpdate.Error())
	assert.Contains(t, out.Skipped[1].Reason, domain.ErrMissingTaskRef.Error())

	got := b.tasks.Tasks[edited.ID]
	assert.Equal(t, bob, *got.AssigneeID)
	assert.Equal(t, domain.PriorityUrgent, got.Priority)
	assert.Equal(t, due, *got.DueDate)
	assert.Equal(t, "Edited one", got.Title)
	assert.Equal(t, domain.StatusBlocked, b.tasks.Tasks[blocked.ID].Status)
}

func TestProcessTranscript_Execute_CompleteAlreadyDoneKeepsTimestamp(t *testing.T) {
	b := newBoard()
	task := seedTask(t, b, "Shipped")
	_, err := b.updateTask().Execute(context.Background(), UpdateTaskInput{TaskID: task.ID, Status: ptr(domain.StatusDone)})
	require.NoError(t, err)
	b.clock.Advance(time.Hour)
	tr := b.uploadTranscript(t, "notes")
	ex := &testutil.MockExtractor{Result: &domain.ExtractionResult{Actions: []domain.IntendedAction{
		{Kind: domain.IntentCompleteTask, TaskID: &task.ID},
	}}}

	out, err := b.processTranscript(ex, ProcessTranscriptOptions{}).Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})

	require.NoError(t, err)
	require.Len(t, out.Actions, 1)
	assert.Equal(t, testNow, *b.tasks.Tasks[task.ID].CompletedAt)
}

func TestProcessTranscript_Execute_ExtractionContext(t *testing.T) {
	// Setup
	b := newBoard()
	b.users.Add("Alice")
	for i := range 3 {
		b.clock.Advance(time.Minute)
		seedTask(t, b, fmt.Sprintf("open %d", i))
	}
	doneTask := seedTask(t, b, "closed")
	_, err := b.updateTask().Execute(context.Background(), UpdateTaskInput{TaskID: doneTask.ID, Status: ptr(domain.StatusDone)})
	require.NoError(t, err)
	tr := b.uploadTranscript(t, "the text")
	ex := &testutil.MockExtractor{Result: &domain.ExtractionResult{}}

	// Execute
	_, err = b.processTranscript(ex, ProcessTranscriptOptions{MaxOpenTasks: 2}).Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})

	// Assert
	require.NoError(t, err)
	require.Equal(t, 1, ex.Calls())
	req := ex.Requests[0]
	assert.Equal(t, "the text", req.Text)
	assert.Equal(t, []domain.UserRef{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Creator"}}, req.Users)
	require.Len(t, req.OpenTasks, 2)
	assert.Equal(t, "open 2", req.OpenTasks[0].Title)
	assert.Equal(t, "Creator", req.OpenTasks[0].AssigneeName)
	assert.Equal(t, "open 1", req.OpenTasks[1].Title)
}

func TestProcessTranscript_Execute_ConfiguredCreator(t *testing.T) {
	b := newBoard()
	b.users.Add("Alice")
	bob := b.users.Add("Bob")
	tr := b.uploadTranscript(t, "notes")
	ex := &testutil.MockExtractor{Result: &domain.ExtractionResult{Actions: []domain.IntendedAction{createIntent("Task", "")}}}

	out, err := b.processTranscript(ex, ProcessTranscriptOptions{Creator: "bob"}).Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})

	require.NoError(t, err)
	require.Len(t, out.CreatedTaskIDs, 1)
	assert.Equal(t, bob, b.tasks.Tasks[out.CreatedTaskIDs[0]].CreatorID)
}

func TestProcessTranscript_Execute_NoUsersSkipsCreates(t *testing.T) {
	b := newBoard()
	tr := b.uploadTranscript(t, "notes")
	ex := &testutil.MockExtractor{Result: &domain.ExtractionResult{Actions: []domain.IntendedAction{createIntent("Orphan", "")}}}

	out, err := b.processTranscript(ex, ProcessTranscriptOptions{}).Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})

	require.NoError(t, err)
	assert.Empty(t, out.Actions)
	require.Len(t, out.Skipped, 1)
	assert.Contains(t, out.Skipped[0].Reason, domain.ErrNoCreator.Error())
	assert.True(t, out.Transcript.Processed)
}

func TestProcessTranscript_Execute_AlreadyProcessedIsRejected(t *testing.T) {
	// Setup
	b := newBoard()
	b.users.Add("Alice")
	tr := b.uploadTranscript(t, "notes")
	ex := &testutil.MockExtractor{Result: &domain.ExtractionResult{Actions: []domain.IntendedAction{createIntent("Once", "")}}}
	uc := b.processTranscript(ex, ProcessTranscriptOptions{})
	_, err := uc.Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})
	require.NoError(t, err)

	// Execute
	out, err := uc.Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})

	// Assert
	assert.Nil(t, out)
	require.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, ex.Calls())
	assert.Len(t, b.transcripts.Actions[tr.ID], 1)
	assert.Len(t, b.tasks.Tasks, 1)
}

func TestProcessTranscript_Execute_NotFound(t *testing.T) {
	b := newBoard()
	ex := &testutil.MockExtractor{}

	_, err := b.processTranscript(ex, ProcessTranscriptOptions{}).Execute(context.Background(), ProcessTranscriptInput{TranscriptID: 42})

	assert.ErrorIs(t, err, domain.ErrTranscriptNotFound)
	assert.Zero(t, ex.Calls())
}

func TestProcessTranscript_Execute_ExtractorErrorIsRetryable(t *testing.T) {
	// Setup
	b := newBoard()
	b.users.Add("Alice")
	tr := b.uploadTranscript(t, "notes")
	ex := &testutil.MockExtractor{Err: errors.New("connection refused")}
	uc := b.processTranscript(ex, ProcessTranscriptOptions{})

	// Execute
	_, err := uc.Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})

	// Assert
	require.ErrorIs(t, err, domain.ErrExtraction)
	assert.Contains(t, err.Error(), "connection refused")
	failed, err := b.transcripts.Get(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.False(t, failed.Processed)
	assert.Nil(t, failed.ProcessedAt)
	assert.Equal(t, domain.TranscriptFailed, failed.State)
	assert.Equal(t, "connection refused", failed.LastError)

	// Retry succeeds
	ex.Err = nil
	ex.Result = &domain.ExtractionResult{Summary: "ok", Actions: []domain.IntendedAction{createIntent("Retry", "")}}
	out, err := uc.Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})
	require.NoError(t, err)
	assert.True(t, out.Transcript.Processed)
	assert.Empty(t, out.Transcript.LastError)
	assert.Len(t, out.Transcript.Actions, 1)
}

func TestProcessTranscript_Execute_ExtractorTimeout(t *testing.T) {
	b := newBoard()
	tr := b.uploadTranscript(t, "notes")
	ex := &testutil.MockExtractor{ExtractF: func(ctx context.Context, _ domain.ExtractionRequest) (*domain.ExtractionResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	_, err := b.processTranscript(ex, ProcessTranscriptOptions{ExtractTimeout: 10 * time.Millisecond}).
		Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})

	require.ErrorIs(t, err, domain.ErrExtraction)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	got, err := b.transcripts.Get(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TranscriptFailed, got.State)
}

func TestProcessTranscript_Execute_ConcurrentPassesConflict(t *testing.T) {
	// Setup
	b := newBoard()
	b.users.Add("Alice")
	tr := b.uploadTranscript(t, "notes")
	entered := make(chan struct{})
	release := make(chan struct{})
	ex := &testutil.MockExtractor{ExtractF: func(context.Context, domain.ExtractionRequest) (*domain.ExtractionResult, error) {
		close(entered)
		<-release
		return &domain.ExtractionResult{Actions: []domain.IntendedAction{createIntent("Only once", "")}}, nil
	}}
	uc := b.processTranscript(ex, ProcessTranscriptOptions{StaleAfter: time.Hour})

	// Execute
	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = uc.Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})
	}()
	<-entered
	_, secondErr := uc.Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})
	close(release)
	wg.Wait()

	// Assert
	require.NoError(t, firstErr)
	require.ErrorIs(t, secondErr, domain.ErrTranscriptBusy)
	assert.ErrorIs(t, secondErr, domain.ErrConflict)
	assert.Len(t, b.transcripts.Actions[tr.ID], 1)
}

func TestProcessTranscript_Execute_StaleClaimIsReclaimed(t *testing.T) {
	b := newBoard()
	tr := b.uploadTranscript(t, "notes")
	_, err := b.transcripts.Update(context.Background(), tr.ID, func(claim *domain.Transcript) error {
		return claim.BeginProcessing("crashed-run", testNow, time.Minute)
	})
	require.NoError(t, err)
	uc := b.processTranscript(&testutil.MockExtractor{Result: &domain.ExtractionResult{}}, ProcessTranscriptOptions{StaleAfter: time.Minute})

	_, err = uc.Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})
	require.ErrorIs(t, err, domain.ErrTranscriptBusy)

	b.clock.Advance(2 * time.Minute)
	out, err := uc.Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})
	require.NoError(t, err)
	assert.True(t, out.Transcript.Processed)
}

func TestProcessTranscript_Execute_SlowPassLosesReclaimedClaim(t *testing.T) {
	// Setup
	b := newBoard()
	b.users.Add("Alice")
	tr := b.uploadTranscript(t, "Alice will write the docs")
	opts := ProcessTranscriptOptions{StaleAfter: time.Minute}

	entered := make(chan struct{})
	release := make(chan struct{})
	slowEx := &testutil.MockExtractor{ExtractF: func(context.Context, domain.ExtractionRequest) (*domain.ExtractionResult, error) {
		close(entered)
		<-release
		return &domain.ExtractionResult{Summary: "slow", Actions: []domain.IntendedAction{createIntent("Write docs", "Alice")}}, nil
	}}
	slow := b.processTranscript(slowEx, opts)
	slow.SetRunIDFunc(func() string { return "run-slow" })

	fastEx := &testutil.MockExtractor{Result: &domain.ExtractionResult{
		Summary: "fast",
		Actions: []domain.IntendedAction{createIntent("Write docs", "Alice")},
	}}
	fast := b.processTranscript(fastEx, opts)
	fast.SetRunIDFunc(func() string { return "run-fast" })

	// Execute: the slow pass stalls past stale_after and a second pass takes over
	var wg sync.WaitGroup
	var slowErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, slowErr = slow.Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})
	}()
	<-entered
	b.clock.Advance(2 * time.Minute)
	fastOut, fastErr := fast.Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})
	close(release)
	wg.Wait()

	// Assert
	require.NoError(t, fastErr)
	assert.Equal(t, "run-fast", fastOut.RunID)
	require.ErrorIs(t, slowErr, domain.ErrClaimLost)
	assert.ErrorIs(t, slowErr, domain.ErrConflict)

	got, err := b.transcripts.Get(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TranscriptProcessed, got.State)
	assert.Equal(t, "fast", got.Summary)
	require.Len(t, got.Actions, 1, "one intended action is recorded once")
	assert.Equal(t, "run-fast", got.Actions[0].RunID)
	assert.Len(t, b.tasks.Tasks, 1)
}

func TestProcessTranscript_Execute_RecordErrorFailsPass(t *testing.T) {
	b := newBoard()
	b.users.Add("Alice")
	tr := b.uploadTranscript(t, "notes")
	b.transcripts.AddActionErr = errors.New("disk full")
	ex := &testutil.MockExtractor{Result: &domain.ExtractionResult{Actions: []domain.IntendedAction{createIntent("x", "")}}}

	_, err := b.processTranscript(ex, ProcessTranscriptOptions{}).Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "record action")
	got, err := b.transcripts.Get(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TranscriptFailed, got.State)
	assert.False(t, got.Processed)
}

func TestProcessTranscript_Execute_WritesTranscriptLog(t *testing.T) {
	b := newBoard()
	tr := b.uploadTranscript(t, "notes")
	ex := &testutil.MockExtractor{Result: &domain.ExtractionResult{}}

	_, err := b.processTranscript(ex, ProcessTranscriptOptions{}).Execute(context.Background(), ProcessTranscriptInput{TranscriptID: tr.ID})
	require.NoError(t, err)

	entries := b.logger.ForTranscript(tr.ID)
	require.NotEmpty(t, entries)
	assert.Contains(t, entries[len(entries)-1].Msg, "processing finished (run run-1)")
}
