package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/usecase/shared"
)

// ProcessTranscriptInput contains the parameters for processing a transcript.
type ProcessTranscriptInput struct {
	TranscriptID int64
}

// SkippedAction describes an intended action that was not applied.
type SkippedAction struct {
	Reason string            `json:"reason"`
	Kind   domain.IntentKind `json:"kind"`
	Index  int               `json:"index"` // Position in the extractor's action list
}

// ProcessTranscriptOutput contains the result of one processing pass.
// Fields are ordered to minimize memory padding.
type ProcessTranscriptOutput struct {
	Transcript     *domain.Transcript        // Transcript after processing, with its full action log
	RunID          string                    // Identifier stamped on every action of this pass
	Summary        string                    // Meeting summary returned by the extractor
	Actions        []domain.TranscriptAction // Actions recorded by this pass, in order
	CreatedTaskIDs []int64
	UpdatedTaskIDs []int64 // Completed and updated tasks
	Skipped        []SkippedAction
}

// ProcessTranscriptOptions tunes transcript processing.
type ProcessTranscriptOptions struct {
	Creator        string        // Name of the user who owns extracted tasks (empty = lowest-id user)
	ExtractTimeout time.Duration // Deadline for the extractor call (0 = none)
	StaleAfter     time.Duration // Age after which a processing claim may be reclaimed (0 = never)
	MaxOpenTasks   int           // Number of open tasks handed to the extractor (0 = all)
}

// ProcessTranscript is the use case that turns a transcript into task mutations.
// Status changes go through CreateTask and UpdateTask so task invariants hold.
type ProcessTranscript struct {
	transcripts domain.TranscriptRepository
	tasks       domain.TaskRepository
	users       domain.UserRepository
	extractor   domain.Extractor
	createTask  *CreateTask
	updateTask  *UpdateTask
	clock       domain.Clock
	logger      domain.Logger
	newRunID    func() string
	opts        ProcessTranscriptOptions
}

// NewProcessTranscript creates a new ProcessTranscript use case.
func NewProcessTranscript(
	transcripts domain.TranscriptRepository,
	tasks domain.TaskRepository,
	users domain.UserRepository,
	extractor domain.Extractor,
	createTask *CreateTask,
	updateTask *UpdateTask,
	clock domain.Clock,
	logger domain.Logger,
	opts ProcessTranscriptOptions,
) *ProcessTranscript {
	return &ProcessTranscript{
		transcripts: transcripts,
		tasks:       tasks,
		users:       users,
		extractor:   extractor,
		createTask:  createTask,
		updateTask:  updateTask,
		clock:       clock,
		logger:      logger,
		newRunID:    uuid.NewString,
		opts:        opts,
	}
}

// SetRunIDFunc replaces the run ID generator. Used by tests.
func (uc *ProcessTranscript) SetRunIDFunc(fn func() string) {
	uc.newRunID = fn
}

// Execute processes the transcript.
//
// The transcript is claimed under a fresh run ID before the extractor is called,
// so a concurrent pass fails with domain.ErrTranscriptBusy and a processed
// transcript with domain.ErrAlreadyProcessed. The claim is renewed before each
// action; once another pass has taken it over this pass stops with
// domain.ErrClaimLost and records nothing more. Intended actions that fail
// validation are skipped; an extractor failure leaves the transcript failed and
// retryable.
func (uc *ProcessTranscript) Execute(ctx context.Context, in ProcessTranscriptInput) (*ProcessTranscriptOutput, error) {
	runID := uc.newRunID()

	// Claim transcript
	claimed, err := uc.transcripts.Update(ctx, in.TranscriptID, func(t *domain.Transcript) error {
		return t.BeginProcessing(runID, uc.clock.Now(), uc.opts.StaleAfter)
	})
	if err != nil {
		return nil, fmt.Errorf("claim transcript: %w", err)
	}
	if claimed == nil {
		return nil, domain.ErrTranscriptNotFound
	}
	uc.log(claimed.ID, "processing started (run %s)", runID)

	// Build extraction context
	req, users, err := uc.buildRequest(ctx, claimed.Text)
	if err != nil {
		uc.fail(ctx, claimed.ID, runID, err.Error())
		return nil, err
	}

	// Extract intended actions
	result, err := uc.extract(ctx, req)
	if err != nil {
		uc.fail(ctx, claimed.ID, runID, err.Error())
		return nil, domain.ExtractionError(err)
	}
	uc.log(claimed.ID, "extractor returned %d action(s)", len(result.Actions))

	out := &ProcessTranscriptOutput{
		RunID:   runID,
		Summary: result.Summary,
	}

	// Apply actions in order
	creatorID, err := uc.resolveCreator(ctx, users)
	if err != nil {
		uc.fail(ctx, claimed.ID, runID, err.Error())
		return nil, err
	}
	for i, intent := range result.Actions {
		if err := uc.renewClaim(ctx, claimed.ID, runID); err != nil {
			return nil, fmt.Errorf("apply action %d: %w", i, err)
		}
		action, err := uc.apply(ctx, intent, creatorID)
		if err != nil {
			if !isSkippable(err) {
				uc.fail(ctx, claimed.ID, runID, err.Error())
				return nil, fmt.Errorf("apply action %d: %w", i, err)
			}
			out.Skipped = append(out.Skipped, SkippedAction{Index: i, Kind: intent.Kind, Reason: err.Error()})
			if uc.logger != nil {
				uc.logger.Warn(claimed.ID, "process", fmt.Sprintf("skipped action %d (%s): %v", i, intent.Kind, err))
			}
			continue
		}

		action.TranscriptID = claimed.ID
		action.RunID = runID
		action.CreatedAt = uc.clock.Now()
		if err := uc.transcripts.AddAction(ctx, action); err != nil {
			if errors.Is(err, domain.ErrClaimLost) {
				uc.warnClaimLost(claimed.ID, runID)
			} else {
				uc.fail(ctx, claimed.ID, runID, err.Error())
			}
			return nil, fmt.Errorf("record action: %w", err)
		}
		out.Actions = append(out.Actions, *action)
		if action.Type == domain.ActionCreated {
			out.CreatedTaskIDs = append(out.CreatedTaskIDs, *action.TaskID)
		} else {
			out.UpdatedTaskIDs = append(out.UpdatedTaskIDs, *action.TaskID)
		}
		uc.log(claimed.ID, "%s task #%d", action.Type, *action.TaskID)
	}

	// Finish
	_, err = uc.transcripts.Update(ctx, claimed.ID, func(t *domain.Transcript) error {
		return t.MarkProcessed(runID, result.Summary, uc.clock.Now())
	})
	if err != nil {
		if errors.Is(err, domain.ErrClaimLost) {
			uc.warnClaimLost(claimed.ID, runID)
		} else {
			uc.fail(ctx, claimed.ID, runID, err.Error())
		}
		return nil, fmt.Errorf("finish transcript: %w", err)
	}
	tr, err := shared.GetTranscript(ctx, uc.transcripts, claimed.ID)
	if err != nil {
		return nil, err
	}
	out.Transcript = tr

	uc.log(claimed.ID, "processing finished (run %s): %d recorded, %d skipped", runID, len(out.Actions), len(out.Skipped))
	return out, nil
}

// buildRequest collects the users and open tasks the extractor may refer to.
func (uc *ProcessTranscript) buildRequest(ctx context.Context, text string) (domain.ExtractionRequest, []*domain.User, error) {
	users, err := uc.users.List(ctx)
	if err != nil {
		return domain.ExtractionRequest{}, nil, fmt.Errorf("list users: %w", err)
	}
	tasks, err := uc.tasks.List(ctx, domain.TaskFilter{})
	if err != nil {
		return domain.ExtractionRequest{}, nil, fmt.Errorf("list tasks: %w", err)
	}
	domain.SortTasksNewestFirst(tasks)

	names := make(map[int64]string, len(users))
	req := domain.ExtractionRequest{Text: text}
	for _, u := range users {
		names[u.ID] = u.Name
		req.Users = append(req.Users, domain.UserRef{ID: u.ID, Name: u.Name})
	}
	for _, t := range tasks {
		if !t.Status.IsOpen() {
			continue
		}
		if uc.opts.MaxOpenTasks > 0 && len(req.OpenTasks) >= uc.opts.MaxOpenTasks {
			break
		}
		ref := domain.TaskRef{ID: t.ID, Title: t.Title, Status: t.Status}
		if t.AssigneeID != nil {
			ref.AssigneeName = names[*t.AssigneeID]
		}
		req.OpenTasks = append(req.OpenTasks, ref)
	}
	return req, users, nil
}

func (uc *ProcessTranscript) extract(ctx context.Context, req domain.ExtractionRequest) (*domain.ExtractionResult, error) {
	if uc.opts.ExtractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.opts.ExtractTimeout)
		defer cancel()
	}
	result, err := uc.extractor.Extract(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if result == nil {
		result = &domain.ExtractionResult{}
	}
	return result, nil
}

// resolveCreator returns the configured creator, falling back to the lowest-id user.
// Zero means no user exists.
func (uc *ProcessTranscript) resolveCreator(ctx context.Context, users []*domain.User) (int64, error) {
	if name := strings.TrimSpace(uc.opts.Creator); name != "" {
		u, err := uc.users.FindByName(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("find creator: %w", err)
		}
		if u != nil {
			return u.ID, nil
		}
		if uc.logger != nil {
			uc.logger.Warn(0, "process", fmt.Sprintf("configured creator %q not found, using first user", name))
		}
	}
	var id int64
	for _, u := range users {
		if id == 0 || u.ID < id {
			id = u.ID
		}
	}
	return id, nil
}

// apply performs one intended action and returns the audit record to store.
func (uc *ProcessTranscript) apply(ctx context.Context, intent domain.IntendedAction, creatorID int64) (*domain.TranscriptAction, error) {
	switch intent.Kind {
	case domain.IntentCreateTask:
		return uc.applyCreate(ctx, intent, creatorID)
	case domain.IntentCompleteTask:
		if intent.TaskID == nil {
			return nil, domain.ErrMissingTaskRef
		}
		done := domain.StatusDone
		out, err := uc.updateTask.Execute(ctx, UpdateTaskInput{TaskID: *intent.TaskID, Status: &done})
		if err != nil {
			return nil, taskRefError(err)
		}
		return newAction(domain.ActionCompleted, out.Task.ID, noteOr(intent.Note, "Task completed")), nil
	case domain.IntentUpdateTask:
		return uc.applyUpdate(ctx, intent)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownIntent, intent.Kind)
	}
}

func (uc *ProcessTranscript) applyCreate(ctx context.Context, intent domain.IntendedAction, creatorID int64) (*domain.TranscriptAction, error) {
	if creatorID == 0 {
		return nil, domain.ErrNoCreator
	}
	priority := domain.DefaultPriority
	p, ok, err := parseIntentPriority(intent.Priority)
	if err != nil {
		return nil, err
	}
	if ok {
		priority = p
	}
	assigneeID, err := uc.resolveAssignee(ctx, intent.AssigneeName)
	if err != nil {
		return nil, err
	}

	in := CreateTaskInput{
		Priority:   priority,
		AssigneeID: assigneeID,
		CreatorID:  creatorID,
		DueDate:    intent.DueDate,
	}
	if intent.Title != nil {
		in.Title = *intent.Title
	}
	if intent.Description != nil {
		in.Description = *intent.Description
	}
	out, err := uc.createTask.Execute(ctx, in)
	if err != nil {
		return nil, err
	}
	return newAction(domain.ActionCreated, out.Task.ID, "Created task: "+out.Task.Title), nil
}

func (uc *ProcessTranscript) applyUpdate(ctx context.Context, intent domain.IntendedAction) (*domain.TranscriptAction, error) {
	if intent.TaskID == nil {
		return nil, domain.ErrMissingTaskRef
	}
	in := UpdateTaskInput{
		TaskID:      *intent.TaskID,
		Title:       intent.Title,
		Description: intent.Description,
		DueDate:     intent.DueDate,
	}
	if intent.Status != nil {
		s, err := domain.ParseStatus(*intent.Status)
		if err != nil {
			return nil, err
		}
		in.Status = &s
	}
	p, ok, err := parseIntentPriority(intent.Priority)
	if err != nil {
		return nil, err
	}
	if ok {
		in.Priority = &p
	}
	if intent.AssigneeName != nil && strings.TrimSpace(*intent.AssigneeName) != "" {
		id, err := uc.resolveAssignee(ctx, intent.AssigneeName)
		if err != nil {
			return nil, err
		}
		in.AssigneeID = id
	}

	out, err := uc.updateTask.Execute(ctx, in)
	if err != nil {
		return nil, taskRefError(err)
	}

	actionType := domain.ActionUpdated
	if in.Status != nil && *in.Status == domain.StatusBlocked && onlyStatus(in) {
		actionType = domain.ActionBlocked
	}
	return newAction(actionType, out.Task.ID, noteOr(intent.Note, "Task "+string(actionType))), nil
}

// resolveAssignee maps an assignee name to a user ID. An empty name means unassigned.
func (uc *ProcessTranscript) resolveAssignee(ctx context.Context, name *string) (*int64, error) {
	if name == nil || strings.TrimSpace(*name) == "" {
		return nil, nil
	}
	u, err := uc.users.FindByName(ctx, strings.TrimSpace(*name))
	if err != nil {
		return nil, fmt.Errorf("find assignee: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAssignee, *name)
	}
	id := u.ID
	return &id, nil
}

// renewClaim keeps the claim of runID fresh and fails once another pass owns it.
func (uc *ProcessTranscript) renewClaim(ctx context.Context, id int64, runID string) error {
	_, err := uc.transcripts.Update(ctx, id, func(t *domain.Transcript) error {
		return t.RenewClaim(runID, uc.clock.Now())
	})
	if errors.Is(err, domain.ErrClaimLost) {
		uc.warnClaimLost(id, runID)
	}
	return err
}

func (uc *ProcessTranscript) warnClaimLost(id int64, runID string) {
	if uc.logger != nil {
		uc.logger.Warn(id, "process", fmt.Sprintf("run %s lost its claim to another pass; stopping", runID))
	}
}

func (uc *ProcessTranscript) fail(ctx context.Context, id int64, runID, reason string) {
	// The claim must be released even when the caller's context is done.
	ctx = context.WithoutCancel(ctx)
	_, err := uc.transcripts.Update(ctx, id, func(t *domain.Transcript) error {
		return t.MarkFailed(runID, reason)
	})
	if uc.logger == nil {
		return
	}
	uc.logger.Error(id, "process", "processing failed: "+reason)
	if err != nil {
		uc.logger.Error(id, "process", fmt.Sprintf("release claim: %v", err))
	}
}

func (uc *ProcessTranscript) log(id int64, format string, args ...any) {
	if uc.logger != nil {
		uc.logger.Info(id, "process", fmt.Sprintf(format, args...))
	}
}

// parseIntentPriority matches a priority case-insensitively.
// ok is false when no priority was given.
func parseIntentPriority(s *string) (domain.Priority, bool, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "", false, nil
	}
	p, err := domain.ParsePriority(*s)
	if err != nil {
		return "", false, fmt.Errorf("%w: %q", domain.ErrInvalidPriority, *s)
	}
	return p, true, nil
}

func onlyStatus(in UpdateTaskInput) bool {
	in.Status = nil
	in.TaskID = 0
	return in.isEmpty()
}

// taskRefError reports a missing task as a bad reference from the extractor.
func taskRefError(err error) error {
	if errors.Is(err, domain.ErrTaskNotFound) {
		return domain.ErrUnknownTaskRef
	}
	return err
}

// isSkippable reports whether err rejects a single action rather than the whole pass.
func isSkippable(err error) bool {
	return errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrNotFound)
}

func newAction(t domain.ActionType, taskID int64, description string) *domain.TranscriptAction {
	id := taskID
	return &domain.TranscriptAction{Type: t, TaskID: &id, Description: description}
}

func noteOr(note, fallback string) string {
	if strings.TrimSpace(note) != "" {
		return note
	}
	return fallback
}
