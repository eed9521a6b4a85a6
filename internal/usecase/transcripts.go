package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/usecase/shared"
)

// CreateTranscriptInput contains the parameters for uploading a transcript.
type CreateTranscriptInput struct {
	Title string // Meeting title (required)
	Text  string // Raw transcript text (required)
}

// CreateTranscriptOutput contains the stored transcript.
type CreateTranscriptOutput struct {
	Transcript *domain.Transcript
}

// CreateTranscript is the use case for uploading a meeting transcript.
type CreateTranscript struct {
	transcripts domain.TranscriptRepository
	clock       domain.Clock
	logger      domain.Logger
}

// NewCreateTranscript creates a new CreateTranscript use case.
func NewCreateTranscript(transcripts domain.TranscriptRepository, clock domain.Clock, logger domain.Logger) *CreateTranscript {
	return &CreateTranscript{
		transcripts: transcripts,
		clock:       clock,
		logger:      logger,
	}
}

// Execute stores the transcript in the uploaded state.
func (uc *CreateTranscript) Execute(ctx context.Context, in CreateTranscriptInput) (*CreateTranscriptOutput, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, domain.ErrEmptyTranscript
	}

	tr := &domain.Transcript{
		Title:     title,
		Text:      in.Text,
		State:     domain.TranscriptUploaded,
		CreatedAt: uc.clock.Now(),
	}
	if err := uc.transcripts.Create(ctx, tr); err != nil {
		return nil, fmt.Errorf("save transcript: %w", err)
	}

	if uc.logger != nil {
		uc.logger.Info(tr.ID, "transcript", fmt.Sprintf("uploaded %q (%d bytes)", tr.Title, len(tr.Text)))
	}

	return &CreateTranscriptOutput{Transcript: tr}, nil
}

// ShowTranscriptInput contains the parameters for showing a transcript.
type ShowTranscriptInput struct {
	TranscriptID int64
}

// ShowTranscriptOutput contains the transcript with its action log.
type ShowTranscriptOutput struct {
	Transcript *domain.Transcript
}

// ShowTranscript is the use case for retrieving a transcript and its actions.
type ShowTranscript struct {
	transcripts domain.TranscriptRepository
}

// NewShowTranscript creates a new ShowTranscript use case.
func NewShowTranscript(transcripts domain.TranscriptRepository) *ShowTranscript {
	return &ShowTranscript{transcripts: transcripts}
}

// Execute returns the transcript or domain.ErrTranscriptNotFound.
func (uc *ShowTranscript) Execute(ctx context.Context, in ShowTranscriptInput) (*ShowTranscriptOutput, error) {
	tr, err := shared.GetTranscript(ctx, uc.transcripts, in.TranscriptID)
	if err != nil {
		return nil, err
	}
	return &ShowTranscriptOutput{Transcript: tr}, nil
}

// ListTranscriptsOutput contains all transcripts, newest first.
type ListTranscriptsOutput struct {
	Transcripts []*domain.Transcript
}

// ListTranscripts is the use case for listing transcripts.
type ListTranscripts struct {
	transcripts domain.TranscriptRepository
}

// NewListTranscripts creates a new ListTranscripts use case.
func NewListTranscripts(transcripts domain.TranscriptRepository) *ListTranscripts {
	return &ListTranscripts{transcripts: transcripts}
}

// Execute lists all transcripts.
func (uc *ListTranscripts) Execute(ctx context.Context) (*ListTranscriptsOutput, error) {
	list, err := uc.transcripts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	return &ListTranscriptsOutput{Transcripts: list}, nil
}
