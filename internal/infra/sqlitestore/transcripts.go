package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/runoshun/taskboard/internal/domain"
)

type transcriptRow struct {
	CreatedAt           time.Time    `db:"created_at"`
	ProcessedAt         sql.NullTime `db:"processed_at"`
	ProcessingStartedAt sql.NullTime `db:"processing_started_at"`
	ProcessingRunID     string       `db:"processing_run_id"`
	Title               string       `db:"title"`
	Text                string       `db:"transcript"`
	Summary             string       `db:"summary"`
	LastError           string       `db:"last_error"`
	State               string       `db:"state"`
	ID                  int64        `db:"id"`
	Processed           bool         `db:"processed"`
}

func newTranscriptRow(t *domain.Transcript) transcriptRow {
	return transcriptRow{
		ID:                  t.ID,
		Title:               t.Title,
		Text:                t.Text,
		Summary:             t.Summary,
		Processed:           t.Processed,
		State:               string(t.State),
		LastError:           t.LastError,
		ProcessingStartedAt: nullTime(t.ProcessingStartedAt),
		ProcessingRunID:     t.ProcessingRunID,
		CreatedAt:           t.CreatedAt.UTC(),
		ProcessedAt:         nullTime(t.ProcessedAt),
	}
}

func (r transcriptRow) toDomain() *domain.Transcript {
	return &domain.Transcript{
		ID:                  r.ID,
		Title:               r.Title,
		Text:                r.Text,
		Summary:             r.Summary,
		Processed:           r.Processed,
		State:               domain.TranscriptState(r.State),
		LastError:           r.LastError,
		ProcessingStartedAt: timePtr(r.ProcessingStartedAt),
		ProcessingRunID:     r.ProcessingRunID,
		CreatedAt:           r.CreatedAt.UTC(),
		ProcessedAt:         timePtr(r.ProcessedAt),
		Actions:             []domain.TranscriptAction{},
	}
}

type actionRow struct {
	CreatedAt    time.Time     `db:"created_at"`
	TaskID       sql.NullInt64 `db:"task_id"`
	Type         string        `db:"action_type"`
	Description  string        `db:"description"`
	RunID        string        `db:"run_id"`
	ID           int64         `db:"id"`
	TranscriptID int64         `db:"transcript_id"`
}

func (r actionRow) toDomain() domain.TranscriptAction {
	return domain.TranscriptAction{
		ID:           r.ID,
		TranscriptID: r.TranscriptID,
		TaskID:       intPtr(r.TaskID),
		Type:         domain.ActionType(r.Type),
		Description:  r.Description,
		RunID:        r.RunID,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

const transcriptColumns = `id, title, transcript, summary, processed, state, last_error,
	processing_started_at, processing_run_id, created_at, processed_at`

const actionColumns = `id, transcript_id, task_id, action_type, description, run_id, created_at`

// TranscriptStore implements domain.TranscriptRepository.
type TranscriptStore struct {
	s *Store
}

// Create inserts a transcript.
func (r *TranscriptStore) Create(ctx context.Context, t *domain.Transcript) error {
	if err := t.CheckInvariants(); err != nil {
		return err
	}
	res, err := r.s.db.NamedExecContext(ctx, `
		INSERT INTO meeting_transcripts (title, transcript, summary, processed, state, last_error,
			processing_started_at, processing_run_id, created_at, processed_at)
		VALUES (:title, :transcript, :summary, :processed, :state, :last_error,
			:processing_started_at, :processing_run_id, :created_at, :processed_at)`,
		newTranscriptRow(t))
	if err != nil {
		return fmt.Errorf("insert transcript: %w", mapConstraint(err, nil))
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("insert transcript: %w", err)
	}
	return nil
}

// Get retrieves a transcript with its actions in creation order.
func (r *TranscriptStore) Get(ctx context.Context, id int64) (*domain.Transcript, error) {
	var tr *domain.Transcript
	err := r.s.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if tr, err = getTranscript(ctx, tx, id); err != nil || tr == nil {
			return err
		}
		return loadActions(ctx, tx, []*domain.Transcript{tr})
	})
	if err != nil {
		return nil, err
	}
	return tr, nil
}

// List retrieves all transcripts, newest first, with their actions.
func (r *TranscriptStore) List(ctx context.Context) ([]*domain.Transcript, error) {
	var list []*domain.Transcript
	err := r.s.withTx(ctx, func(tx *sqlx.Tx) error {
		var rows []transcriptRow
		if err := tx.SelectContext(ctx, &rows,
			"SELECT "+transcriptColumns+" FROM meeting_transcripts ORDER BY created_at DESC, id DESC"); err != nil {
			return fmt.Errorf("list transcripts: %w", err)
		}
		list = make([]*domain.Transcript, 0, len(rows))
		for _, row := range rows {
			list = append(list, row.toDomain())
		}
		return loadActions(ctx, tx, list)
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Update atomically loads the transcript, applies fn and stores the result.
// The action log is not written.
func (r *TranscriptStore) Update(ctx context.Context, id int64, fn func(*domain.Transcript) error) (*domain.Transcript, error) {
	var tr *domain.Transcript
	err := r.s.withTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getTranscript(ctx, tx, id)
		if err != nil || current == nil {
			return err
		}
		if err := fn(current); err != nil {
			return err
		}
		if err := current.CheckInvariants(); err != nil {
			return err
		}
		current.ID = id
		if _, err := tx.NamedExecContext(ctx, `
			UPDATE meeting_transcripts SET title = :title, summary = :summary, processed = :processed,
				state = :state, last_error = :last_error, processing_started_at = :processing_started_at,
				processing_run_id = :processing_run_id, processed_at = :processed_at
			WHERE id = :id`, newTranscriptRow(current)); err != nil {
			return fmt.Errorf("update transcript: %w", mapConstraint(err, nil))
		}
		tr = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tr, nil
}

// AddAction appends an audit record for the pass that holds the processing claim.
// The claim check and the insert share one transaction.
func (r *TranscriptStore) AddAction(ctx context.Context, a *domain.TranscriptAction) error {
	return r.s.withTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getTranscript(ctx, tx, a.TranscriptID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrInvalidReference
		}
		if err := current.HoldsClaim(a.RunID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO transcript_actions (transcript_id, task_id, action_type, description, run_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			a.TranscriptID, nullInt(a.TaskID), string(a.Type), a.Description, a.RunID, a.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("insert action: %w", mapConstraint(err, nil))
		}
		if a.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("insert action: %w", err)
		}
		return nil
	})
}

func getTranscript(ctx context.Context, tx *sqlx.Tx, id int64) (*domain.Transcript, error) {
	var row transcriptRow
	err := tx.GetContext(ctx, &row, "SELECT "+transcriptColumns+" FROM meeting_transcripts WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	return row.toDomain(), nil
}

func loadActions(ctx context.Context, tx *sqlx.Tx, list []*domain.Transcript) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Transcript, len(list))
	ids := make([]int64, 0, len(list))
	for _, t := range list {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	q, args, err := sqlx.In("SELECT "+actionColumns+" FROM transcript_actions WHERE transcript_id IN (?) ORDER BY id", ids)
	if err != nil {
		return fmt.Errorf("build action query: %w", err)
	}
	var rows []actionRow
	if err := tx.SelectContext(ctx, &rows, tx.Rebind(q), args...); err != nil {
		return fmt.Errorf("load actions: %w", err)
	}
	for _, row := range rows {
		t := byID[row.TranscriptID]
		t.Actions = append(t.Actions, row.toDomain())
	}
	return nil
}
