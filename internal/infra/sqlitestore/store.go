// Package sqlitestore provides the SQLite implementation of the entity repositories.
package sqlitestore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/runoshun/taskboard/internal/domain"
)

//go:embed schema.sql
var schema string

// Store owns the SQLite connection pool shared by all repositories.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the database file at path.
// The schema is not created until Initialize is called.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	// Write transactions take the database lock at BEGIN so that two processes
	// sharing the file serialize instead of failing on lock upgrade.
	dsn := path + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

// Initialize creates the schema if it doesn't exist.
func (s *Store) Initialize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tasks returns the task repository.
func (s *Store) Tasks() *TaskStore { return &TaskStore{s: s} }

// Users returns the user repository.
func (s *Store) Users() *UserStore { return &UserStore{s: s} }

// Projects returns the project repository.
func (s *Store) Projects() *ProjectStore { return &ProjectStore{s: s} }

// Tags returns the tag repository.
func (s *Store) Tags() *TagStore { return &TagStore{s: s} }

// Goals returns the goal repository.
func (s *Store) Goals() *GoalStore { return &GoalStore{s: s} }

// Transcripts returns the transcript repository.
func (s *Store) Transcripts() *TranscriptStore { return &TranscriptStore{s: s} }

// withTx runs fn inside a transaction, committing if fn returns nil.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// mapConstraint converts SQLite constraint failures to domain errors.
// onUnique is returned for unique and primary key violations.
func mapConstraint(err error, onUnique error) error {
	var se sqlite3.Error
	if !errors.As(err, &se) || se.Code != sqlite3.ErrConstraint {
		return err
	}
	switch se.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		if onUnique == nil {
			onUnique = domain.ErrDuplicate
		}
		return onUnique
	case sqlite3.ErrConstraintForeignKey:
		return domain.ErrInvalidReference
	case sqlite3.ErrConstraintCheck:
		return fmt.Errorf("%w: %s", domain.ErrValidation, se.Error())
	default:
		return err
	}
}

// requireDeleted returns notFound when a DELETE matched no row.
func requireDeleted(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: p.UTC(), Valid: true}
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time.UTC()
	return &v
}
