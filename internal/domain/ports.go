package domain

import (
	"context"
	"time"
)

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the schema if it doesn't exist.
	Initialize(ctx context.Context) error
}

// ConfigWriter writes the default configuration file.
type ConfigWriter interface {
	// InitDataConfig writes the commented default config and returns its path.
	// Returns ErrConfigExists (with the path) if the file already exists.
	InitDataConfig(cfg *Config) (string, error)
}

// TaskRepository manages task persistence.
// Get-style methods return (nil, nil) when the entity does not exist.
type TaskRepository interface {
	// Get retrieves a task with its tags by ID.
	Get(ctx context.Context, id int64) (*Task, error)

	// List retrieves tasks matching the filter from a single consistent snapshot.
	List(ctx context.Context, filter TaskFilter) ([]*Task, error)

	// Create inserts a new task with the given tag set and assigns its ID.
	Create(ctx context.Context, task *Task) error

	// Update atomically loads the task, applies fn and stores the result.
	// If fn returns an error nothing is written. Returns (nil, nil) if the task does not exist.
	Update(ctx context.Context, id int64, fn func(*Task) error) (*Task, error)

	// Delete removes a task and its tag associations.
	// Returns ErrTaskNotFound when the task no longer exists.
	Delete(ctx context.Context, id int64) error
}

// UserRepository manages users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Get(ctx context.Context, id int64) (*User, error)
	// FindByName looks a user up by name, ignoring case.
	FindByName(ctx context.Context, name string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

// ProjectRepository manages projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	Get(ctx context.Context, id int64) (*Project, error)
	List(ctx context.Context, includeArchived bool) ([]*Project, error)
	// Archive sets the archived flag. Returns (nil, nil) if the project does not exist.
	Archive(ctx context.Context, id int64) (*Project, error)
}

// TagRepository manages tags.
type TagRepository interface {
	Create(ctx context.Context, tag *Tag) error
	Get(ctx context.Context, id int64) (*Tag, error)
	List(ctx context.Context) ([]*Tag, error)
}

// GoalRepository manages goals.
type GoalRepository interface {
	Create(ctx context.Context, goal *Goal) error
	Get(ctx context.Context, id int64) (*Goal, error)
	List(ctx context.Context) ([]*Goal, error)
	Update(ctx context.Context, id int64, fn func(*Goal) error) (*Goal, error)
	Delete(ctx context.Context, id int64) error // ErrGoalNotFound when nothing was deleted
}

// TranscriptRepository manages transcripts and their action log.
type TranscriptRepository interface {
	Create(ctx context.Context, transcript *Transcript) error

	// Get retrieves a transcript with its actions in creation order.
	Get(ctx context.Context, id int64) (*Transcript, error)

	// List retrieves all transcripts, newest first, with their actions.
	List(ctx context.Context) ([]*Transcript, error)

	// Update atomically loads the transcript, applies fn and stores the result.
	// Actions are not touched. Returns (nil, nil) if the transcript does not exist.
	Update(ctx context.Context, id int64, fn func(*Transcript) error) (*Transcript, error)

	// AddAction appends an audit record and assigns its ID. The record is
	// stored only while action.RunID holds the transcript's processing claim;
	// otherwise ErrClaimLost is returned and nothing is written.
	AddAction(ctx context.Context, action *TranscriptAction) error
}

// Logger records operational events.
// transcriptID 0 writes only to the global log; a positive ID also writes to that
// transcript's own log.
type Logger interface {
	Debug(transcriptID int64, category, msg string)
	Info(transcriptID int64, category, msg string)
	Warn(transcriptID int64, category, msg string)
	Error(transcriptID int64, category, msg string)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}
