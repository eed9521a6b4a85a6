// Package app provides the dependency injection container for the application.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/infra/config"
	"github.com/runoshun/taskboard/internal/infra/extractor"
	"github.com/runoshun/taskboard/internal/infra/logging"
	"github.com/runoshun/taskboard/internal/infra/sqlitestore"
	"github.com/runoshun/taskboard/internal/usecase"
)

// Config holds the application paths.
type Config struct {
	DataDir string // Directory holding config.toml, the database and logs
	DBPath  string // SQLite database file
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Tasks            domain.TaskRepository
	Users            domain.UserRepository
	Projects         domain.ProjectRepository
	Tags             domain.TagRepository
	Goals            domain.GoalRepository
	Transcripts      domain.TranscriptRepository
	StoreInitializer domain.StoreInitializer
	Extractor        domain.Extractor
	ConfigWriter     domain.ConfigWriter
	Clock            domain.Clock
	Logger           domain.Logger

	// extractorErr is reported when processing is requested with a broken [extractor] section.
	extractorErr error
	closers      []io.Closer

	// Pointer fields
	AppConfig *domain.Config
	SlogLog   *slog.Logger // Structured logger for the HTTP server

	// Configuration
	Config Config
}

// New creates a Container for the given data directory.
// The store file is opened but the schema is only created by init or serve.
func New(dataDir string) (*Container, error) {
	appConfig, err := config.NewLoader(dataDir).Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg := Config{DataDir: dataDir, DBPath: appConfig.Store.Path}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	store, err := sqlitestore.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	level := logging.ParseLevel(appConfig.Log.Level)
	logger := logging.New(dataDir, level)

	ex, exErr := extractor.New(appConfig.Extractor, os.Getenv)

	return &Container{
		Tasks:            store.Tasks(),
		Users:            store.Users(),
		Projects:         store.Projects(),
		Tags:             store.Tags(),
		Goals:            store.Goals(),
		Transcripts:      store.Transcripts(),
		StoreInitializer: store,
		Extractor:        ex,
		extractorErr:     exErr,
		ConfigWriter:     config.NewManager(dataDir),
		Clock:            domain.RealClock{},
		Logger:           logger,
		closers:          []io.Closer{store, logger},
		AppConfig:        appConfig,
		SlogLog: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})),
		Config: cfg,
	}, nil
}

// Deps bundles the ports used by NewWithDeps.
type Deps struct {
	Tasks            domain.TaskRepository
	Users            domain.UserRepository
	Projects         domain.ProjectRepository
	Tags             domain.TagRepository
	Goals            domain.GoalRepository
	Transcripts      domain.TranscriptRepository
	StoreInitializer domain.StoreInitializer
	Extractor        domain.Extractor
	ConfigWriter     domain.ConfigWriter
	Clock            domain.Clock
	Logger           domain.Logger
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, appConfig *domain.Config, deps Deps, slogLog *slog.Logger) *Container {
	if appConfig == nil {
		appConfig = domain.NewDefaultConfig(cfg.DataDir)
	}
	if slogLog == nil {
		slogLog = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Container{
		Tasks:            deps.Tasks,
		Users:            deps.Users,
		Projects:         deps.Projects,
		Tags:             deps.Tags,
		Goals:            deps.Goals,
		Transcripts:      deps.Transcripts,
		StoreInitializer: deps.StoreInitializer,
		Extractor:        deps.Extractor,
		ConfigWriter:     deps.ConfigWriter,
		Clock:            deps.Clock,
		Logger:           deps.Logger,
		AppConfig:        appConfig,
		SlogLog:          slogLog,
		Config:           cfg,
	}
}

// Close releases the store and log files.
func (c *Container) Close() error {
	var firstErr error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}

// UseCase factory methods

// InitBoardUseCase returns a new InitBoard use case.
func (c *Container) InitBoardUseCase() *usecase.InitBoard {
	return usecase.NewInitBoard(c.StoreInitializer, c.ConfigWriter)
}

// CreateTaskUseCase returns a new CreateTask use case.
func (c *Container) CreateTaskUseCase() *usecase.CreateTask {
	return usecase.NewCreateTask(c.Tasks, c.Users, c.Projects, c.Tags, c.Clock, c.Logger)
}

// UpdateTaskUseCase returns a new UpdateTask use case.
func (c *Container) UpdateTaskUseCase() *usecase.UpdateTask {
	return usecase.NewUpdateTask(c.Tasks, c.Users, c.Projects, c.Tags, c.Clock, c.Logger)
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Tasks)
}

// ShowTaskUseCase returns a new ShowTask use case.
func (c *Container) ShowTaskUseCase() *usecase.ShowTask {
	return usecase.NewShowTask(c.Tasks)
}

// DeleteTaskUseCase returns a new DeleteTask use case.
func (c *Container) DeleteTaskUseCase() *usecase.DeleteTask {
	return usecase.NewDeleteTask(c.Tasks, c.Logger)
}

// ComputeStatsUseCase returns a new ComputeStats use case.
func (c *Container) ComputeStatsUseCase() *usecase.ComputeStats {
	return usecase.NewComputeStats(c.Tasks, c.Users)
}

// CreateTranscriptUseCase returns a new CreateTranscript use case.
func (c *Container) CreateTranscriptUseCase() *usecase.CreateTranscript {
	return usecase.NewCreateTranscript(c.Transcripts, c.Clock, c.Logger)
}

// ShowTranscriptUseCase returns a new ShowTranscript use case.
func (c *Container) ShowTranscriptUseCase() *usecase.ShowTranscript {
	return usecase.NewShowTranscript(c.Transcripts)
}

// ListTranscriptsUseCase returns a new ListTranscripts use case.
func (c *Container) ListTranscriptsUseCase() *usecase.ListTranscripts {
	return usecase.NewListTranscripts(c.Transcripts)
}

// ProcessTranscriptUseCase returns a new ProcessTranscript use case.
// It fails when the [extractor] section could not be turned into a backend.
func (c *Container) ProcessTranscriptUseCase() (*usecase.ProcessTranscript, error) {
	if c.extractorErr != nil {
		return nil, c.extractorErr
	}
	if c.Extractor == nil {
		return nil, fmt.Errorf("%w: no extractor configured", domain.ErrValidation)
	}
	return usecase.NewProcessTranscript(
		c.Transcripts,
		c.Tasks,
		c.Users,
		c.Extractor,
		c.CreateTaskUseCase(),
		c.UpdateTaskUseCase(),
		c.Clock,
		c.Logger,
		usecase.ProcessTranscriptOptions{
			Creator:        c.AppConfig.Processing.Creator,
			ExtractTimeout: c.AppConfig.Extractor.Timeout,
			StaleAfter:     c.AppConfig.Processing.StaleAfter,
			MaxOpenTasks:   c.AppConfig.Extractor.MaxOpenTasks,
		},
	), nil
}

// CreateUserUseCase returns a new CreateUser use case.
func (c *Container) CreateUserUseCase() *usecase.CreateUser {
	return usecase.NewCreateUser(c.Users, c.Clock)
}

// ListUsersUseCase returns a new ListUsers use case.
func (c *Container) ListUsersUseCase() *usecase.ListUsers {
	return usecase.NewListUsers(c.Users)
}

// ShowUserUseCase returns a new ShowUser use case.
func (c *Container) ShowUserUseCase() *usecase.ShowUser {
	return usecase.NewShowUser(c.Users)
}

// CreateProjectUseCase returns a new CreateProject use case.
func (c *Container) CreateProjectUseCase() *usecase.CreateProject {
	return usecase.NewCreateProject(c.Projects, c.Clock)
}

// ListProjectsUseCase returns a new ListProjects use case.
func (c *Container) ListProjectsUseCase() *usecase.ListProjects {
	return usecase.NewListProjects(c.Projects)
}

// ShowProjectUseCase returns a new ShowProject use case.
func (c *Container) ShowProjectUseCase() *usecase.ShowProject {
	return usecase.NewShowProject(c.Projects)
}

// ArchiveProjectUseCase returns a new ArchiveProject use case.
func (c *Container) ArchiveProjectUseCase() *usecase.ArchiveProject {
	return usecase.NewArchiveProject(c.Projects, c.Logger)
}

// CreateTagUseCase returns a new CreateTag use case.
func (c *Container) CreateTagUseCase() *usecase.CreateTag {
	return usecase.NewCreateTag(c.Tags)
}

// ListTagsUseCase returns a new ListTags use case.
func (c *Container) ListTagsUseCase() *usecase.ListTags {
	return usecase.NewListTags(c.Tags)
}

// CreateGoalUseCase returns a new CreateGoal use case.
func (c *Container) CreateGoalUseCase() *usecase.CreateGoal {
	return usecase.NewCreateGoal(c.Goals, c.Users, c.Clock)
}

// UpdateGoalUseCase returns a new UpdateGoal use case.
func (c *Container) UpdateGoalUseCase() *usecase.UpdateGoal {
	return usecase.NewUpdateGoal(c.Goals, c.Users, c.Clock)
}

// ListGoalsUseCase returns a new ListGoals use case.
func (c *Container) ListGoalsUseCase() *usecase.ListGoals {
	return usecase.NewListGoals(c.Goals)
}

// ShowGoalUseCase returns a new ShowGoal use case.
func (c *Container) ShowGoalUseCase() *usecase.ShowGoal {
	return usecase.NewShowGoal(c.Goals)
}

// DeleteGoalUseCase returns a new DeleteGoal use case.
func (c *Container) DeleteGoalUseCase() *usecase.DeleteGoal {
	return usecase.NewDeleteGoal(c.Goals)
}
