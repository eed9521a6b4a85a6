// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/runoshun/taskboard/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// Advance moves the clock forward by d.
func (m *MockClock) Advance(d time.Duration) {
	m.NowTime = m.NowTime.Add(d)
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	c.Tags = slices.Clone(t.Tags)
	return &c
}

// MockTaskRepository is an in-memory domain.TaskRepository.
// Stored tasks are copied on the way in and out, so callers never share state.
// Fields are ordered to minimize memory padding.
type MockTaskRepository struct {
	Tasks     map[int64]*domain.Task
	CreateErr error
	GetErr    error
	ListErr   error
	UpdateErr error
	DeleteErr error
	NextIDN   int64
	mu        sync.Mutex
}

// NewMockTaskRepository creates a new MockTaskRepository with initialized maps.
func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{
		Tasks:   make(map[int64]*domain.Task),
		NextIDN: 1,
	}
}

// Get retrieves a task by ID.
func (m *MockTaskRepository) Get(_ context.Context, id int64) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	t, ok := m.Tasks[id]
	if !ok {
		return nil, nil
	}
	return cloneTask(t), nil
}

// List returns tasks matching the filter ordered by ID.
func (m *MockTaskRepository) List(_ context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	tasks := make([]*domain.Task, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		if filter.Matches(t) {
			tasks = append(tasks, cloneTask(t))
		}
	}
	slices.SortFunc(tasks, func(a, b *domain.Task) int { return cmp.Compare(a.ID, b.ID) })
	return tasks, nil
}

// Create stores a task and assigns its ID.
func (m *MockTaskRepository) Create(_ context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	task.ID = m.NextIDN
	m.NextIDN++
	m.Tasks[task.ID] = cloneTask(task)
	return nil
}

// Update applies fn to a copy of the task and stores it if fn succeeds.
func (m *MockTaskRepository) Update(_ context.Context, id int64, fn func(*domain.Task) error) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	t, ok := m.Tasks[id]
	if !ok {
		return nil, nil
	}
	c := cloneTask(t)
	if err := fn(c); err != nil {
		return nil, err
	}
	m.Tasks[id] = cloneTask(c)
	return c, nil
}

// Delete removes a task.
func (m *MockTaskRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.Tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	return nil
}

// Put stores a task as-is, keeping its ID. Used to seed tests.
func (m *MockTaskRepository) Put(task *domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks[task.ID] = cloneTask(task)
	if task.ID >= m.NextIDN {
		m.NextIDN = task.ID + 1
	}
}

// MockUserRepository is an in-memory domain.UserRepository.
type MockUserRepository struct {
	Users     map[int64]*domain.User
	CreateErr error
	ListErr   error
	NextIDN   int64
	mu        sync.Mutex
}

// NewMockUserRepository creates a new MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[int64]*domain.User), NextIDN: 1}
}

// Create stores a user and assigns its ID. Names are unique ignoring case.
func (m *MockUserRepository) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, u := range m.Users {
		if strings.EqualFold(u.Name, user.Name) {
			return domain.ErrUserExists
		}
	}
	user.ID = m.NextIDN
	m.NextIDN++
	c := *user
	m.Users[user.ID] = &c
	return nil
}

// Get retrieves a user by ID.
func (m *MockUserRepository) Get(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

// FindByName looks a user up by name, ignoring case.
func (m *MockUserRepository) FindByName(_ context.Context, name string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if strings.EqualFold(u.Name, name) {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

// List returns all users ordered by ID.
func (m *MockUserRepository) List(_ context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	users := make([]*domain.User, 0, len(m.Users))
	for _, u := range m.Users {
		c := *u
		users = append(users, &c)
	}
	slices.SortFunc(users, func(a, b *domain.User) int { return cmp.Compare(a.ID, b.ID) })
	return users, nil
}

// Add creates a user with the given name and returns its ID. Used to seed tests.
func (m *MockUserRepository) Add(name string) int64 {
	u := &domain.User{Name: name}
	if err := m.Create(context.Background(), u); err != nil {
		panic(fmt.Sprintf("seed user %q: %v", name, err))
	}
	return u.ID
}

// MockProjectRepository is an in-memory domain.ProjectRepository.
type MockProjectRepository struct {
	Projects map[int64]*domain.Project
	NextIDN  int64
	mu       sync.Mutex
}

// NewMockProjectRepository creates a new MockProjectRepository.
func NewMockProjectRepository() *MockProjectRepository {
	return &MockProjectRepository{Projects: make(map[int64]*domain.Project), NextIDN: 1}
}

// Create stores a project and assigns its ID.
func (m *MockProjectRepository) Create(_ context.Context, project *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Projects {
		if p.Name == project.Name {
			return domain.ErrProjectExists
		}
	}
	project.ID = m.NextIDN
	m.NextIDN++
	c := *project
	m.Projects[project.ID] = &c
	return nil
}

// Get retrieves a project by ID.
func (m *MockProjectRepository) Get(_ context.Context, id int64) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Projects[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

// List returns projects ordered by ID.
func (m *MockProjectRepository) List(_ context.Context, includeArchived bool) ([]*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	projects := make([]*domain.Project, 0, len(m.Projects))
	for _, p := range m.Projects {
		if p.Archived && !includeArchived {
			continue
		}
		c := *p
		projects = append(projects, &c)
	}
	slices.SortFunc(projects, func(a, b *domain.Project) int { return cmp.Compare(a.ID, b.ID) })
	return projects, nil
}

// Archive sets the archived flag.
func (m *MockProjectRepository) Archive(_ context.Context, id int64) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Projects[id]
	if !ok {
		return nil, nil
	}
	p.Archived = true
	c := *p
	return &c, nil
}

// MockTagRepository is an in-memory domain.TagRepository.
type MockTagRepository struct {
	Tags    map[int64]*domain.Tag
	NextIDN int64
	mu      sync.Mutex
}

// NewMockTagRepository creates a new MockTagRepository.
func NewMockTagRepository() *MockTagRepository {
	return &MockTagRepository{Tags: make(map[int64]*domain.Tag), NextIDN: 1}
}

// Create stores a tag and assigns its ID.
func (m *MockTagRepository) Create(_ context.Context, tag *domain.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.Tags {
		if t.Name == tag.Name {
			return domain.ErrTagExists
		}
	}
	tag.ID = m.NextIDN
	m.NextIDN++
	c := *tag
	m.Tags[tag.ID] = &c
	return nil
}

// Get retrieves a tag by ID.
func (m *MockTagRepository) Get(_ context.Context, id int64) (*domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Tags[id]
	if !ok {
		return nil, nil
	}
	c := *t
	return &c, nil
}

// List returns all tags ordered by name.
func (m *MockTagRepository) List(_ context.Context) ([]*domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tags := make([]*domain.Tag, 0, len(m.Tags))
	for _, t := range m.Tags {
		c := *t
		tags = append(tags, &c)
	}
	slices.SortFunc(tags, func(a, b *domain.Tag) int { return strings.Compare(a.Name, b.Name) })
	return tags, nil
}

// MockGoalRepository is an in-memory domain.GoalRepository.
type MockGoalRepository struct {
	Goals   map[int64]*domain.Goal
	NextIDN int64
	mu      sync.Mutex
}

// NewMockGoalRepository creates a new MockGoalRepository.
func NewMockGoalRepository() *MockGoalRepository {
	return &MockGoalRepository{Goals: make(map[int64]*domain.Goal), NextIDN: 1}
}

// Create stores a goal and assigns its ID.
func (m *MockGoalRepository) Create(_ context.Context, goal *domain.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	goal.ID = m.NextIDN
	m.NextIDN++
	c := *goal
	m.Goals[goal.ID] = &c
	return nil
}

// Get retrieves a goal by ID.
func (m *MockGoalRepository) Get(_ context.Context, id int64) (*domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.Goals[id]
	if !ok {
		return nil, nil
	}
	c := *g
	return &c, nil
}

// List returns all goals ordered by ID.
func (m *MockGoalRepository) List(_ context.Context) ([]*domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	goals := make([]*domain.Goal, 0, len(m.Goals))
	for _, g := range m.Goals {
		c := *g
		goals = append(goals, &c)
	}
	slices.SortFunc(goals, func(a, b *domain.Goal) int { return cmp.Compare(a.ID, b.ID) })
	return goals, nil
}

// Update applies fn to a copy of the goal and stores it if fn succeeds.
func (m *MockGoalRepository) Update(_ context.Context, id int64, fn func(*domain.Goal) error) (*domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.Goals[id]
	if !ok {
		return nil, nil
	}
	c := *g
	if err := fn(&c); err != nil {
		return nil, err
	}
	stored := c
	m.Goals[id] = &stored
	return &c, nil
}

// Delete removes a goal.
func (m *MockGoalRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Goals[id]; !ok {
		return domain.ErrGoalNotFound
	}
	delete(m.Goals, id)
	return nil
}

// MockTranscriptRepository is an in-memory domain.TranscriptRepository.
// Fields are ordered to minimize memory padding.
type MockTranscriptRepository struct {
	Transcripts  map[int64]*domain.Transcript
	Actions      map[int64][]domain.TranscriptAction
	AddActionErr error
	NextIDN      int64
	NextActionID int64
	mu           sync.Mutex
}

// NewMockTranscriptRepository creates a new MockTranscriptRepository.
func NewMockTranscriptRepository() *MockTranscriptRepository {
	return &MockTranscriptRepository{
		Transcripts:  make(map[int64]*domain.Transcript),
		Actions:      make(map[int64][]domain.TranscriptAction),
		NextIDN:      1,
		NextActionID: 1,
	}
}

func (m *MockTranscriptRepository) load(id int64) *domain.Transcript {
	tr, ok := m.Transcripts[id]
	if !ok {
		return nil
	}
	c := *tr
	c.Actions = slices.Clone(m.Actions[id])
	return &c
}

// Create stores a transcript and assigns its ID.
func (m *MockTranscriptRepository) Create(_ context.Context, tr *domain.Transcript) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tr.ID = m.NextIDN
	m.NextIDN++
	c := *tr
	c.Actions = nil
	m.Transcripts[tr.ID] = &c
	return nil
}

// Get retrieves a transcript with its actions.
func (m *MockTranscriptRepository) Get(_ context.Context, id int64) (*domain.Transcript, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(id), nil
}

// List returns all transcripts newest first.
func (m *MockTranscriptRepository) List(_ context.Context) ([]*domain.Transcript, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]*domain.Transcript, 0, len(m.Transcripts))
	for id := range m.Transcripts {
		list = append(list, m.load(id))
	}
	slices.SortFunc(list, func(a, b *domain.Transcript) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return list, nil
}

// Update applies fn to a copy of the transcript and stores it if fn succeeds.
func (m *MockTranscriptRepository) Update(_ context.Context, id int64, fn func(*domain.Transcript) error) (*domain.Transcript, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.load(id)
	if c == nil {
		return nil, nil
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	stored := *c
	stored.Actions = nil
	m.Transcripts[id] = &stored
	return c, nil
}

// AddAction appends an action record and assigns its ID while action.RunID
// holds the transcript's processing claim.
func (m *MockTranscriptRepository) AddAction(_ context.Context, action *domain.TranscriptAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddActionErr != nil {
		return m.AddActionErr
	}
	tr, ok := m.Transcripts[action.TranscriptID]
	if !ok {
		return domain.ErrInvalidReference
	}
	if err := tr.HoldsClaim(action.RunID); err != nil {
		return err
	}
	action.ID = m.NextActionID
	m.NextActionID++
	m.Actions[action.TranscriptID] = append(m.Actions[action.TranscriptID], *action)
	return nil
}

// MockExtractor is a test double for domain.Extractor.
// Fields are ordered to minimize memory padding.
type MockExtractor struct {
	Result   *domain.ExtractionResult
	Err      error
	ExtractF func(ctx context.Context, req domain.ExtractionRequest) (*domain.ExtractionResult, error)
	Requests []domain.ExtractionRequest
	mu       sync.Mutex
}

// Extract records the request and returns the configured result.
func (m *MockExtractor) Extract(ctx context.Context, req domain.ExtractionRequest) (*domain.ExtractionResult, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	fn := m.ExtractF
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// Calls returns the number of Extract calls.
func (m *MockExtractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// LogEntry is one line captured by MockLogger.
type LogEntry struct {
	Level        string
	Category     string
	Msg          string
	TranscriptID int64
}

// MockLogger records log calls in memory.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

func (m *MockLogger) add(level string, id int64, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, TranscriptID: id, Category: category, Msg: msg})
}

// Debug records a debug line.
func (m *MockLogger) Debug(id int64, category, msg string) { m.add("DEBUG", id, category, msg) }

// Info records an info line.
func (m *MockLogger) Info(id int64, category, msg string) { m.add("INFO", id, category, msg) }

// Warn records a warning line.
func (m *MockLogger) Warn(id int64, category, msg string) { m.add("WARN", id, category, msg) }

// Error records an error line.
func (m *MockLogger) Error(id int64, category, msg string) { m.add("ERROR", id, category, msg) }

// ForTranscript returns entries written for the given transcript.
func (m *MockLogger) ForTranscript(id int64) []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LogEntry
	for _, e := range m.Entries {
		if e.TranscriptID == id {
			out = append(out, e)
		}
	}
	return out
}

// MockStoreInitializer is a test double for domain.StoreInitializer.
type MockStoreInitializer struct {
	InitErr     error
	Initialized bool
}

// Initialize records the call.
func (m *MockStoreInitializer) Initialize(_ context.Context) error {
	if m.InitErr != nil {
		return m.InitErr
	}
	m.Initialized = true
	return nil
}
