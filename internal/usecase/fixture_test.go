package usecase

import (
	"time"

	"github.com/runoshun/taskboard/internal/testutil"
)

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// board wires the in-memory repositories shared by use case tests.
type board struct {
	tasks       *testutil.MockTaskRepository
	users       *testutil.MockUserRepository
	projects    *testutil.MockProjectRepository
	tags        *testutil.MockTagRepository
	goals       *testutil.MockGoalRepository
	transcripts *testutil.MockTranscriptRepository
	clock       *testutil.MockClock
	logger      *testutil.MockLogger
}

func newBoard() *board {
	return &board{
		tasks:       testutil.NewMockTaskRepository(),
		users:       testutil.NewMockUserRepository(),
		projects:    testutil.NewMockProjectRepository(),
		tags:        testutil.NewMockTagRepository(),
		goals:       testutil.NewMockGoalRepository(),
		transcripts: testutil.NewMockTranscriptRepository(),
		clock:       &testutil.MockClock{NowTime: testNow},
		logger:      &testutil.MockLogger{},
	}
}

func (b *board) createTask() *CreateTask {
	return NewCreateTask(b.tasks, b.users, b.projects, b.tags, b.clock, b.logger)
}

func (b *board) updateTask() *UpdateTask {
	return NewUpdateTask(b.tasks, b.users, b.projects, b.tags, b.clock, b.logger)
}

func ptr[T any](v T) *T {
	return &v
}
