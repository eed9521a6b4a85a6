package cli

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/runoshun/taskboard/internal/app"
	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/testutil"
	"github.com/stretchr/testify/require"
)

// testEnv bundles a container built on in-memory repositories.
type testEnv struct {
	container   *app.Container
	tasks       *testutil.MockTaskRepository
	users       *testutil.MockUserRepository
	projects    *testutil.MockProjectRepository
	goals       *testutil.MockGoalRepository
	transcripts *testutil.MockTranscriptRepository
	extractor   *testutil.MockExtractor
	configs     *mockConfigWriter
	store       *testutil.MockStoreInitializer
}

type mockConfigWriter struct {
	err     error
	written *domain.Config
	path    string
}

func (m *mockConfigWriter) InitDataConfig(cfg *domain.Config) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.written = cfg
	return m.path, nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dataDir := t.TempDir()
	env := &testEnv{
		tasks:       testutil.NewMockTaskRepository(),
		users:       testutil.NewMockUserRepository(),
		projects:    testutil.NewMockProjectRepository(),
		goals:       testutil.NewMockGoalRepository(),
		transcripts: testutil.NewMockTranscriptRepository(),
		extractor:   &testutil.MockExtractor{},
		configs:     &mockConfigWriter{path: domain.ConfigPath(dataDir)},
		store:       &testutil.MockStoreInitializer{},
	}
	env.container = app.NewWithDeps(app.Config{DataDir: dataDir, DBPath: filepath.Join(dataDir, domain.DBFileName)}, nil, app.Deps{
		Tasks:            env.tasks,
		Users:            env.users,
		Projects:         env.projects,
		Tags:             testutil.NewMockTagRepository(),
		Goals:            env.goals,
		Transcripts:      env.transcripts,
		StoreInitializer: env.store,
		Extractor:        env.extractor,
		ConfigWriter:     env.configs,
		Clock:            &testutil.MockClock{NowTime: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
	}, nil)
	return env
}

// run executes the root command with args and returns stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(e.container, "test")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// mustRun executes args and fails the test on error.
func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, out)
	return out
}
