package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commandExtractorConfig makes the command backend answer with a fixed payload.
const commandExtractorConfig = `
[extractor]
backend = "command"
command = "sh"
args = ["-c", '''cat >/dev/null; echo '{"summary": "Docs planned", "actions": [{"type": "create", "title": "Write docs", "assignee_name": "alice", "priority": "High"}]}' ''']

[processing]
creator = "Alice"
`

func newTestContainer(t *testing.T, configContent string) *Container {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dataDir := t.TempDir()
	if configContent != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, domain.ConfigFileName), []byte(configContent), 0o600))
	}

	c, err := New(dataDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNew_Defaults(t *testing.T) {
	c := newTestContainer(t, "")

	assert.Equal(t, filepath.Join(c.Config.DataDir, domain.DBFileName), c.Config.DBPath)
	assert.Equal(t, domain.DefaultAddress, c.AppConfig.Server.Address)
	assert.Empty(t, c.AppConfig.Warnings)
	assert.NotNil(t, c.Extractor)
}

func TestNew_InvalidExtractorDoesNotBlockBoard(t *testing.T) {
	// Setup
	c := newTestContainer(t, "[extractor]\nbackend = \"telepathy\"\n")
	ctx := context.Background()
	require.NoError(t, c.StoreInitializer.Initialize(ctx))

	// Execute
	_, userErr := c.CreateUserUseCase().Execute(ctx, usecase.CreateUserInput{Name: "Alice"})
	_, processErr := c.ProcessTranscriptUseCase()

	// Assert
	assert.NoError(t, userErr)
	assert.ErrorIs(t, processErr, domain.ErrValidation)
}

func TestContainer_InitBoard(t *testing.T) {
	// Setup
	c := newTestContainer(t, "")
	uc := c.InitBoardUseCase()
	in := usecase.InitBoardInput{DataDir: c.Config.DataDir, Config: domain.NewDefaultConfig(c.Config.DataDir)}

	// Execute
	first, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	// Assert
	assert.True(t, first.ConfigCreated)
	assert.False(t, second.ConfigCreated)
	assert.FileExists(t, first.ConfigPath)
	assert.FileExists(t, c.Config.DBPath)
	assert.DirExists(t, domain.LogsDir(c.Config.DataDir))
}

func TestContainer_EndToEnd(t *testing.T) {
	// Setup
	c := newTestContainer(t, commandExtractorConfig)
	ctx := context.Background()
	require.NoError(t, c.StoreInitializer.Initialize(ctx))

	alice, err := c.CreateUserUseCase().Execute(ctx, usecase.CreateUserInput{Name: "Alice"})
	require.NoError(t, err)
	created, err := c.CreateTaskUseCase().Execute(ctx, usecase.CreateTaskInput{
		Title:     "Ship v1",
		Priority:  domain.PriorityHigh,
		CreatorID: alice.User.ID,
	})
	require.NoError(t, err)

	done := domain.StatusDone
	_, err = c.UpdateTaskUseCase().Execute(ctx, usecase.UpdateTaskInput{TaskID: created.Task.ID, Status: &done})
	require.NoError(t, err)

	tr, err := c.CreateTranscriptUseCase().Execute(ctx, usecase.CreateTranscriptInput{
		Title: "Planning",
		Text:  "Alice will write the docs.",
	})
	require.NoError(t, err)

	// Execute
	uc, err := c.ProcessTranscriptUseCase()
	require.NoError(t, err)
	out, err := uc.Execute(ctx, usecase.ProcessTranscriptInput{TranscriptID: tr.Transcript.ID})
	require.NoError(t, err)

	// Assert: the extracted task exists with the resolved assignee
	assert.Equal(t, "Docs planned", out.Summary)
	require.Len(t, out.CreatedTaskIDs, 1)
	shown, err := c.ShowTaskUseCase().Execute(ctx, usecase.ShowTaskInput{TaskID: out.CreatedTaskIDs[0]})
	require.NoError(t, err)
	assert.Equal(t, "Write docs", shown.Task.Title)
	assert.Equal(t, domain.PriorityHigh, shown.Task.Priority)
	require.NotNil(t, shown.Task.AssigneeID)
	assert.Equal(t, alice.User.ID, *shown.Task.AssigneeID)

	// Assert: the transcript is processed with one recorded action
	after, err := c.ShowTranscriptUseCase().Execute(ctx, usecase.ShowTranscriptInput{TranscriptID: tr.Transcript.ID})
	require.NoError(t, err)
	assert.True(t, after.Transcript.Processed)
	require.Len(t, after.Transcript.Actions, 1)
	assert.Equal(t, out.RunID, after.Transcript.Actions[0].RunID)

	// Assert: stats see both tasks
	stats, err := c.ComputeStatsUseCase().Execute(ctx)
	require.NoError(t, err)
	d := stats.Stats.Dashboard()
	assert.Equal(t, 2, d.Total)
	assert.Equal(t, 1, d.Completed)
	assert.Equal(t, 1, d.Todo)
	assert.Equal(t, map[string]int{"Alice": 1}, d.ByUser)

	// Assert: processing left an audit log for the transcript
	assert.FileExists(t, domain.TranscriptLogPath(c.Config.DataDir, tr.Transcript.ID))
}
