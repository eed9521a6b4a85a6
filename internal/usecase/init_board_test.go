package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockConfigWriter is a test double for domain.ConfigWriter.
type mockConfigWriter struct {
	err   error
	path  string
	calls int
}

func (m *mockConfigWriter) InitDataConfig(_ *domain.Config) (string, error) {
	m.calls++
	return m.path, m.err
}

func TestInitBoard_Execute_Success(t *testing.T) {
	// Setup
	dataDir := filepath.Join(t.TempDir(), "board")
	store := &testutil.MockStoreInitializer{}
	configs := &mockConfigWriter{path: domain.ConfigPath(dataDir)}
	uc := NewInitBoard(store, configs)

	// Execute
	out, err := uc.Execute(context.Background(), InitBoardInput{
		DataDir: dataDir,
		Config:  domain.NewDefaultConfig(dataDir),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, dataDir, out.DataDir)
	assert.Equal(t, domain.ConfigPath(dataDir), out.ConfigPath)
	assert.True(t, out.ConfigCreated)
	assert.True(t, store.Initialized)
	assert.Equal(t, 1, configs.calls)
	assert.DirExists(t, domain.LogsDir(dataDir))
}

func TestInitBoard_Execute_ExistingConfig(t *testing.T) {
	// Setup
	dataDir := t.TempDir()
	store := &testutil.MockStoreInitializer{}
	configs := &mockConfigWriter{path: domain.ConfigPath(dataDir), err: domain.ErrConfigExists}
	uc := NewInitBoard(store, configs)

	// Execute
	out, err := uc.Execute(context.Background(), InitBoardInput{DataDir: dataDir, Config: domain.NewDefaultConfig(dataDir)})

	// Assert
	require.NoError(t, err)
	assert.False(t, out.ConfigCreated)
	assert.True(t, store.Initialized, "schema is still ensured")
}

func TestInitBoard_Execute_ConfigError(t *testing.T) {
	// Setup
	store := &testutil.MockStoreInitializer{}
	uc := NewInitBoard(store, &mockConfigWriter{err: errors.New("read-only file system")})

	// Execute
	_, err := uc.Execute(context.Background(), InitBoardInput{DataDir: t.TempDir(), Config: domain.NewDefaultConfig("")})

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write config")
	assert.False(t, store.Initialized)
}

func TestInitBoard_Execute_StoreError(t *testing.T) {
	// Setup
	store := &testutil.MockStoreInitializer{InitErr: errors.New("disk full")}
	uc := NewInitBoard(store, &mockConfigWriter{})

	// Execute
	_, err := uc.Execute(context.Background(), InitBoardInput{DataDir: t.TempDir(), Config: domain.NewDefaultConfig("")})

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialize store")
}
