package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/runoshun/taskboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte(content), 0o644))
}

func TestLoader_Load_Defaults(t *testing.T) {
	// Setup
	dataDir := t.TempDir()

	// Execute
	cfg, err := NewLoaderWithGlobalDir(dataDir, t.TempDir()).LoadWithOptions(LoadOptions{IgnoreEnv: true})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, domain.DBFileName), cfg.Store.Path)
	assert.Equal(t, domain.DefaultAddress, cfg.Server.Address)
	assert.Equal(t, domain.DefaultExtractTimeout, cfg.Extractor.Timeout)
	assert.Equal(t, domain.DefaultStaleAfter, cfg.Processing.StaleAfter)
	assert.Empty(t, cfg.Warnings)
}

func TestLoader_Load_DataConfigOnly(t *testing.T) {
	// Setup
	dataDir := t.TempDir()
	writeConfig(t, dataDir, `
[server]
address = "127.0.0.1:9000"
request_timeout = "5s"

[extractor]
backend = "command"
command = "my-extractor"
args = ["--fast", "--json"]
timeout = "90s"
max_open_tasks = 5

[processing]
creator = "Alice"
stale_after = "2m"

[log]
level = "debug"
`)

	// Execute
	cfg, err := NewLoaderWithGlobalDir(dataDir, t.TempDir()).LoadWithOptions(LoadOptions{IgnoreEnv: true})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, domain.ExtractorCommand, cfg.Extractor.Backend)
	assert.Equal(t, "my-extractor", cfg.Extractor.Command)
	assert.Equal(t, []string{"--fast", "--json"}, cfg.Extractor.Args)
	assert.Equal(t, 90*time.Second, cfg.Extractor.Timeout)
	assert.Equal(t, 5, cfg.Extractor.MaxOpenTasks)
	assert.Equal(t, "Alice", cfg.Processing.Creator)
	assert.Equal(t, 2*time.Minute, cfg.Processing.StaleAfter)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched values keep their defaults
	assert.Equal(t, domain.DefaultModel, cfg.Extractor.Model)
}

func TestLoader_Load_DataOverridesGlobal(t *testing.T) {
	// Setup
	dataDir := t.TempDir()
	globalDir := t.TempDir()
	writeConfig(t, globalDir, `
[extractor]
model = "gpt-4o"
api_key_env = "TEAM_KEY"

[log]
level = "warn"
`)
	writeConfig(t, dataDir, `
[log]
level = "error"
`)

	// Execute
	cfg, err := NewLoaderWithGlobalDir(dataDir, globalDir).LoadWithOptions(LoadOptions{IgnoreEnv: true})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.Extractor.Model)
	assert.Equal(t, "TEAM_KEY", cfg.Extractor.APIKeyEnv)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoader_Load_IgnoreSources(t *testing.T) {
	// Setup
	dataDir := t.TempDir()
	globalDir := t.TempDir()
	writeConfig(t, globalDir, "[log]\nlevel = \"warn\"\n")
	writeConfig(t, dataDir, "[server]\naddress = \":1234\"\n")
	loader := NewLoaderWithGlobalDir(dataDir, globalDir)

	// Execute
	noGlobal, err := loader.LoadWithOptions(LoadOptions{IgnoreGlobal: true, IgnoreEnv: true})
	require.NoError(t, err)
	noData, err := loader.LoadWithOptions(LoadOptions{IgnoreData: true, IgnoreEnv: true})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, domain.DefaultLogLevel, noGlobal.Log.Level)
	assert.Equal(t, ":1234", noGlobal.Server.Address)
	assert.Equal(t, "warn", noData.Log.Level)
	assert.Equal(t, domain.DefaultAddress, noData.Server.Address)
}

func TestLoader_Load_EnvOverridesFiles(t *testing.T) {
	// Setup
	dataDir := t.TempDir()
	writeConfig(t, dataDir, `
[server]
address = ":7000"

[log]
level = "warn"
`)
	t.Setenv("TASKBOARD_ADDRESS", ":7555")
	t.Setenv("TASKBOARD_EXTRACTOR_TIMEOUT", "15s")

	// Execute
	cfg, err := NewLoaderWithGlobalDir(dataDir, t.TempDir()).Load()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, ":7555", cfg.Server.Address)
	assert.Equal(t, 15*time.Second, cfg.Extractor.Timeout)
	// Unset variables leave file values alone
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoader_Load_RelativeStorePath(t *testing.T) {
	// Setup
	dataDir := t.TempDir()
	writeConfig(t, dataDir, "[store]\npath = \"boards/main.db\"\n")

	// Execute
	cfg, err := NewLoaderWithGlobalDir(dataDir, t.TempDir()).LoadWithOptions(LoadOptions{IgnoreEnv: true})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "boards", "main.db"), cfg.Store.Path)
}

func TestLoader_Load_Warnings(t *testing.T) {
	// Setup
	dataDir := t.TempDir()
	writeConfig(t, dataDir, `
colour = "blue"

[extractor]
timeout = "soon"
max_open_tasks = -1
temperature = 0.9

[workers]
default = "claude"
`)

	// Execute
	cfg, err := NewLoaderWithGlobalDir(dataDir, t.TempDir()).LoadWithOptions(LoadOptions{IgnoreEnv: true})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{
		"invalid value for [extractor] max_open_tasks: -1",
		"invalid value for [extractor] timeout: soon",
		"unknown key in [extractor]: temperature",
		"unknown section: colour",
		"unknown section: workers",
	}, cfg.Warnings)
	// Invalid values fall back to defaults
	assert.Equal(t, domain.DefaultExtractTimeout, cfg.Extractor.Timeout)
	assert.Equal(t, domain.DefaultMaxOpenTasks, cfg.Extractor.MaxOpenTasks)
}

func TestLoader_Load_RejectsClaimExpiringBeforeExtractor(t *testing.T) {
	// Setup
	dataDir := t.TempDir()
	writeConfig(t, dataDir, `
[extractor]
timeout = "5m"

[processing]
stale_after = "1m"
`)

	// Execute
	_, err := NewLoaderWithGlobalDir(dataDir, t.TempDir()).LoadWithOptions(LoadOptions{IgnoreEnv: true})

	// Assert
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "stale_after")
}

func TestLoader_Load_InvalidTOML(t *testing.T) {
	// Setup
	dataDir := t.TempDir()
	writeConfig(t, dataDir, "[log\nlevel = ")

	// Execute
	_, err := NewLoaderWithGlobalDir(dataDir, t.TempDir()).LoadWithOptions(LoadOptions{IgnoreEnv: true})

	// Assert
	assert.Error(t, err)
}

func TestLoader_LoadGlobal_NoDir(t *testing.T) {
	_, err := NewLoaderWithGlobalDir(t.TempDir(), "").LoadGlobal()

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolveDataDir(t *testing.T) {
	env := func(m map[string]string) func(string) string {
		return func(k string) string { return m[k] }
	}

	t.Run("taskboard home wins", func(t *testing.T) {
		dir, err := ResolveDataDir(env(map[string]string{EnvHome: "/srv/board", "XDG_DATA_HOME": "/xdg"}))
		require.NoError(t, err)
		assert.Equal(t, "/srv/board", dir)
	})

	t.Run("xdg data home", func(t *testing.T) {
		dir, err := ResolveDataDir(env(map[string]string{"XDG_DATA_HOME": "/xdg"}))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/xdg", "taskboard"), dir)
	})

	t.Run("home fallback", func(t *testing.T) {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skip("no home directory")
		}
		dir, err := ResolveDataDir(env(nil))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".local", "share", "taskboard"), dir)
	})
}
