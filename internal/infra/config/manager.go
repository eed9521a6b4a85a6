package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/taskboard/internal/domain"
)

// Ensure Manager implements domain.ConfigWriter.
var _ domain.ConfigWriter = (*Manager)(nil)

// Info describes a config file on disk.
type Info struct {
	Path    string
	Content string
	Exists  bool
}

// Manager manages configuration files.
type Manager struct {
	dataDir       string // Data directory holding config.toml
	globalConfDir string // Path to global config directory (e.g., ~/.config/taskboard)
}

// NewManager creates a new Manager.
func NewManager(dataDir string) *Manager {
	return &Manager{
		dataDir:       dataDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewManagerWithGlobalDir creates a new Manager with a custom global config directory.
// This is useful for testing.
func NewManagerWithGlobalDir(dataDir, globalConfDir string) *Manager {
	return &Manager{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
	}
}

// DataConfigInfo returns information about the data directory config file.
func (m *Manager) DataConfigInfo() Info {
	return m.info(domain.ConfigPath(m.dataDir))
}

// GlobalConfigInfo returns information about the global config file.
func (m *Manager) GlobalConfigInfo() Info {
	if m.globalConfDir == "" {
		return Info{}
	}
	return m.info(domain.ConfigPath(m.globalConfDir))
}

func (m *Manager) info(path string) Info {
	content, err := os.ReadFile(path)
	if err != nil {
		return Info{Path: path}
	}
	return Info{
		Path:    path,
		Content: string(content),
		Exists:  true,
	}
}

// InitDataConfig creates the data directory and writes the commented default config.
// Returns domain.ErrConfigExists if the file is already there.
func (m *Manager) InitDataConfig(cfg *domain.Config) (string, error) {
	if err := os.MkdirAll(m.dataDir, 0o700); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}

	path := domain.ConfigPath(m.dataDir)
	if _, err := os.Stat(path); err == nil {
		return path, domain.ErrConfigExists
	}

	content, err := domain.RenderConfigTemplate(cfg)
	if err != nil {
		return "", fmt.Errorf("render config template: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}

// fileConfig mirrors domain.Config with durations spelled the way config files write them.
type fileConfig struct {
	Store struct {
		Path string `toml:"path"`
	} `toml:"store"`
	Server struct {
		Address        string `toml:"address"`
		RequestTimeout string `toml:"request_timeout"`
	} `toml:"server"`
	Extractor struct {
		Backend      string   `toml:"backend"`
		Model        string   `toml:"model"`
		BaseURL      string   `toml:"base_url,omitempty"`
		APIKeyEnv    string   `toml:"api_key_env"`
		Command      string   `toml:"command,omitempty"`
		Args         []string `toml:"args,omitempty"`
		Timeout      string   `toml:"timeout"`
		MaxOpenTasks int      `toml:"max_open_tasks"`
	} `toml:"extractor"`
	Processing struct {
		Creator    string `toml:"creator,omitempty"`
		StaleAfter string `toml:"stale_after"`
	} `toml:"processing"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

// Marshal renders the effective configuration as TOML.
func Marshal(cfg *domain.Config) (string, error) {
	var f fileConfig
	f.Store.Path = cfg.Store.Path
	f.Server.Address = cfg.Server.Address
	f.Server.RequestTimeout = cfg.Server.RequestTimeout.String()
	f.Extractor.Backend = cfg.Extractor.Backend
	f.Extractor.Model = cfg.Extractor.Model
	f.Extractor.BaseURL = cfg.Extractor.BaseURL
	f.Extractor.APIKeyEnv = cfg.Extractor.APIKeyEnv
	f.Extractor.Command = cfg.Extractor.Command
	f.Extractor.Args = cfg.Extractor.Args
	f.Extractor.Timeout = cfg.Extractor.Timeout.String()
	f.Extractor.MaxOpenTasks = cfg.Extractor.MaxOpenTasks
	f.Processing.Creator = cfg.Processing.Creator
	f.Processing.StaleAfter = cfg.Processing.StaleAfter.String()
	f.Log.Level = cfg.Log.Level

	out, err := toml.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(out), nil
}
