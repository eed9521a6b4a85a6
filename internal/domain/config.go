package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"text/template"
	"time"
)

//go:embed config_template.toml
var configTemplateContent string

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings   []string         `toml:"-"`
	Store      StoreConfig      `toml:"store"`
	Server     ServerConfig     `toml:"server"`
	Extractor  ExtractorConfig  `toml:"extractor"`
	Processing ProcessingConfig `toml:"processing"`
	Log        LogConfig        `toml:"log"`
}

// StoreConfig holds settings for the entity store from [store] section.
type StoreConfig struct {
	Path string `toml:"path,omitempty" env:"TASKBOARD_DB_PATH"` // SQLite database file
}

// ServerConfig holds HTTP API settings from [server] section.
type ServerConfig struct {
	Address        string        `toml:"address,omitempty" env:"TASKBOARD_ADDRESS"`
	RequestTimeout time.Duration `toml:"request_timeout,omitempty" env:"TASKBOARD_REQUEST_TIMEOUT"`
}

// Extractor backends.
const (
	ExtractorOpenAI  = "openai"
	ExtractorCommand = "command"
)

// ExtractorConfig holds extraction capability settings from [extractor] section.
type ExtractorConfig struct {
	Backend      string        `toml:"backend,omitempty" env:"TASKBOARD_EXTRACTOR_BACKEND"` // "openai" or "command"
	Model        string        `toml:"model,omitempty" env:"TASKBOARD_EXTRACTOR_MODEL"`     // Chat model for openai
	BaseURL      string        `toml:"base_url,omitempty" env:"TASKBOARD_EXTRACTOR_BASE_URL"`
	APIKeyEnv    string        `toml:"api_key_env,omitempty"` // Environment variable holding the API key
	Command      string        `toml:"command,omitempty"`     // Program for the command backend
	Args         []string      `toml:"args,omitempty"`
	Timeout      time.Duration `toml:"timeout,omitempty" env:"TASKBOARD_EXTRACTOR_TIMEOUT"`
	MaxOpenTasks int           `toml:"max_open_tasks,omitempty"` // Open tasks handed to the extractor
}

// ProcessingConfig holds transcript processing settings from [processing] section.
type ProcessingConfig struct {
	Creator    string        `toml:"creator,omitempty"`     // User name recorded as creator of extracted tasks
	StaleAfter time.Duration `toml:"stale_after,omitempty"` // Age after which a processing claim may be taken over
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty" env:"TASKBOARD_LOG_LEVEL"` // Log level: debug, info, warn, error
}

// Default configuration values.
const (
	DefaultAddress        = ":8000"
	DefaultRequestTimeout = 30 * time.Second
	DefaultExtractor      = ExtractorOpenAI
	DefaultModel          = "gpt-4-turbo-preview"
	DefaultAPIKeyEnv      = "OPENAI_API_KEY"
	DefaultExtractTimeout = 60 * time.Second
	DefaultMaxOpenTasks   = 20
	DefaultStaleAfter     = 10 * time.Minute
	DefaultLogLevel       = "info"
)

// Config file names.
const (
	ConfigFileName = "config.toml"
	DBFileName     = "taskboard.db"
)

// NewDefaultConfig returns a Config populated with defaults.
// The store path is resolved relative to dataDir.
func NewDefaultConfig(dataDir string) *Config {
	return &Config{
		Store: StoreConfig{
			Path: filepath.Join(dataDir, DBFileName),
		},
		Server: ServerConfig{
			Address:        DefaultAddress,
			RequestTimeout: DefaultRequestTimeout,
		},
		Extractor: ExtractorConfig{
			Backend:      DefaultExtractor,
			Model:        DefaultModel,
			APIKeyEnv:    DefaultAPIKeyEnv,
			Timeout:      DefaultExtractTimeout,
			MaxOpenTasks: DefaultMaxOpenTasks,
		},
		Processing: ProcessingConfig{
			StaleAfter: DefaultStaleAfter,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Validate reports settings that cannot work together.
// A processing claim may only expire after the extractor call it covers has
// timed out, so a positive stale_after needs a shorter, positive extractor timeout.
func (c *Config) Validate() error {
	stale := c.Processing.StaleAfter
	if stale <= 0 {
		return nil
	}
	if c.Extractor.Timeout <= 0 {
		return fmt.Errorf("%w: [processing] stale_after requires a positive [extractor] timeout", ErrInvalidConfig)
	}
	if stale <= c.Extractor.Timeout {
		return fmt.Errorf("%w: [processing] stale_after (%s) must be longer than [extractor] timeout (%s)",
			ErrInvalidConfig, stale, c.Extractor.Timeout)
	}
	return nil
}

// RenderConfigTemplate renders the commented default config file written by init.
func RenderConfigTemplate(cfg *Config) (string, error) {
	tmpl, err := template.New("config").Parse(configTemplateContent)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		return "", err
	}
	return buf.String(), nil
}
