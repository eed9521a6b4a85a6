// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/taskboard/internal/domain"
)

// Environment variables that locate the data directory.
const (
	EnvHome        = "TASKBOARD_HOME"
	envXDGData     = "XDG_DATA_HOME"
	envXDGConfig   = "XDG_CONFIG_HOME"
	dataDirDefault = ".local/share"
)

// LoadOptions selects which sources Load consults.
type LoadOptions struct {
	IgnoreGlobal bool
	IgnoreData   bool
	IgnoreEnv    bool
}

// Loader loads configuration from TOML files and the environment.
type Loader struct {
	dataDir       string // Data directory holding taskboard.db and config.toml
	globalConfDir string // Path to global config directory (e.g., ~/.config/taskboard)
}

// NewLoader creates a new Loader.
func NewLoader(dataDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(dataDir, globalConfDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
	}
}

// ResolveDataDir returns the data directory: $TASKBOARD_HOME, then
// $XDG_DATA_HOME/taskboard, then ~/.local/share/taskboard.
func ResolveDataDir(getenv func(string) string) (string, error) {
	if dir := getenv(EnvHome); dir != "" {
		return filepath.Abs(dir)
	}
	if dir := getenv(envXDGData); dir != "" {
		return filepath.Join(dir, "taskboard"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve data directory: %w", err)
	}
	return filepath.Join(home, dataDirDefault, "taskboard"), nil
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv(envXDGConfig)
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// Load returns the merged configuration.
// Precedence, later wins: defaults, global file, data dir file, environment.
func (l *Loader) Load() (*domain.Config, error) {
	return l.LoadWithOptions(LoadOptions{})
}

// LoadGlobal returns only the global configuration.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(domain.ConfigPath(l.globalConfDir))
}

// LoadData returns only the data directory configuration.
func (l *Loader) LoadData() (*domain.Config, error) {
	return l.loadFile(domain.ConfigPath(l.dataDir))
}

// LoadWithOptions returns the merged configuration with options to ignore sources.
func (l *Loader) LoadWithOptions(opts LoadOptions) (*domain.Config, error) {
	base := domain.NewDefaultConfig(l.dataDir)

	if !opts.IgnoreGlobal {
		global, err := l.LoadGlobal()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if global != nil {
			base = mergeConfigs(base, global)
		}
	}

	if !opts.IgnoreData {
		data, err := l.LoadData()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if data != nil {
			base = mergeConfigs(base, data)
		}
	}

	if !opts.IgnoreEnv {
		if err := cleanenv.UpdateEnv(base); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
	}

	if !filepath.IsAbs(base.Store.Path) {
		base.Store.Path = filepath.Join(l.dataDir, base.Store.Path)
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}
	return base, nil
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return convertRawToDomainConfig(raw), nil
}

// sectionReader converts one raw TOML table and collects warnings for it.
type sectionReader struct {
	warnings *[]string
	name     string
}

func (r sectionReader) unknown(key string) {
	*r.warnings = append(*r.warnings, fmt.Sprintf("unknown key in [%s]: %s", r.name, key))
}

func (r sectionReader) invalid(key string, v any) {
	*r.warnings = append(*r.warnings, fmt.Sprintf("invalid value for [%s] %s: %v", r.name, key, v))
}

func (r sectionReader) str(key string, v any, dst *string) {
	if s, ok := v.(string); ok {
		*dst = s
		return
	}
	r.invalid(key, v)
}

func (r sectionReader) duration(key string, v any, dst *time.Duration) {
	s, ok := v.(string)
	if !ok {
		r.invalid(key, v)
		return
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		r.invalid(key, v)
		return
	}
	*dst = d
}

func (r sectionReader) positiveInt(key string, v any, dst *int) {
	n, ok := v.(int64)
	if !ok || n <= 0 {
		r.invalid(key, v)
		return
	}
	*dst = int(n)
}

func (r sectionReader) strings(key string, v any, dst *[]string) {
	items, ok := v.([]any)
	if !ok {
		r.invalid(key, v)
		return
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			r.invalid(key, v)
			return
		}
		out = append(out, s)
	}
	*dst = out
}

// convertRawToDomainConfig converts the raw map to domain config and collects warnings.
func convertRawToDomainConfig(raw map[string]any) *domain.Config {
	res := &domain.Config{}
	var warnings []string

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
			continue
		}
		r := sectionReader{name: section, warnings: &warnings}

		switch section {
		case "store":
			for k, v := range m {
				switch k {
				case "path":
					r.str(k, v, &res.Store.Path)
				default:
					r.unknown(k)
				}
			}
		case "server":
			for k, v := range m {
				switch k {
				case "address":
					r.str(k, v, &res.Server.Address)
				case "request_timeout":
					r.duration(k, v, &res.Server.RequestTimeout)
				default:
					r.unknown(k)
				}
			}
		case "extractor":
			for k, v := range m {
				switch k {
				case "backend":
					r.str(k, v, &res.Extractor.Backend)
				case "model":
					r.str(k, v, &res.Extractor.Model)
				case "base_url":
					r.str(k, v, &res.Extractor.BaseURL)
				case "api_key_env":
					r.str(k, v, &res.Extractor.APIKeyEnv)
				case "command":
					r.str(k, v, &res.Extractor.Command)
				case "args":
					r.strings(k, v, &res.Extractor.Args)
				case "timeout":
					r.duration(k, v, &res.Extractor.Timeout)
				case "max_open_tasks":
					r.positiveInt(k, v, &res.Extractor.MaxOpenTasks)
				default:
					r.unknown(k)
				}
			}
		case "processing":
			for k, v := range m {
				switch k {
				case "creator":
					r.str(k, v, &res.Processing.Creator)
				case "stale_after":
					r.duration(k, v, &res.Processing.StaleAfter)
				default:
					r.unknown(k)
				}
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					r.str(k, v, &res.Log.Level)
				default:
					r.unknown(k)
				}
			}
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
		}
	}

	sort.Strings(warnings)
	res.Warnings = warnings
	return res
}

// mergeConfigs merges two configs, with override taking precedence.
// Zero values in override leave base untouched.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := *base
	result.Warnings = append(append([]string{}, base.Warnings...), override.Warnings...)
	result.Extractor.Args = append([]string(nil), base.Extractor.Args...)

	setString(&result.Store.Path, override.Store.Path)
	setString(&result.Server.Address, override.Server.Address)
	setDuration(&result.Server.RequestTimeout, override.Server.RequestTimeout)

	setString(&result.Extractor.Backend, override.Extractor.Backend)
	setString(&result.Extractor.Model, override.Extractor.Model)
	setString(&result.Extractor.BaseURL, override.Extractor.BaseURL)
	setString(&result.Extractor.APIKeyEnv, override.Extractor.APIKeyEnv)
	setString(&result.Extractor.Command, override.Extractor.Command)
	if override.Extractor.Args != nil {
		result.Extractor.Args = append([]string(nil), override.Extractor.Args...)
	}
	setDuration(&result.Extractor.Timeout, override.Extractor.Timeout)
	if override.Extractor.MaxOpenTasks > 0 {
		result.Extractor.MaxOpenTasks = override.Extractor.MaxOpenTasks
	}

	setString(&result.Processing.Creator, override.Processing.Creator)
	setDuration(&result.Processing.StaleAfter, override.Processing.StaleAfter)

	setString(&result.Log.Level, override.Log.Level)

	return &result
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}
