package domain

import (
	"fmt"
	"path/filepath"
)

// LogsDir returns the log directory inside the data directory.
func LogsDir(dataDir string) string {
	return filepath.Join(dataDir, "logs")
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(dataDir string) string {
	return filepath.Join(LogsDir(dataDir), "taskboard.log")
}

// TranscriptLogPath returns the path to a transcript's processing log.
func TranscriptLogPath(dataDir string, transcriptID int64) string {
	return filepath.Join(LogsDir(dataDir), fmt.Sprintf("transcript-%d.log", transcriptID))
}

// ConfigPath returns the config file path inside a config directory.
func ConfigPath(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

// GlobalConfigDir returns the global taskboard config directory under configHome.
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, "taskboard")
}
