// Package logging writes board activity to plain-text log files under
// <data_dir>/logs. Every entry lands in taskboard.log; entries scoped to a
// transcript are also appended to transcript-N.log.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/runoshun/taskboard/internal/domain"
)

var _ domain.Logger = (*Logger)(nil)

const timeLayout = "2006-01-02 15:04:05"

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Logger appends formatted entries to the global log and per-transcript logs.
// Files are opened lazily and kept open until Close.
type Logger struct {
	files   map[string]*os.File
	now     func() time.Time
	dataDir string
	mu      sync.Mutex
	level   slog.Level
}

// New returns a Logger rooted at dataDir. An empty dataDir disables output.
func New(dataDir string, level slog.Level) *Logger {
	return &Logger{
		files:   make(map[string]*os.File),
		now:     time.Now,
		dataDir: dataDir,
		level:   level,
	}
}

// ParseLevel maps a config value to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (l *Logger) Debug(transcriptID int64, category, msg string) {
	l.write(slog.LevelDebug, transcriptID, category, msg)
}

func (l *Logger) Info(transcriptID int64, category, msg string) {
	l.write(slog.LevelInfo, transcriptID, category, msg)
}

func (l *Logger) Warn(transcriptID int64, category, msg string) {
	l.write(slog.LevelWarn, transcriptID, category, msg)
}

func (l *Logger) Error(transcriptID int64, category, msg string) {
	l.write(slog.LevelError, transcriptID, category, msg)
}

// Close closes every open log file and returns the last close error.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	for path, f := range l.files {
		if err := f.Close(); err != nil {
			lastErr = err
		}
		delete(l.files, path)
	}
	return lastErr
}

func (l *Logger) write(level slog.Level, transcriptID int64, category, msg string) {
	if l.dataDir == "" || level < l.level {
		return
	}

	scope := "global"
	paths := []string{domain.GlobalLogPath(l.dataDir)}
	if transcriptID > 0 {
		scope = fmt.Sprintf("transcript-%d", transcriptID)
		paths = append(paths, domain.TranscriptLogPath(l.dataDir, transcriptID))
	}
	entry := formatEntry(l.now(), level, scope, category, msg)

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, path := range paths {
		f, err := l.open(path)
		if err != nil {
			continue
		}
		_, _ = io.WriteString(f, entry)
	}
}

// open must be called with l.mu held.
func (l *Logger) open(path string) (*os.File, error) {
	if f, ok := l.files[path]; ok {
		return f, nil
	}
	if err := os.MkdirAll(domain.LogsDir(l.dataDir), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // owner and group may read logs
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	l.files[path] = f
	return f, nil
}

// formatEntry renders one line:
// [2026-01-02 15:04:05] [INFO] [transcript-3] [process] message
// Line breaks inside msg are folded so each entry stays on a single line.
func formatEntry(t time.Time, level slog.Level, scope, category, msg string) string {
	msg = lineBreaks.Replace(msg)
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n", t.Format(timeLayout), level, scope, category, msg)
}
