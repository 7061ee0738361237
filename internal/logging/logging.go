// Package logging provides structured logging for pt, built on
// log/slog the way the donor codebase wires its own logger: JSON or
// text handler selected by config, optionally tee'd to a log file
// alongside stderr. The log file's path is anchored at the project
// root rather than the donor's invocation-relative baseDir.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pt-run/pt/internal/config"
)

// NewFromConfig builds a logger from a RunnerConfig's LoggingConfig. root
// is the resolved project root (the directory holding pt.toml), used to
// anchor a relative Logging.File so "pt run" from a subdirectory still
// writes the log next to the project rather than the invocation cwd.
func NewFromConfig(cfg *config.RunnerConfig, root string) (*slog.Logger, io.Closer, error) {
	level := parseLevel(cfg.Logging.Level)
	handler := newHandler(cfg.Logging.Format, os.Stderr, level)

	var closer io.Closer
	if cfg.Logging.File != "" {
		logPath := LogFilePath(root, cfg.Logging.File)
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return nil, nil, err
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		closer = file
		multi := io.MultiWriter(os.Stderr, file)
		handler = newHandler(cfg.Logging.Format, multi, level)
	}

	return slog.New(handler), closer, nil
}

// LogFilePath resolves a configured log file against root: absolute
// paths pass through untouched, relative ones are anchored at the
// project root rather than whatever directory pt happened to be
// invoked from.
func LogFilePath(root, configured string) string {
	if filepath.IsAbs(configured) {
		return configured
	}
	return filepath.Join(root, configured)
}

// NewDefault creates a default logger writing text to stderr at info level.
func NewDefault() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// NewForTest creates a silent logger for tests.
func NewForTest() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func parseLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelInfo:
		return slog.LevelInfo
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newHandler(format config.LogFormat, w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case config.LogFormatJSON:
		return slog.NewJSONHandler(w, opts)
	default:
		return slog.NewTextHandler(w, opts)
	}
}

// WithTask returns a logger with task context attached.
func WithTask(logger *slog.Logger, taskName string) *slog.Logger {
	return logger.With("task", taskName)
}

// WithProfile returns a logger with profile context attached.
func WithProfile(logger *slog.Logger, profile string) *slog.Logger {
	if profile == "" {
		return logger
	}
	return logger.With("profile", profile)
}

// WithPipeline returns a logger with pipeline context attached.
func WithPipeline(logger *slog.Logger, pipeline string) *slog.Logger {
	return logger.With("pipeline", pipeline)
}

// WithDuration returns a logger with an elapsed-time field attached,
// rounded to millisecond precision so JSON output stays stable across
// runs of the same fixture.
func WithDuration(logger *slog.Logger, elapsed time.Duration) *slog.Logger {
	return logger.With("duration_ms", elapsed.Round(time.Millisecond).Milliseconds())
}
