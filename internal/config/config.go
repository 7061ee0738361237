// Package config defines pt's own runner configuration (logging and
// discovery knobs for the pt binary itself, distinct from a loaded
// project's pt.toml) and the project-file discovery walk of C4.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	pterrors "github.com/pt-run/pt/internal/errors"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// LoggingConfig controls how pt's own slog.Logger is constructed. It is
// not part of a project's pt.toml — it starts from Default() and the
// --verbose CLI flag raises Level to debug, mirroring the ambient-logging
// setup the donor wires from its own on-disk config.
type LoggingConfig struct {
	Level  LogLevel
	Format LogFormat
	File   string
}

// RunnerConfig holds pt's ambient settings: the resolved project root,
// the config file path that was found, and logging options. It is
// constructed once per invocation and treated as immutable thereafter.
type RunnerConfig struct {
	ProjectRoot string
	ConfigFile  string
	Logging     LoggingConfig
	GracePeriod time.Duration

	// IsolatedRunnerTool is the executable invoked for kind=script tasks
	// and for kind=cmd tasks with dependencies, using its "run --with
	// <pkg> --python <ver>" form. uv implements exactly this contract.
	IsolatedRunnerTool string
}

// Default returns sane defaults, mirroring the donor's Default().
func Default() *RunnerConfig {
	return &RunnerConfig{
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
		GracePeriod:        3 * time.Second,
		IsolatedRunnerTool: "uv",
	}
}

const (
	ProjectFileName   = "pt.toml"
	PyProjectFileName = "pyproject.toml"
)

// Discover walks upward from startDir looking for pt.toml, then for a
// pyproject.toml containing a [tool.pt] table, per spec §4.4. The first
// hit wins; its containing directory is the project root.
func Discover(startDir string) (configFile string, projectRoot string, err error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", "", pterrors.Wrap(pterrors.CodeConfigNotFound, "resolving start directory", err)
	}

	for {
		candidate := filepath.Join(dir, ProjectFileName)
		if fileExists(candidate) {
			return candidate, dir, nil
		}

		pyProject := filepath.Join(dir, PyProjectFileName)
		if fileExists(pyProject) {
			if hasToolPtTable(pyProject) {
				return pyProject, dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", "", pterrors.ConfigNotFound(startDir)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// hasToolPtTable does a cheap textual scan for a [tool.pt] table header
// rather than a full TOML parse, since we only need to decide whether
// this pyproject.toml is a candidate at all; the real decode happens in
// the loader once a file is selected.
func hasToolPtTable(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return containsTableHeader(string(data), "tool.pt")
}

func containsTableHeader(content, table string) bool {
	target := "[" + table + "]"
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == target {
			return true
		}
	}
	return false
}
