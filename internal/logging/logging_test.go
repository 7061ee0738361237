package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pt-run/pt/internal/config"
)

func TestNewFromConfigWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "logs", "pt.log")

	cfg := config.Default()
	cfg.Logging.File = logFile
	cfg.Logging.Format = config.LogFormatJSON

	logger, closer, err := NewFromConfig(cfg, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closer.Close()

	logger.Info("hello", "key", "value")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !bytes.Contains(data, []byte("hello")) {
		t.Fatalf("log file missing message: %s", data)
	}
}

func TestNewForTestIsSilent(t *testing.T) {
	logger := NewForTest()
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("test logger should not log at info level")
	}
}

func TestWithTaskAddsField(t *testing.T) {
	logger := WithTask(NewForTest(), "build")
	if logger == nil {
		t.Fatalf("expected non-nil logger")
	}
}

func TestLogFilePathAnchorsRelativeToRoot(t *testing.T) {
	got := LogFilePath("/proj", "logs/pt.log")
	want := filepath.Join("/proj", "logs/pt.log")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLogFilePathLeavesAbsoluteUntouched(t *testing.T) {
	got := LogFilePath("/proj", "/var/log/pt.log")
	if got != "/var/log/pt.log" {
		t.Fatalf("expected absolute path untouched, got %q", got)
	}
}
