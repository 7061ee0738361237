package execrun

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/pt-run/pt/internal/task"
)

func testProject(t *testing.T, toml string) *task.Project {
	t.Helper()
	dir := t.TempDir()
	path := dir + "/pt.toml"
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	p, err := task.LoadProject(path, dir, "", "")
	if err != nil {
		t.Fatalf("loading project: %v", err)
	}
	return p
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func TestRunSucceedingCmdTask(t *testing.T) {
	proj := testProject(t, `
[tasks.hello]
cmd = "echo hi"
`)
	tk, err := proj.Resolve("hello")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	r := NewRunner(proj, "uv", silentLogger())
	outcome, err := r.Run(context.Background(), tk, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Status != StatusSucceeded {
		t.Fatalf("expected succeeded, got %+v", outcome)
	}
	if outcome.Stdout != "hi\n" {
		t.Fatalf("got stdout %q", outcome.Stdout)
	}
}

func TestRunFailingCmdTaskDispatchesErrorHandler(t *testing.T) {
	dir := t.TempDir()
	marker := dir + "/handler-ran"
	proj := testProject(t, `
[project]
on_error_task = "handle"

[tasks.fails]
cmd = "exit 3"

[tasks.handle]
cmd = "touch `+marker+`"
`)
	tk, err := proj.Resolve("fails")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	r := NewRunner(proj, "uv", silentLogger())
	outcome, err := r.Run(context.Background(), tk, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Status != StatusFailed || outcome.ExitCode != 3 {
		t.Fatalf("expected failed/3, got %+v", outcome)
	}

	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("expected error handler to have run and created marker: %v", err)
	}
}

func TestRunTimeoutDispatchesErrorHandlerWithCode124(t *testing.T) {
	dir := t.TempDir()
	marker := dir + "/handler-ran"
	proj := testProject(t, `
[project]
on_error_task = "handle"

[tasks.slow]
cmd = "sleep 10"
timeout = 1

[tasks.handle]
cmd = "touch `+marker+`"
`)
	tk, err := proj.Resolve("slow")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	r := NewRunner(proj, "uv", silentLogger())
	outcome, err := r.Run(context.Background(), tk, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Status != StatusTimeout || outcome.ExitCode != 124 {
		t.Fatalf("expected timeout/124, got %+v", outcome)
	}

	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("expected error handler to have run on timeout and created marker: %v", err)
	}
}

func TestRunIgnoreErrorsSuppressesFailure(t *testing.T) {
	proj := testProject(t, `
[tasks.fails]
cmd = "exit 9"
ignore_errors = true
`)
	tk, err := proj.Resolve("fails")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	r := NewRunner(proj, "uv", silentLogger())
	outcome, err := r.Run(context.Background(), tk, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Status != StatusIgnored {
		t.Fatalf("expected ignored, got %+v", outcome)
	}
}

func TestRunConditionDeniedSkipsWithoutSpawning(t *testing.T) {
	proj := testProject(t, `
[tasks.linux-only]
cmd = "echo should-not-run"

[tasks.linux-only.condition]
platforms = ["nonexistent-os"]
`)
	tk, err := proj.Resolve("linux-only")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	r := NewRunner(proj, "uv", silentLogger())
	outcome, err := r.Run(context.Background(), tk, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Status != StatusSkipped {
		t.Fatalf("expected skipped, got %+v", outcome)
	}
}

func TestRunBeforeTaskHookFailurePreventsSpawn(t *testing.T) {
	dir := t.TempDir()
	marker := dir + "/task-ran"
	proj := testProject(t, `
[tasks.guarded]
cmd = "touch `+marker+`"
before_task = "exit 1"
`)
	tk, err := proj.Resolve("guarded")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	r := NewRunner(proj, "uv", silentLogger())
	outcome, err := r.Run(context.Background(), tk, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Status != StatusSkipped {
		t.Fatalf("expected skipped, got %+v", outcome)
	}
	if _, err := os.Stat(marker); err == nil {
		t.Fatalf("task subprocess should never have been spawned")
	}
}
