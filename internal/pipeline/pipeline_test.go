package pipeline

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/pt-run/pt/internal/execrun"
	"github.com/pt-run/pt/internal/schedule"
	"github.com/pt-run/pt/internal/task"
)

func testSetup(t *testing.T, toml string) (*task.Project, *schedule.Dispatcher) {
	t.Helper()
	dir := t.TempDir()
	path := dir + "/pt.toml"
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	proj, err := task.LoadProject(path, dir, "", "")
	if err != nil {
		t.Fatalf("loading project: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	return proj, &schedule.Dispatcher{Runner: execrun.NewRunner(proj, "uv", logger)}
}

func TestRunStopsAtFailingStageUnderFailFast(t *testing.T) {
	proj, d := testSetup(t, `
[tasks.a]
cmd = "exit 1"

[tasks.b]
cmd = "exit 0"
`)
	pl := task.RawPipeline{
		Stages: []task.RawStage{
			{Tasks: []string{"a"}},
			{Tasks: []string{"b"}},
		},
		OnFailure: task.OnFailureFailFast,
	}

	results, err := Run(context.Background(), proj, d, pl, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected only first stage to run, got %d stages", len(results))
	}
	if !results[0].Failed() {
		t.Fatalf("expected stage 0 to be marked failed")
	}
}

func TestRunContinuesAcrossStagesUnderContinue(t *testing.T) {
	proj, d := testSetup(t, `
[tasks.a]
cmd = "exit 1"

[tasks.b]
cmd = "exit 0"
`)
	pl := task.RawPipeline{
		Stages: []task.RawStage{
			{Tasks: []string{"a"}},
			{Tasks: []string{"b"}},
		},
		OnFailure: task.OnFailureContinue,
	}

	results, err := Run(context.Background(), proj, d, pl, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected both stages to run, got %d", len(results))
	}
	if results[1].Failed() {
		t.Fatalf("expected stage 1 (task b) to succeed")
	}
}
