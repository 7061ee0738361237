package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pt-run/pt/internal/execrun"
	"github.com/pt-run/pt/internal/schedule"
)

func TestDispatchResultsRendersExitCodeAndReason(t *testing.T) {
	var buf bytes.Buffer
	DispatchResults(&buf, []schedule.Result{
		{Task: "build", Outcome: &execrun.Outcome{Task: "build", Status: execrun.StatusSucceeded, ExitCode: 0}},
		{Task: "test", Outcome: &execrun.Outcome{Task: "test", Status: execrun.StatusSkipped, Reason: "upstream failure"}},
	})

	out := buf.String()
	if !strings.Contains(out, "build") || !strings.Contains(out, "test") {
		t.Fatalf("expected both task names in output, got %q", out)
	}
	if !strings.Contains(out, "upstream failure") {
		t.Fatalf("expected skip reason in output, got %q", out)
	}
}

func TestTaskListVerboseIncludesTagsColumn(t *testing.T) {
	var buf bytes.Buffer
	TaskList(&buf, []TaskListRow{
		{Name: "lint", Tags: []string{"ci", "fast"}, Description: "run linter"},
	}, true)

	out := buf.String()
	if !strings.Contains(out, "ci,fast") {
		t.Fatalf("expected joined tags in verbose output, got %q", out)
	}
}
