package cmd

import (
	"testing"

	"github.com/pt-run/pt/internal/task"
)

func TestWithExtraArgsAppendsWithoutMutatingOriginal(t *testing.T) {
	original := &task.Task{Name: "build", Args: []string{"--flag"}}
	extended := withExtraArgs(original, []string{"positional"})

	if len(original.Args) != 1 {
		t.Fatalf("expected original task's Args untouched, got %v", original.Args)
	}
	want := []string{"--flag", "positional"}
	if len(extended.Args) != 2 || extended.Args[0] != want[0] || extended.Args[1] != want[1] {
		t.Fatalf("got %v, want %v", extended.Args, want)
	}
}

func TestExitErrCarriesCode(t *testing.T) {
	err := exitWith(124, task_fakeErr{"timed out"})
	ee, ok := err.(*ExitErr)
	if !ok {
		t.Fatalf("expected *ExitErr, got %T", err)
	}
	if ee.Code() != 124 {
		t.Fatalf("expected code 124, got %d", ee.Code())
	}
	if ee.Error() != "timed out" {
		t.Fatalf("got message %q", ee.Error())
	}
}

type task_fakeErr struct{ msg string }

func (e task_fakeErr) Error() string { return e.msg }
