package procrun

import (
	"context"
	"testing"
	"time"
)

func TestRunCapturesOutputAndExitCode(t *testing.T) {
	res, err := Run(context.Background(), "bash", []string{"-c", "echo hi; exit 0"}, 0, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("expected exit 0, got %d", res.ExitCode)
	}
	if res.Stdout != "hi\n" {
		t.Fatalf("got stdout %q", res.Stdout)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	res, err := Run(context.Background(), "bash", []string{"-c", "exit 7"}, 0, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 7 {
		t.Fatalf("expected exit 7, got %d", res.ExitCode)
	}
}

func TestRunTimeoutReportsExitCode124(t *testing.T) {
	res, err := Run(context.Background(), "bash", []string{"-c", "sleep 5"}, 50*time.Millisecond, Options{GracePeriod: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.TimedOut || res.ExitCode != timeoutExitCode {
		t.Fatalf("expected timeout with exit 124, got %+v", res)
	}
}

func TestRunContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	res, err := Run(ctx, "bash", []string{"-c", "sleep 5"}, 0, Options{GracePeriod: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TimedOut {
		t.Fatalf("plain cancellation should not be reported as timeout")
	}
	if res.ExitCode != -1 {
		t.Fatalf("expected exit -1 on cancellation, got %d", res.ExitCode)
	}
}
