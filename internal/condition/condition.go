// Package condition implements C9: the declarative task-admission gate
// plus condition_script execution-based gating.
package condition

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pt-run/pt/internal/task"
)

// Result reports whether a task is admitted, and if not, why.
type Result struct {
	Admitted bool
	Reason   string
}

func admit() Result { return Result{Admitted: true} }

func deny(reason string) Result { return Result{Admitted: false, Reason: reason} }

// Evaluate checks c's declarative sub-conditions against the current
// process environment and projectRoot-relative filesystem state. A nil
// c always admits. All sub-conditions AND together; Evaluate returns on
// the first denial.
func Evaluate(c *task.RawCondition, projectRoot string) Result {
	if c == nil {
		return admit()
	}

	if len(c.Platforms) > 0 && !contains(c.Platforms, runtime.GOOS) {
		return deny("platform " + runtime.GOOS + " not in " + strings.Join(c.Platforms, ", "))
	}

	for _, v := range c.EnvSet {
		if _, ok := os.LookupEnv(v); !ok {
			return deny("env var " + v + " is not set")
		}
	}

	for _, v := range c.EnvNotSet {
		if _, ok := os.LookupEnv(v); ok {
			return deny("env var " + v + " is set")
		}
	}

	for _, v := range c.EnvTrue {
		if !isTruthy(os.Getenv(v)) {
			return deny("env var " + v + " is not truthy")
		}
	}

	for k, want := range c.EnvEquals {
		if got := os.Getenv(k); got != want {
			return deny("env var " + k + " is " + got + ", want " + want)
		}
	}

	for _, p := range c.FilesExist {
		if !fileExists(resolvePath(projectRoot, p)) {
			return deny("file " + p + " does not exist")
		}
	}

	for _, p := range c.FilesNotExist {
		if fileExists(resolvePath(projectRoot, p)) {
			return deny("file " + p + " exists")
		}
	}

	return admit()
}

// EvaluateScript runs scriptPath as a shell command with env and cwd,
// admitting the task iff it exits 0. Unlike a task's own subprocess,
// condition scripts carry no separate timeout in the declarative
// model, so the caller's context governs cancellation.
func EvaluateScript(ctx context.Context, scriptPath, cwd string, env map[string]string) (Result, error) {
	cmd := exec.CommandContext(ctx, "bash", "-c", scriptPath)
	cmd.Dir = cwd
	cmd.Env = envSlice(env)

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return deny("condition_script exited non-zero"), nil
		}
		return Result{}, err
	}
	return admit(), nil
}

func envSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
