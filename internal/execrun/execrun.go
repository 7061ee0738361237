// Package execrun implements C7: executing a single effective task end
// to end — condition gate, before_task hook, the subprocess itself,
// success/failure branching, after_* hooks, and global error-handler
// dispatch.
package execrun

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/pt-run/pt/internal/command"
	"github.com/pt-run/pt/internal/condition"
	"github.com/pt-run/pt/internal/logging"
	"github.com/pt-run/pt/internal/metadata"
	"github.com/pt-run/pt/internal/procrun"
	"github.com/pt-run/pt/internal/task"
)

// Status is a task's terminal state for one invocation.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusIgnored   Status = "ignored"
	StatusTimeout   Status = "timeout"
)

// Outcome records what happened running one task.
type Outcome struct {
	Task     string
	Status   Status
	ExitCode int
	Reason   string // set for Skipped
	Stdout   string
	Stderr   string
}

func (o *Outcome) Failed() bool {
	return o.Status == StatusFailed || o.Status == StatusTimeout
}

// Runner executes tasks against a resolved project.
type Runner struct {
	Project    *task.Project
	Tool       string
	Logger     *slog.Logger
	ReadScript func(path string) (metadata.Metadata, error)

	git gitInfo
}

// NewRunner builds a Runner for proj. toolName names the isolated
// runner executable (e.g. "uv").
func NewRunner(proj *task.Project, toolName string, logger *slog.Logger) *Runner {
	return &Runner{
		Project: proj,
		Tool:    toolName,
		Logger:  logger,
		git:     detectGitInfo(proj.Root),
	}
}

// Run executes t per the §4.7 algorithm. stdout/stderr, if non-nil,
// receive the task subprocess's streams live (used by the scheduler's
// interleaved output mode); if nil, the streams are captured into the
// returned Outcome instead (buffered mode).
func (r *Runner) Run(ctx context.Context, t *task.Task, stdout, stderr io.Writer) (*Outcome, error) {
	return r.run(ctx, t, false, stdout, stderr)
}

func (r *Runner) run(ctx context.Context, t *task.Task, isErrorHandler bool, stdout, stderr io.Writer) (*Outcome, error) {
	log := logging.WithTask(r.Logger, t.Name)
	started := time.Now()

	builtins := r.runBuiltins(t)
	env := task.TaskEnv(t, r.Project.Environment, builtins)
	cwd := command.ResolveCwd(r.Project.Root, t.Cwd)

	gate := condition.Evaluate(t.Condition, r.Project.Root)
	if !gate.Admitted {
		log.Info("task skipped by condition", "reason", gate.Reason)
		return &Outcome{Task: t.Name, Status: StatusSkipped, Reason: gate.Reason}, nil
	}
	if t.ConditionScript != "" {
		sres, err := condition.EvaluateScript(ctx, t.ConditionScript, cwd, env)
		if err != nil {
			return nil, fmt.Errorf("task %q: condition_script: %w", t.Name, err)
		}
		if !sres.Admitted {
			log.Info("task skipped by condition_script")
			return &Outcome{Task: t.Name, Status: StatusSkipped, Reason: "condition_script exited non-zero"}, nil
		}
	}

	if t.Hooks.BeforeTask != "" {
		res, err := r.runHook(ctx, t, "before_task", cwd, env, nil)
		if err != nil {
			return nil, fmt.Errorf("task %q: before_task hook: %w", t.Name, err)
		}
		if res.ExitCode != 0 {
			log.Warn("before_task hook failed, task skipped", "exit_code", res.ExitCode)
			return &Outcome{Task: t.Name, Status: StatusSkipped, Reason: "before_task hook failed"}, nil
		}
	}

	spec := r.buildSpec(t, env)
	result, err := procrun.Run(ctx, spec.Tool, spec.Args, spec.Timeout, procrun.Options{
		Dir:    spec.Cwd,
		Env:    envSlice(spec.Env),
		Stdout: stdout,
		Stderr: stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("task %q: %w", t.Name, err)
	}

	outcome := &Outcome{Task: t.Name, ExitCode: result.ExitCode, Stdout: result.Stdout, Stderr: result.Stderr}

	if result.ExitCode == 0 {
		outcome.Status = StatusSucceeded
		r.runAfterHook(ctx, t, "after_success", cwd, env, result.ExitCode, log)
		r.runAfterHook(ctx, t, "after_task", cwd, env, result.ExitCode, log)
		logging.WithDuration(log, time.Since(started)).Info("task succeeded")
		return outcome, nil
	}

	if result.TimedOut {
		outcome.Status = StatusTimeout
	} else if t.IgnoreErrors {
		outcome.Status = StatusIgnored
	} else {
		outcome.Status = StatusFailed
	}

	r.runAfterHook(ctx, t, "after_failure", cwd, env, result.ExitCode, log)
	r.runAfterHook(ctx, t, "after_task", cwd, env, result.ExitCode, log)

	durLog := logging.WithDuration(log, time.Since(started))
	if outcome.Status == StatusTimeout {
		durLog.Error("task timed out", "exit_code", outcome.ExitCode)
	} else if outcome.Status == StatusIgnored {
		durLog.Warn("task failed, ignored", "exit_code", outcome.ExitCode)
	} else {
		durLog.Error("task failed", "exit_code", outcome.ExitCode)
	}

	if outcome.Failed() && !isErrorHandler {
		r.dispatchErrorHandler(ctx, t, outcome, log)
	}

	return outcome, nil
}

func (r *Runner) buildSpec(t *task.Task, env map[string]string) *command.Spec {
	var meta metadata.Metadata
	if t.Kind == task.KindScript && r.ReadScript != nil {
		if m, err := r.ReadScript(t.Script); err == nil {
			meta = m
		}
	}
	return command.Build(t, command.Input{
		Tool:         r.Tool,
		ProjectRoot:  r.Project.Root,
		ResolvedDeps: task.ResolveDependencies(t, r.Project.Environment),
		Python:       task.EffectivePython(t, r.Project.Environment),
		Env:          env,
		ScriptMeta:   meta,
	})
}

// dispatchErrorHandler invokes the project's on_error_task, if any,
// unless the failing task is itself the handler — this is pt's
// non-recursion guard (spec §9 open question).
func (r *Runner) dispatchErrorHandler(ctx context.Context, failed *task.Task, outcome *Outcome, log *slog.Logger) {
	handlerName := r.Project.File.Project.OnErrorTask
	if handlerName == nil || *handlerName == "" || *handlerName == failed.Name {
		return
	}
	handler, err := r.Project.Resolve(*handlerName)
	if err != nil {
		log.Error("on_error_task not found", "handler", *handlerName)
		return
	}

	stderrTail := outcome.Stderr
	if len(stderrTail) > 4096 {
		stderrTail = stderrTail[len(stderrTail)-4096:]
	}

	handlerBuiltins := r.runBuiltins(handler)
	handlerEnv := task.TaskEnv(handler, r.Project.Environment, handlerBuiltins)
	handlerEnv["PT_FAILED_TASK"] = failed.Name
	handlerEnv["PT_ERROR_CODE"] = strconv.Itoa(outcome.ExitCode)
	handlerEnv["PT_ERROR_STDERR"] = stderrTail

	hres, err := r.runWithEnv(ctx, handler, handlerEnv)
	if err != nil {
		log.Error("on_error_task failed to run", "handler", handler.Name, "error", err)
	} else if hres.Failed() {
		log.Error("on_error_task failed", "handler", handler.Name, "exit_code", hres.ExitCode)
	}
}

// runWithEnv runs t's subprocess with a pre-built environment, used by
// the error-handler path so PT_FAILED_TASK/PT_ERROR_CODE/PT_ERROR_STDERR
// are visible to the handler's own subprocess and its after_task hook.
// It runs only the subprocess and the after_task hook: conditions,
// condition_script, before_task, after_success and after_failure are not
// evaluated or run, and a timeout is reported as StatusFailed. Its output
// is always captured rather than streamed, since it runs outside the
// scheduler's own output-mode handling.
func (r *Runner) runWithEnv(ctx context.Context, t *task.Task, env map[string]string) (*Outcome, error) {
	log := logging.WithTask(r.Logger, t.Name)
	cwd := command.ResolveCwd(r.Project.Root, t.Cwd)

	spec := r.buildSpec(t, env)
	result, err := procrun.Run(ctx, spec.Tool, spec.Args, spec.Timeout, procrun.Options{
		Dir: spec.Cwd,
		Env: envSlice(env),
	})
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{Task: t.Name, ExitCode: result.ExitCode, Stdout: result.Stdout, Stderr: result.Stderr}
	if result.ExitCode == 0 {
		outcome.Status = StatusSucceeded
	} else if t.IgnoreErrors {
		outcome.Status = StatusIgnored
	} else {
		outcome.Status = StatusFailed
	}
	r.runAfterHook(ctx, t, "after_task", cwd, env, result.ExitCode, log)
	return outcome, nil
}

func (r *Runner) runHook(ctx context.Context, t *task.Task, hookType, cwd string, env map[string]string, exitCode *int) (*procrun.Result, error) {
	script := r.hookScript(t, hookType)
	hookEnv := make(map[string]string, len(env)+3)
	for k, v := range env {
		hookEnv[k] = v
	}
	hookEnv["PT_TASK_NAME"] = t.Name
	hookEnv["PT_HOOK_TYPE"] = hookType
	if exitCode != nil {
		hookEnv["PT_TASK_EXIT_CODE"] = strconv.Itoa(*exitCode)
	}

	return procrun.Run(ctx, "bash", []string{"-c", script}, 0, procrun.Options{
		Dir: cwd,
		Env: envSlice(hookEnv),
	})
}

func (r *Runner) runAfterHook(ctx context.Context, t *task.Task, hookType, cwd string, env map[string]string, exitCode int, log *slog.Logger) {
	if r.hookScript(t, hookType) == "" {
		return
	}
	res, err := r.runHook(ctx, t, hookType, cwd, env, &exitCode)
	if err != nil {
		log.Warn("hook failed to run", "hook", hookType, "error", err)
	} else if res.ExitCode != 0 {
		log.Warn("hook failed", "hook", hookType, "exit_code", res.ExitCode)
	}
}

func (r *Runner) hookScript(t *task.Task, hookType string) string {
	switch hookType {
	case "before_task":
		return t.Hooks.BeforeTask
	case "after_success":
		return t.Hooks.AfterSuccess
	case "after_failure":
		return t.Hooks.AfterFailure
	case "after_task":
		return t.Hooks.AfterTask
	default:
		return ""
	}
}
