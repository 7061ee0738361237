// Package errors defines the coded error type pt uses to report
// configuration, graph, and execution failures with a stable code and
// structured detail, so callers can branch on failure kind without
// string-matching messages.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	CodeConfigNotFound     = "CONFIG_001"
	CodeConfigUnknownField = "CONFIG_002"
	CodeConfigInvalidValue = "CONFIG_003"
	CodeConfigInvariant    = "CONFIG_004"
	CodeConfigMalformed    = "CONFIG_005"

	CodeCycleExtend    = "CYCLE_001"
	CodeCycleDependsOn = "CYCLE_002"

	CodeTaskNotFound  = "TASK_001"
	CodeTaskAmbiguous = "TASK_002"

	CodeConditionDenied = "COND_001"

	CodeHookFailure = "HOOK_001"

	CodeTaskFailure = "RUN_001"
	CodeTimeout     = "RUN_002"
	CodeInterrupted = "RUN_003"
)

// PtError is the coded error type every pt component raises.
type PtError struct {
	Code    string
	Message string
	Details map[string]any
	Cause   error
}

func (e *PtError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PtError) Unwrap() error { return e.Cause }

func (e *PtError) WithDetail(key string, value any) *PtError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func (e *PtError) WithCause(err error) *PtError {
	e.Cause = err
	return e
}

func (e *PtError) MarshalJSON() ([]byte, error) {
	aux := struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details,omitempty"`
		Cause   string         `json:"cause,omitempty"`
	}{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
	if e.Cause != nil {
		aux.Cause = e.Cause.Error()
	}
	return json.Marshal(aux)
}

func New(code, message string) *PtError {
	return &PtError{Code: code, Message: message}
}

func Newf(code, format string, args ...any) *PtError {
	return &PtError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code, message string, err error) *PtError {
	return &PtError{Code: code, Message: message, Cause: err}
}

func Wrapf(code string, err error, format string, args ...any) *PtError {
	return &PtError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// HasCode reports whether err is (or wraps) a *PtError with the given code.
func HasCode(err error, code string) bool {
	var pe *PtError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// Code returns the code of err if it is (or wraps) a *PtError, else "".
func Code(err error) string {
	var pe *PtError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// Config-kind constructors.

func ConfigNotFound(startDir string) *PtError {
	return Newf(CodeConfigNotFound, "no pt.toml or pyproject.toml [tool.pt] found above %s", startDir).
		WithDetail("start_dir", startDir)
}

func ConfigUnknownField(file, table, field string) *PtError {
	return Newf(CodeConfigUnknownField, "unknown field %q in [%s]", field, table).
		WithDetail("file", file).WithDetail("table", table).WithDetail("field", field)
}

func ConfigInvalidValue(field string, reason string) *PtError {
	return Newf(CodeConfigInvalidValue, "invalid value for %q: %s", field, reason).
		WithDetail("field", field)
}

func ConfigInvariant(invariant, reason string) *PtError {
	return Newf(CodeConfigInvariant, "%s: %s", invariant, reason).
		WithDetail("invariant", invariant)
}

func ConfigMalformed(file string, line int, reason string) *PtError {
	return Newf(CodeConfigMalformed, "%s:%d: %s", file, line, reason).
		WithDetail("file", file).WithDetail("line", line)
}

// Cycle-kind constructors.

func CycleExtend(chain []string) *PtError {
	return Newf(CodeCycleExtend, "extend cycle: %s", formatCycle(chain)).
		WithDetail("chain", chain)
}

func CycleDependsOn(chain []string) *PtError {
	return Newf(CodeCycleDependsOn, "depends_on cycle: %s", formatCycle(chain)).
		WithDetail("chain", chain)
}

func formatCycle(chain []string) string {
	out := ""
	for i, n := range chain {
		if i > 0 {
			out += " → "
		}
		out += n
	}
	return out
}

// TaskNotFound-kind constructor.

func TaskNotFound(name string) *PtError {
	return Newf(CodeTaskNotFound, "task %q not found", name).WithDetail("task", name)
}

func TaskAmbiguous(name string, matches []string) *PtError {
	return Newf(CodeTaskAmbiguous, "alias %q matches multiple tasks: %v", name, matches).
		WithDetail("name", name).WithDetail("matches", matches)
}

// ConditionDenied is not a fatal error kind — it is reported as a skip
// reason, never returned as an error from the orchestrator.
func ConditionDenied(reason string) *PtError {
	return Newf(CodeConditionDenied, "%s", reason)
}

// HookFailure-kind constructor.

func HookFailure(task, hook string, exitCode int) *PtError {
	return Newf(CodeHookFailure, "hook %s for task %q exited %d", hook, task, exitCode).
		WithDetail("task", task).WithDetail("hook", hook).WithDetail("exit_code", exitCode)
}

// TaskFailure/Timeout/Interrupted constructors.

func TaskFailure(task string, exitCode int, stderrTail string) *PtError {
	return Newf(CodeTaskFailure, "task %q failed with exit code %d", task, exitCode).
		WithDetail("task", task).WithDetail("exit_code", exitCode).WithDetail("stderr_tail", stderrTail)
}

func Timeout(task string, seconds int) *PtError {
	return Newf(CodeTimeout, "task %q timed out after %ds", task, seconds).
		WithDetail("task", task).WithDetail("timeout_seconds", seconds).WithDetail("exit_code", 124)
}

func Interrupted() *PtError {
	return New(CodeInterrupted, "interrupted")
}
