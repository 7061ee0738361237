// Package command implements C6: translating an effective task into an
// invocation specification for the isolated runner.
//
// Shell quoting is grounded on the donor's internal/workflow/vars.go
// ShellEscape (single-quote wrapping with the '"'"' escape for embedded
// quotes) — reused here verbatim for the kind=cmd "wrap in bash -c"
// path, since pt never interpolates untrusted data directly into a
// shell string.
package command

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pt-run/pt/internal/metadata"
	"github.com/pt-run/pt/internal/task"
)

// Spec is a fully built invocation: the isolated-runner tool name (or
// the bare shell, for a dependency-free cmd task), its argument
// vector, the child environment, working directory, and timeout.
type Spec struct {
	Tool    string
	Args    []string
	Env     map[string]string
	Cwd     string
	Timeout time.Duration
}

// Input bundles everything Build needs beyond the task itself, since a
// Task carries only its own declared fields, not the profile-layered
// environment or the parsed inline metadata of a script payload.
type Input struct {
	Tool         string
	ProjectRoot  string
	ResolvedDeps []string // t.Dependencies with groups already expanded, per internal/task.ResolveDependencies
	Python       string   // per internal/task.EffectivePython
	Env          map[string]string
	ScriptMeta   metadata.Metadata // zero value if t.Kind != KindScript or no inline block was found
}

// ResolveCwd resolves a task's cwd against projectRoot: absolute paths
// pass through, relative paths are joined, and an empty cwd falls back
// to projectRoot itself.
func ResolveCwd(projectRoot, taskCwd string) string {
	if taskCwd == "" {
		return projectRoot
	}
	if filepath.IsAbs(taskCwd) {
		return taskCwd
	}
	return filepath.Join(projectRoot, taskCwd)
}

// Build constructs the invocation spec for t.
func Build(t *task.Task, in Input) *Spec {
	cwd := ResolveCwd(in.ProjectRoot, t.Cwd)

	env := mergePythonPath(in.Env, t.PythonPath)

	spec := &Spec{
		Cwd:     cwd,
		Env:     env,
		Timeout: time.Duration(t.Timeout) * time.Second,
	}

	switch t.Kind {
	case task.KindScript:
		buildScript(t, in, spec)
	case task.KindCmd:
		buildCmd(t, in, spec)
	}

	return spec
}

func buildScript(t *task.Task, in Input, spec *Spec) {
	deps := mergeDependencies(in.ScriptMeta.Dependencies, in.ResolvedDeps)

	spec.Tool = in.Tool
	args := []string{"run"}
	for _, d := range deps {
		args = append(args, "--with", d)
	}
	python := in.Python
	if in.ScriptMeta.RequiresPython != "" && python == "" {
		python = in.ScriptMeta.RequiresPython
	}
	if python != "" {
		args = append(args, "--python", python)
	}
	args = append(args, t.Script)
	args = append(args, t.Args...)
	spec.Args = args
}

func buildCmd(t *task.Task, in Input, spec *Spec) {
	shellLine := t.Cmd
	if len(t.Args) > 0 {
		quoted := make([]string, len(t.Args))
		for i, a := range t.Args {
			quoted[i] = ShellEscape(a)
		}
		shellLine = shellLine + " " + strings.Join(quoted, " ")
	}

	if len(in.ResolvedDeps) == 0 {
		spec.Tool = "bash"
		spec.Args = []string{"-c", shellLine}
		return
	}

	spec.Tool = in.Tool
	args := []string{"run"}
	for _, d := range in.ResolvedDeps {
		args = append(args, "--with", d)
	}
	if in.Python != "" {
		args = append(args, "--python", in.Python)
	}
	args = append(args, "--", "bash", "-c", shellLine)
	spec.Args = args
}

// mergeDependencies combines a script's inline metadata dependencies
// with the task's own, per §4.6: the task's specifier wins when both
// name the same package, and merged order keeps metadata entries first
// (dropping any the task overrides) followed by the task's own.
func mergeDependencies(metaDeps, taskDeps []string) []string {
	taskNames := make(map[string]bool, len(taskDeps))
	for _, d := range taskDeps {
		taskNames[packageName(d)] = true
	}

	out := make([]string, 0, len(metaDeps)+len(taskDeps))
	for _, d := range metaDeps {
		if !taskNames[packageName(d)] {
			out = append(out, d)
		}
	}
	out = append(out, taskDeps...)
	return out
}

// packageName strips a PEP 508 version specifier/extras suffix to
// recover the bare distribution name used for conflict detection.
func packageName(spec string) string {
	for i, r := range spec {
		switch r {
		case '=', '<', '>', '!', '~', '[', ' ', ';':
			return spec[:i]
		}
	}
	return spec
}

// mergePythonPath returns a copy of env with PYTHONPATH set to
// pythonPath entries prepended to any inherited value, deduplicated,
// joined with the OS path-list separator.
func mergePythonPath(env map[string]string, pythonPath []string) map[string]string {
	out := make(map[string]string, len(env)+1)
	for k, v := range env {
		out[k] = v
	}
	if len(pythonPath) == 0 {
		return out
	}

	seen := make(map[string]bool, len(pythonPath))
	var parts []string
	for _, p := range pythonPath {
		if !seen[p] {
			seen[p] = true
			parts = append(parts, p)
		}
	}
	if existing, ok := out["PYTHONPATH"]; ok && existing != "" {
		for _, p := range strings.Split(existing, string(os.PathListSeparator)) {
			if !seen[p] {
				seen[p] = true
				parts = append(parts, p)
			}
		}
	}
	out["PYTHONPATH"] = strings.Join(parts, string(os.PathListSeparator))
	return out
}

// ShellEscape wraps s in single quotes for safe inclusion in a shell
// command line, escaping any embedded single quotes.
func ShellEscape(s string) string {
	escaped := strings.ReplaceAll(s, "'", `'"'"'`)
	return "'" + escaped + "'"
}
