package command

import (
	"os"
	"reflect"
	"testing"

	"github.com/pt-run/pt/internal/metadata"
	"github.com/pt-run/pt/internal/task"
)

func TestBuildScriptMergesMetadataAndTaskDeps(t *testing.T) {
	tk := &task.Task{Kind: task.KindScript, Script: "build.py", Dependencies: []string{"rich"}}
	in := Input{
		Tool:         "uv",
		ProjectRoot:  "/proj",
		ResolvedDeps: []string{"rich"},
		ScriptMeta:   metadata.Metadata{Dependencies: []string{"requests"}},
	}

	spec := Build(tk, in)
	want := []string{"run", "--with", "requests", "--with", "rich", "build.py"}
	if !reflect.DeepEqual(spec.Args, want) {
		t.Fatalf("got %v, want %v", spec.Args, want)
	}
}

func TestBuildScriptTaskDepWinsOnConflict(t *testing.T) {
	tk := &task.Task{Kind: task.KindScript, Script: "build.py", Dependencies: []string{"requests==2.0"}}
	in := Input{
		Tool:         "uv",
		ResolvedDeps: []string{"requests==2.0"},
		ScriptMeta:   metadata.Metadata{Dependencies: []string{"requests>=1.0"}},
	}

	spec := Build(tk, in)
	want := []string{"run", "--with", "requests==2.0", "build.py"}
	if !reflect.DeepEqual(spec.Args, want) {
		t.Fatalf("got %v, want %v", spec.Args, want)
	}
}

func TestBuildCmdWithoutDepsBypassesRunner(t *testing.T) {
	tk := &task.Task{Kind: task.KindCmd, Cmd: "echo hello", Args: []string{"world"}}
	spec := Build(tk, Input{Tool: "uv", ProjectRoot: "/proj"})

	if spec.Tool != "bash" {
		t.Fatalf("expected bare bash, got %q", spec.Tool)
	}
	want := []string{"-c", "echo hello 'world'"}
	if !reflect.DeepEqual(spec.Args, want) {
		t.Fatalf("got %v, want %v", spec.Args, want)
	}
}

func TestBuildCmdWithDepsWrapsRunner(t *testing.T) {
	tk := &task.Task{Kind: task.KindCmd, Cmd: "pytest"}
	in := Input{Tool: "uv", ResolvedDeps: []string{"pytest"}, Python: "3.12"}
	spec := Build(tk, in)

	want := []string{"run", "--with", "pytest", "--python", "3.12", "--", "bash", "-c", "pytest"}
	if !reflect.DeepEqual(spec.Args, want) {
		t.Fatalf("got %v, want %v", spec.Args, want)
	}
}

func TestShellEscapeHandlesEmbeddedQuote(t *testing.T) {
	got := ShellEscape("it's here")
	want := `'it'"'"'s here'`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMergePythonPathDedupesAndPrepends(t *testing.T) {
	env := map[string]string{"PYTHONPATH": "/existing"}
	tk := &task.Task{Kind: task.KindCmd, Cmd: "true", PythonPath: []string{"/new", "/existing"}}
	spec := Build(tk, Input{Env: env})

	got := spec.Env["PYTHONPATH"]
	want := "/new" + string(os.PathListSeparator) + "/existing"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
