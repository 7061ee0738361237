package task

import (
	"os"
	"path/filepath"
	"testing"

	pterrors "github.com/pt-run/pt/internal/errors"
)

func strptr(s string) *string { return &s }

func identity(p string) string { return p }

func TestComputeEnvironmentLayering(t *testing.T) {
	pf := &ProjectFile{
		Env: map[string]string{"A": "global", "B": "global"},
		Profiles: map[string]RawProfile{
			"dev": {
				Env:    map[string]string{"B": "profile", "C": "profile"},
				Python: strptr("3.11"),
				Dependencies: map[string][]string{
					"web": {"fastapi"},
				},
			},
		},
		Dependencies: map[string][]string{
			"web": {"flask"},
			"lint": {"ruff"},
		},
	}
	pf.Project.Python = strptr("3.12")

	env, err := ComputeEnvironment(pf, "dev", identity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Vars["A"] != "global" || env.Vars["B"] != "profile" || env.Vars["C"] != "profile" {
		t.Fatalf("got vars %+v", env.Vars)
	}
	if env.Python != "3.11" {
		t.Fatalf("expected profile python to override project python, got %q", env.Python)
	}
	if len(env.Dependencies["web"]) != 1 || env.Dependencies["web"][0] != "fastapi" {
		t.Fatalf("expected profile dependency group to override global, got %v", env.Dependencies["web"])
	}
	if len(env.Dependencies["lint"]) != 1 || env.Dependencies["lint"][0] != "ruff" {
		t.Fatalf("expected untouched global group to survive, got %v", env.Dependencies["lint"])
	}
}

func TestComputeEnvironmentUnknownProfile(t *testing.T) {
	pf := &ProjectFile{}
	_, err := ComputeEnvironment(pf, "ghost", identity)
	if !pterrors.HasCode(err, pterrors.CodeConfigInvalidValue) {
		t.Fatalf("expected ConfigInvalidValue, got %v", err)
	}
}

func TestComputeEnvironmentReadsEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("FOO=bar\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	pf := &ProjectFile{}
	pf.Project.EnvFiles = []string{".env"}

	env, err := ComputeEnvironment(pf, "", func(p string) string { return filepath.Join(dir, p) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Vars["FOO"] != "bar" {
		t.Fatalf("got vars %+v", env.Vars)
	}
}

func TestTaskEnvOverlayAndBuiltins(t *testing.T) {
	env := &Environment{Vars: map[string]string{"A": "1", "B": "2"}}
	tk := &Task{Env: map[string]string{"B": "task", "C": "3"}}
	builtins := map[string]string{"A": "builtin-should-not-win", "D": "4"}

	result := TaskEnv(tk, env, builtins)
	if result["A"] != "1" || result["B"] != "task" || result["C"] != "3" || result["D"] != "4" {
		t.Fatalf("got %+v", result)
	}
}

func TestEffectivePython(t *testing.T) {
	env := &Environment{Python: "3.11"}
	if got := EffectivePython(&Task{}, env); got != "3.11" {
		t.Fatalf("expected fallback to environment python, got %q", got)
	}
	if got := EffectivePython(&Task{Python: "3.9"}, env); got != "3.9" {
		t.Fatalf("expected task python to win, got %q", got)
	}
}

func TestResolveDependenciesGroupWinsOverLiteral(t *testing.T) {
	env := &Environment{Dependencies: map[string][]string{
		"web": {"flask", "gunicorn"},
	}}
	tk := &Task{Dependencies: []string{"web", "requests", "web"}}

	got := ResolveDependencies(tk, env)
	want := []string{"flask", "gunicorn", "requests"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
