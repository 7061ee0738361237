package config

import (
	"os"
	"path/filepath"
	"testing"

	pterrors "github.com/pt-run/pt/internal/errors"
)

func TestDiscoverFindsPtToml(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	ptToml := filepath.Join(root, ProjectFileName)
	if err := os.WriteFile(ptToml, []byte("[project]\nname=\"x\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	file, projectRoot, err := Discover(sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file != ptToml {
		t.Fatalf("got %q want %q", file, ptToml)
	}
	if projectRoot != root {
		t.Fatalf("got root %q want %q", projectRoot, root)
	}
}

func TestDiscoverFindsPyProjectToolPt(t *testing.T) {
	root := t.TempDir()
	pyproject := filepath.Join(root, PyProjectFileName)
	content := "[build-system]\nrequires = []\n\n[tool.pt]\nname = \"x\"\n"
	if err := os.WriteFile(pyproject, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	file, _, err := Discover(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file != pyproject {
		t.Fatalf("got %q want %q", file, pyproject)
	}
}

func TestDiscoverIgnoresPyProjectWithoutToolPt(t *testing.T) {
	root := t.TempDir()
	pyproject := filepath.Join(root, PyProjectFileName)
	if err := os.WriteFile(pyproject, []byte("[build-system]\nrequires = []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := Discover(root)
	if !pterrors.HasCode(err, pterrors.CodeConfigNotFound) {
		t.Fatalf("expected ConfigNotFound, got %v", err)
	}
}

func TestDiscoverWalksUpward(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	ptToml := filepath.Join(root, "a", ProjectFileName)
	if err := os.WriteFile(ptToml, []byte("[project]\nname=\"x\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	file, root2, err := Discover(sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file != ptToml {
		t.Fatalf("got %q want %q", file, ptToml)
	}
	if root2 != filepath.Join(root, "a") {
		t.Fatalf("got root %q", root2)
	}
}

func TestDiscoverNotFound(t *testing.T) {
	root := t.TempDir()
	_, _, err := Discover(root)
	if !pterrors.HasCode(err, pterrors.CodeConfigNotFound) {
		t.Fatalf("expected ConfigNotFound, got %v", err)
	}
}
