package metadata

import (
	"testing"

	pterrors "github.com/pt-run/pt/internal/errors"
)

func TestParseWellFormedBlock(t *testing.T) {
	content := "#!/usr/bin/env python3\n" +
		"# /// script\n" +
		"# dependencies = [\"requests\"]\n" +
		"# requires-python = \">=3.10\"\n" +
		"# ///\n" +
		"import requests\n"

	m, err := Parse(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Dependencies) != 1 || m.Dependencies[0] != "requests" {
		t.Fatalf("got dependencies %v", m.Dependencies)
	}
	if m.RequiresPython != ">=3.10" {
		t.Fatalf("got requires-python %q", m.RequiresPython)
	}
}

func TestParseNoBlock(t *testing.T) {
	m, err := Parse("print('hello')\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Dependencies) != 0 || m.RequiresPython != "" {
		t.Fatalf("expected empty metadata, got %+v", m)
	}
}

func TestParseUnclosedBlock(t *testing.T) {
	content := "# /// script\n# dependencies = []\n"
	_, err := Parse(content)
	if !pterrors.HasCode(err, pterrors.CodeConfigMalformed) {
		t.Fatalf("expected ConfigMalformed, got %v", err)
	}
}

func TestParseBadLinePrefix(t *testing.T) {
	content := "# /// script\ndependencies = []\n# ///\n"
	_, err := Parse(content)
	if !pterrors.HasCode(err, pterrors.CodeConfigMalformed) {
		t.Fatalf("expected ConfigMalformed, got %v", err)
	}
}
