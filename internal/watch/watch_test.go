package watch

import "testing"

func TestMatchesAppliesIgnoreBeforePatterns(t *testing.T) {
	opts := Options{
		Root:     "/proj",
		Patterns: []string{"**/*.py"},
		Ignore:   []string{"**/vendor/**"},
	}
	if !matches(opts, "/proj/src/main.py") {
		t.Fatalf("expected src/main.py to match")
	}
	if matches(opts, "/proj/vendor/pkg/main.py") {
		t.Fatalf("expected vendor path to be ignored")
	}
	if matches(opts, "/proj/src/main.go") {
		t.Fatalf("expected non-matching extension to be excluded")
	}
}

func TestMatchesWithNoPatternsAllowsEverythingNotIgnored(t *testing.T) {
	opts := Options{Root: "/proj", Ignore: []string{"**/*.log"}}
	if !matches(opts, "/proj/a.txt") {
		t.Fatalf("expected unmatched-pattern file to pass through")
	}
	if matches(opts, "/proj/debug.log") {
		t.Fatalf("expected ignored extension to be excluded")
	}
}
