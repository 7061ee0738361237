// Package watch implements D1: a debounced file-watch loop backing the
// `watch` subcommand, re-invoking a callback whenever a matched file
// changes.
//
// No donor equivalent exists (the teacher corpus has no file watcher);
// the debounce-with-timer idiom here follows fsnotify's own documented
// usage pattern (a single timer reset on every fsnotify.Event, fired
// once quiescence is reached), and glob matching against --pattern/
// --ignore uses doublestar for full "**" recursive-glob support that
// filepath.Match lacks.
package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	pterrors "github.com/pt-run/pt/internal/errors"
)

// Options configures a watch loop.
type Options struct {
	Root     string
	Patterns []string // doublestar globs, relative to Root; empty means "everything"
	Ignore   []string // doublestar globs to exclude
	Debounce time.Duration
}

// Run watches Root (recursively) and invokes onChange once per
// debounced burst of matching filesystem events, until ctx is
// cancelled. onChange receives the path that triggered the burst.
func Run(ctx context.Context, opts Options, onChange func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return pterrors.Wrap(pterrors.CodeConfigInvariant, "creating file watcher", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, opts.Root); err != nil {
		return err
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	var timer *time.Timer
	var pending string
	timerC := make(chan struct{})

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !matches(opts, event.Name) {
				continue
			}
			pending = event.Name
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() { timerC <- struct{}{} })

		case <-timerC:
			onChange(pending)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return pterrors.Wrap(pterrors.CodeConfigInvariant, "watching files", err)
		}
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if base := filepath.Base(path); base != "." && (base == ".git" || base == "node_modules" || base == ".venv") {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

func matches(opts Options, path string) bool {
	rel, err := filepath.Rel(opts.Root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	for _, ignore := range opts.Ignore {
		if ok, _ := doublestar.Match(ignore, rel); ok {
			return false
		}
	}
	if len(opts.Patterns) == 0 {
		return true
	}
	for _, pattern := range opts.Patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
