// Package schedule implements C8: driving a group of tasks (a multi-run
// set or a pipeline stage) under parallel/sequential, on_failure, and
// output policies.
//
// Concurrent dispatch with a bounded fan-out and per-task prefixed
// output is grounded on other_examples/…druarnfield-pit…executor.go's
// executeDAG/prefixWriter, adapted from a semaphore+sync.WaitGroup loop
// to golang.org/x/sync/errgroup, and from "verbose tees to stdout" to
// pt's own buffered-vs-interleaved output modes.
package schedule

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pt-run/pt/internal/execrun"
	"github.com/pt-run/pt/internal/task"
)

// Options configures one dispatch of a task set.
type Options struct {
	Parallel    bool
	OnFailure   task.OnFailureMode
	Output      task.OutputMode
	Concurrency int // 0 = len(tasks)
	Stdout      io.Writer
}

// Result pairs a task with what running it produced.
type Result struct {
	Task    string
	Outcome *execrun.Outcome
	Err     error
}

// Failed reports whether this result should count as a failure for
// on_failure/aggregate-status purposes.
func (r Result) Failed() bool {
	return r.Err != nil || (r.Outcome != nil && r.Outcome.Failed())
}

// Dispatcher drives task sets through a Runner.
type Dispatcher struct {
	Runner *execrun.Runner
}

// Run executes tasks per opts and returns one Result per task, in the
// order tasks was given.
func (d *Dispatcher) Run(ctx context.Context, tasks []*task.Task, opts Options) []Result {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if !opts.Parallel {
		return d.runSequential(ctx, tasks, opts)
	}
	return d.runParallel(ctx, tasks, opts)
}

func (d *Dispatcher) runSequential(ctx context.Context, tasks []*task.Task, opts Options) []Result {
	results := make([]Result, 0, len(tasks))
	failed := false

	for _, t := range tasks {
		if failed && opts.OnFailure != task.OnFailureContinue {
			results = append(results, Result{
				Task:    t.Name,
				Outcome: &execrun.Outcome{Task: t.Name, Status: execrun.StatusSkipped, Reason: "upstream failure"},
			})
			continue
		}

		res := d.runOne(ctx, t, opts, nil)
		results = append(results, res)
		if res.Failed() {
			failed = true
		}
	}

	return results
}

func (d *Dispatcher) runParallel(ctx context.Context, tasks []*task.Task, opts Options) []Result {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = len(tasks)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(concurrency)

	results := make([]Result, len(tasks))
	var mu sync.Mutex
	var stopDispatch bool
	var outputMu sync.Mutex

	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			mu.Lock()
			skip := stopDispatch
			mu.Unlock()
			if skip {
				results[i] = Result{
					Task:    t.Name,
					Outcome: &execrun.Outcome{Task: t.Name, Status: execrun.StatusSkipped, Reason: "sibling task failed"},
				}
				return nil
			}

			res := d.runOne(gctx, t, opts, &outputMu)
			results[i] = res

			if res.Failed() {
				mu.Lock()
				if opts.OnFailure == task.OnFailureFailFast || opts.OnFailure == task.OnFailureWait {
					stopDispatch = true
				}
				mu.Unlock()
				if opts.OnFailure == task.OnFailureFailFast {
					cancel()
				}
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// runOne runs a single task under opts.Output. outputMu is non-nil only
// when called from runParallel: buffered mode captures a task's whole
// output before printing it, so without serializing the print itself,
// two tasks finishing close together can interleave their "contiguous,
// grouped by task" blocks on the shared Stdout.
func (d *Dispatcher) runOne(ctx context.Context, t *task.Task, opts Options, outputMu *sync.Mutex) Result {
	if opts.Output == task.OutputInterleaved {
		prefix := []byte("[" + t.Name + "] ")
		stdout := &prefixWriter{prefix: prefix, dest: opts.Stdout}
		stderr := &prefixWriter{prefix: prefix, dest: opts.Stdout}
		outcome, err := d.Runner.Run(ctx, t, stdout, stderr)
		return Result{Task: t.Name, Outcome: outcome, Err: err}
	}

	outcome, err := d.Runner.Run(ctx, t, nil, nil)
	if outcome != nil {
		if outputMu != nil {
			outputMu.Lock()
			defer outputMu.Unlock()
		}
		fmt.Fprintf(opts.Stdout, "── %s ──\n", t.Name)
		if outcome.Stdout != "" {
			io.Copy(opts.Stdout, bytes.NewBufferString(outcome.Stdout))
		}
		if outcome.Stderr != "" {
			io.Copy(opts.Stdout, bytes.NewBufferString(outcome.Stderr))
		}
	}
	return Result{Task: t.Name, Outcome: outcome, Err: err}
}

// prefixWriter prepends prefix to each complete line written to dest,
// buffering a partial trailing line until the next Write completes it.
type prefixWriter struct {
	prefix []byte
	dest   io.Writer
	buf    []byte
}

func (pw *prefixWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.buf = append(pw.buf, p...)
	for {
		idx := bytes.IndexByte(pw.buf, '\n')
		if idx < 0 {
			break
		}
		line := pw.buf[:idx+1]
		if _, err := pw.dest.Write(pw.prefix); err != nil {
			return n, err
		}
		if _, err := pw.dest.Write(line); err != nil {
			return n, err
		}
		pw.buf = pw.buf[idx+1:]
	}
	return n, nil
}
