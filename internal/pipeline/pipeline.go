// Package pipeline sequences a RawPipeline's stages through the
// scheduler (C8), applying pipeline-level on_failure across stage
// boundaries.
package pipeline

import (
	"context"
	"io"

	pterrors "github.com/pt-run/pt/internal/errors"
	"github.com/pt-run/pt/internal/schedule"
	"github.com/pt-run/pt/internal/task"
)

// StageResult is one stage's dispatch outcome.
type StageResult struct {
	Index   int
	Results []schedule.Result
}

// Failed reports whether any task in the stage counts as a failure.
func (s StageResult) Failed() bool {
	for _, r := range s.Results {
		if r.Failed() {
			return true
		}
	}
	return false
}

// Run executes pipeline's stages in order against proj. A stage
// failure aborts subsequent stages unless the pipeline's on_failure is
// continue, which runs every stage regardless.
func Run(ctx context.Context, proj *task.Project, dispatcher *schedule.Dispatcher, pl task.RawPipeline, stdout io.Writer) ([]StageResult, error) {
	var out []StageResult
	aborted := false

	for i, stage := range pl.Stages {
		if aborted && pl.OnFailure != task.OnFailureContinue {
			break
		}

		tasks := make([]*task.Task, 0, len(stage.Tasks))
		for _, name := range stage.Tasks {
			t, err := proj.Resolve(name)
			if err != nil {
				return out, pterrors.Wrapf(pterrors.CodeTaskNotFound, err, "pipeline stage %d", i)
			}
			tasks = append(tasks, t)
		}

		results := dispatcher.Run(ctx, tasks, schedule.Options{
			Parallel:  stage.Parallel,
			OnFailure: pl.OnFailure,
			Output:    pl.Output,
			Stdout:    stdout,
		})

		sr := StageResult{Index: i, Results: results}
		out = append(out, sr)

		if sr.Failed() {
			aborted = true
		}
	}

	return out, nil
}
