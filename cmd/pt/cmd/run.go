package cmd

import (
	"os"

	"github.com/spf13/cobra"

	pterrors "github.com/pt-run/pt/internal/errors"
	"github.com/pt-run/pt/internal/execrun"
	"github.com/pt-run/pt/internal/graph"
	"github.com/pt-run/pt/internal/render"
	"github.com/pt-run/pt/internal/schedule"
	"github.com/pt-run/pt/internal/task"
)

var runCmd = &cobra.Command{
	Use:   "run <task> [args...]",
	Short: "Run a task and its dependencies",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	taskName, extraArgs := args[0], args[1:]

	lp, err := loadProject()
	if err != nil {
		return err
	}

	root, err := lp.Project.Resolve(taskName)
	if err != nil {
		return err
	}
	if len(extraArgs) > 0 {
		root = withExtraArgs(root, extraArgs)
	}

	g, err := graph.Build(root.Name, lp.Project.Tasks)
	if err != nil {
		return err
	}
	layers := graph.Layers(g)

	ctx, cancel := signalContext()
	defer cancel()

	dispatcher := &schedule.Dispatcher{Runner: lp.Runner}

	for i, layer := range layers {
		tasks := make([]*task.Task, 0, len(layer))
		for _, name := range layer {
			if name == root.Name && len(extraArgs) > 0 {
				tasks = append(tasks, root)
				continue
			}
			t, err := lp.Project.Resolve(name)
			if err != nil {
				return err
			}
			tasks = append(tasks, t)
		}

		isFinal := i == len(layers)-1
		results := dispatcher.Run(ctx, tasks, schedule.Options{
			Parallel:  !isFinal && root.Parallel,
			OnFailure: task.OnFailureFailFast,
			Output:    task.OutputInterleaved,
			Stdout:    os.Stdout,
		})

		exitCode := 0
		for _, r := range results {
			if r.Err != nil {
				return r.Err
			}
			if r.Outcome.Status == execrun.StatusFailed {
				exitCode = 1
			}
			if r.Outcome.Status == execrun.StatusTimeout {
				exitCode = 124
			}
		}
		if exitCode != 0 {
			if !isFinal {
				render.DispatchResults(os.Stdout, results)
			}
			return exitWith(exitCode, pterrors.TaskFailure(root.Name, exitCode, ""))
		}
	}

	return nil
}

// withExtraArgs returns a shallow copy of t with extra appended to its
// Args, used when CLI-supplied positional args trail a task name.
func withExtraArgs(t *task.Task, extra []string) *task.Task {
	cp := *t
	cp.Args = append(append([]string{}, t.Args...), extra...)
	return &cp
}

// ExitErr carries a desired process exit code alongside the triggering
// error, unwrapped by main's Execute caller.
type ExitErr struct {
	code int
	err  error
}

func (e *ExitErr) Error() string { return e.err.Error() }
func (e *ExitErr) Unwrap() error { return e.err }
func (e *ExitErr) Code() int     { return e.code }

func exitWith(code int, err error) error {
	return &ExitErr{code: code, err: err}
}
