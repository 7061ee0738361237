package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	pterrors "github.com/pt-run/pt/internal/errors"
	"github.com/pt-run/pt/internal/render"
	"github.com/pt-run/pt/internal/schedule"
	"github.com/pt-run/pt/internal/task"
)

var (
	multiParallel   bool
	multiSequential bool
	multiOnFailure  string
	multiOutput     string
	multiTags       []string
	multiMatchAny   bool
	multiCategory   string
)

var multiCmd = &cobra.Command{
	Use:   "multi <t1> <t2> ...",
	Short: "Run a set of tasks together under one scheduling policy",
	RunE:  runMulti,
}

func init() {
	multiCmd.Flags().BoolVar(&multiParallel, "parallel", false, "dispatch the set concurrently")
	multiCmd.Flags().BoolVar(&multiSequential, "sequential", false, "dispatch the set one after another (default)")
	multiCmd.Flags().StringVar(&multiOnFailure, "on-failure", "fail-fast", "fail-fast|wait|continue")
	multiCmd.Flags().StringVar(&multiOutput, "output", "buffered", "buffered|interleaved")
	multiCmd.Flags().StringArrayVar(&multiTags, "tag", nil, "select tasks carrying this tag (repeatable)")
	multiCmd.Flags().BoolVar(&multiMatchAny, "match-any", false, "with multiple --tag, match any instead of all")
	multiCmd.Flags().StringVar(&multiCategory, "category", "", "select tasks in this category")
	rootCmd.AddCommand(multiCmd)
}

func runMulti(cmd *cobra.Command, args []string) error {
	if multiParallel && multiSequential {
		return fmt.Errorf("--parallel and --sequential are mutually exclusive")
	}

	lp, err := loadProject()
	if err != nil {
		return err
	}

	var tasks []*task.Task
	if len(args) > 0 {
		for _, name := range args {
			t, err := lp.Project.Resolve(name)
			if err != nil {
				return err
			}
			tasks = append(tasks, t)
		}
	} else {
		tasks = selectByFilters(lp.Project, multiTags, multiMatchAny, multiCategory)
		if len(tasks) == 0 {
			return fmt.Errorf("no tasks named and no --tag/--category filter matched anything")
		}
	}

	onFailure := task.OnFailureMode(multiOnFailure)
	switch onFailure {
	case task.OnFailureFailFast, task.OnFailureWait, task.OnFailureContinue:
	default:
		return fmt.Errorf("invalid --on-failure %q", multiOnFailure)
	}

	output := task.OutputMode(multiOutput)
	switch output {
	case task.OutputBuffered, task.OutputInterleaved:
	default:
		return fmt.Errorf("invalid --output %q", multiOutput)
	}

	ctx, cancel := signalContext()
	defer cancel()

	dispatcher := &schedule.Dispatcher{Runner: lp.Runner}
	results := dispatcher.Run(ctx, tasks, schedule.Options{
		Parallel:  multiParallel,
		OnFailure: onFailure,
		Output:    output,
		Stdout:    os.Stdout,
	})

	render.DispatchResults(os.Stdout, results)

	for _, r := range results {
		if r.Failed() {
			return exitWith(1, pterrors.New(pterrors.CodeTaskFailure, "one or more tasks failed"))
		}
	}
	return nil
}

// selectByFilters returns every non-private task matching the given
// tags (AND'd unless matchAny) and, if non-empty, category.
func selectByFilters(proj *task.Project, tags []string, matchAny bool, category string) []*task.Task {
	var out []*task.Task
	for _, name := range proj.Names() {
		t := proj.Tasks[name]
		if category != "" && t.Category != category {
			continue
		}
		if len(tags) > 0 && !tagsMatch(t.Tags, tags, matchAny) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func tagsMatch(taskTags, want []string, matchAny bool) bool {
	has := make(map[string]bool, len(taskTags))
	for _, t := range taskTags {
		has[t] = true
	}
	if matchAny {
		for _, w := range want {
			if has[w] {
				return true
			}
		}
		return false
	}
	for _, w := range want {
		if !has[w] {
			return false
		}
	}
	return true
}
