package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pt-run/pt/internal/render"
	"github.com/pt-run/pt/internal/schedule"
	"github.com/pt-run/pt/internal/task"
	"github.com/pt-run/pt/internal/watch"
)

var (
	watchPatterns []string
	watchIgnore   []string
	watchDebounce float64
	watchNoClear  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <task>",
	Short: "Re-run a task whenever matching files change",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringArrayVar(&watchPatterns, "pattern", nil, "glob to watch, relative to project root (repeatable; default: everything)")
	watchCmd.Flags().StringArrayVar(&watchIgnore, "ignore", nil, "glob to exclude (repeatable)")
	watchCmd.Flags().Float64Var(&watchDebounce, "debounce", 0.3, "seconds to wait for quiescence before re-running")
	watchCmd.Flags().BoolVar(&watchNoClear, "no-clear", false, "don't clear the screen between runs")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	taskName := args[0]

	lp, err := loadProject()
	if err != nil {
		return err
	}

	t, err := lp.Project.Resolve(taskName)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	dispatcher := &schedule.Dispatcher{Runner: lp.Runner}
	runOnce := func(trigger string) {
		if !watchNoClear {
			fmt.Print("\033[H\033[2J")
		}
		if trigger != "" {
			fmt.Printf("Changed: %s\n", trigger)
		}
		results := dispatcher.Run(ctx, []*task.Task{t}, schedule.Options{
			Output: task.OutputInterleaved,
			Stdout: os.Stdout,
		})
		render.DispatchResults(os.Stdout, results)
	}

	runOnce("")

	return watch.Run(ctx, watch.Options{
		Root:     lp.Project.Root,
		Patterns: watchPatterns,
		Ignore:   watchIgnore,
		Debounce: time.Duration(watchDebounce * float64(time.Second)),
	}, runOnce)
}
