package cmd

import (
	"os"

	"github.com/spf13/cobra"

	pterrors "github.com/pt-run/pt/internal/errors"
	"github.com/pt-run/pt/internal/execrun"
	"github.com/pt-run/pt/internal/task"
)

var execCmd = &cobra.Command{
	Use:   "exec <script> [args...]",
	Short: "Run a script directly, outside the task graph",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	scriptPath, extraArgs := args[0], args[1:]

	lp, err := loadProject()
	if err != nil {
		return err
	}

	synthetic := &task.Task{
		Name:   "exec:" + scriptPath,
		Kind:   task.KindScript,
		Script: scriptPath,
		Args:   extraArgs,
	}

	ctx, cancel := signalContext()
	defer cancel()

	outcome, err := lp.Runner.Run(ctx, synthetic, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}
	switch outcome.Status {
	case execrun.StatusSucceeded:
		return nil
	case execrun.StatusTimeout:
		return exitWith(124, pterrors.Timeout(synthetic.Name, synthetic.Timeout))
	default:
		return exitWith(1, pterrors.TaskFailure(synthetic.Name, outcome.ExitCode, outcome.Stderr))
	}
}
