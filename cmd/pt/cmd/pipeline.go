package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	pterrors "github.com/pt-run/pt/internal/errors"
	"github.com/pt-run/pt/internal/pipeline"
	"github.com/pt-run/pt/internal/render"
	"github.com/pt-run/pt/internal/schedule"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline <name>",
	Short: "Run a named pipeline's stages",
	Args:  cobra.ExactArgs(1),
	RunE:  runPipeline,
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	name := args[0]

	lp, err := loadProject()
	if err != nil {
		return err
	}

	pl, ok := lp.Project.File.Pipelines[name]
	if !ok {
		return fmt.Errorf("pipeline %q not found", name)
	}

	ctx, cancel := signalContext()
	defer cancel()

	dispatcher := &schedule.Dispatcher{Runner: lp.Runner}
	stages, err := pipeline.Run(ctx, lp.Project, dispatcher, pl, os.Stdout)
	if err != nil {
		return err
	}

	failed := false
	for _, stage := range stages {
		render.DispatchResults(os.Stdout, stage.Results)
		if stage.Failed() {
			failed = true
		}
	}
	if failed {
		return exitWith(1, pterrors.New(pterrors.CodeTaskFailure, fmt.Sprintf("pipeline %q failed", name)))
	}
	return nil
}
