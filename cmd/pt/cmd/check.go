package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pt-run/pt/internal/graph"
	"github.com/pt-run/pt/internal/render"
)

var checkFormat string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the project file and every task's dependency graph",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkFormat, "format", "text", "text|yaml")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	lp, err := loadProject()
	if err != nil {
		return err
	}

	for name := range lp.Project.Tasks {
		if _, err := graph.Build(name, lp.Project.Tasks); err != nil {
			return err
		}
	}

	if checkFormat == "yaml" {
		return render.YAMLDump(os.Stdout, lp.Project)
	}

	fmt.Fprintf(os.Stdout, "%s: %d tasks, profile %q — OK\n", lp.Project.ConfigFile, len(lp.Project.Tasks), lp.Project.Profile)
	return nil
}
