package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pt-run/pt/internal/render"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List tags in use and how many tasks carry each",
	RunE:  runTags,
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}

func runTags(cmd *cobra.Command, args []string) error {
	lp, err := loadProject()
	if err != nil {
		return err
	}
	render.Tags(os.Stdout, lp.Project)
	return nil
}
