package cmd

import (
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pt-run/pt/internal/render"
)

var (
	listAll      bool
	listVerbose  bool
	listTags     []string
	listMatchAny bool
	listCategory string
	listFormat   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the project's tasks",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listAll, "all", false, "include private (underscore-prefixed) tasks")
	listCmd.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "show kind, category, and tags")
	listCmd.Flags().StringArrayVar(&listTags, "tag", nil, "filter to tasks carrying this tag (repeatable)")
	listCmd.Flags().BoolVar(&listMatchAny, "match-any", false, "with multiple --tag, match any instead of all")
	listCmd.Flags().StringVar(&listCategory, "category", "", "filter to tasks in this category")
	listCmd.Flags().StringVar(&listFormat, "format", "table", "table|yaml")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	lp, err := loadProject()
	if err != nil {
		return err
	}

	if listFormat == "yaml" {
		return render.YAMLDump(os.Stdout, lp.Project)
	}

	names := lp.Project.Names()
	if listAll {
		names = names[:0]
		for name := range lp.Project.Tasks {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	var rows []render.TaskListRow
	for _, name := range names {
		t := lp.Project.Tasks[name]
		if (len(listTags) > 0 && !tagsMatch(t.Tags, listTags, listMatchAny)) ||
			(listCategory != "" && t.Category != listCategory) {
			continue
		}
		rows = append(rows, render.TaskListRow{
			Name:        name,
			Kind:        t.Kind,
			Category:    t.Category,
			Tags:        t.Tags,
			Description: t.Description,
		})
	}

	render.TaskList(os.Stdout, rows, listVerbose)
	return nil
}
