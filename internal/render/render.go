// Package render formats task lists, tag indexes, and dispatch results
// for the CLI's stdout, and provides a stateless YAML debug projection.
//
// Table rendering is grounded on dagu's internal/agent/reporter.go
// renderSummary/renderTable (table.NewWriter/AppendHeader/AppendRow/
// Render); status coloring is grounded on dagu's
// internal/agent/progress.go statusText/statusIcon switch-on-status
// pattern, repointed at pt's own execrun.Status instead of dagu's
// scheduler.NodeStatus.
package render

import (
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/pt-run/pt/internal/execrun"
	"github.com/pt-run/pt/internal/schedule"
	"github.com/pt-run/pt/internal/task"
)

// StatusText renders a colored word for a task outcome's status.
func StatusText(s execrun.Status) string {
	switch s {
	case execrun.StatusSucceeded:
		return color.GreenString("succeeded")
	case execrun.StatusFailed:
		return color.RedString("failed")
	case execrun.StatusTimeout:
		return color.RedString("timeout")
	case execrun.StatusSkipped:
		return color.New(color.Faint).Sprint("skipped")
	case execrun.StatusIgnored:
		return color.YellowString("ignored")
	default:
		return string(s)
	}
}

// TaskListRow describes one task for the list table.
type TaskListRow struct {
	Name        string
	Kind        task.Kind
	Category    string
	Tags        []string
	Description string
}

// TaskList writes a table of rows to w.
func TaskList(w io.Writer, rows []TaskListRow, verbose bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if verbose {
		t.AppendHeader(table.Row{"Task", "Kind", "Category", "Tags", "Description"})
		for _, r := range rows {
			t.AppendRow(table.Row{r.Name, string(r.Kind), r.Category, joinTags(r.Tags), r.Description})
		}
	} else {
		t.AppendHeader(table.Row{"Task", "Description"})
		for _, r := range rows {
			t.AppendRow(table.Row{r.Name, r.Description})
		}
	}
	t.Render()
}

// Tags writes a sorted tag -> task-count table to w.
func Tags(w io.Writer, proj *task.Project) {
	counts := make(map[string]int)
	for _, name := range proj.Names() {
		for _, tg := range proj.Tasks[name].Tags {
			counts[tg]++
		}
	}
	names := make([]string, 0, len(counts))
	for tg := range counts {
		names = append(names, tg)
	}
	sort.Strings(names)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Tag", "Tasks"})
	for _, tg := range names {
		t.AppendRow(table.Row{tg, counts[tg]})
	}
	t.Render()
}

// DispatchResults writes a one-line-per-task summary table for a
// schedule.Dispatcher or pipeline run.
func DispatchResults(w io.Writer, results []schedule.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Task", "Status", "Exit", "Reason"})
	for _, r := range results {
		if r.Outcome == nil {
			t.AppendRow(table.Row{r.Task, color.RedString("error"), "", errString(r.Err)})
			continue
		}
		t.AppendRow(table.Row{r.Task, StatusText(r.Outcome.Status), r.Outcome.ExitCode, r.Outcome.Reason})
	}
	t.Render()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func joinTags(tags []string) string {
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += ","
		}
		out += t
	}
	return out
}

// YAMLDump is a stateless debug projection of a project's effective
// task set, used by `list --format yaml` and `check --format yaml`.
// It carries no persistence role — nothing is read back from it.
func YAMLDump(w io.Writer, proj *task.Project) error {
	type taskDump struct {
		Kind         string   `yaml:"kind"`
		Script       string   `yaml:"script,omitempty"`
		Cmd          string   `yaml:"cmd,omitempty"`
		Args         []string `yaml:"args,omitempty"`
		Dependencies []string `yaml:"dependencies,omitempty"`
		DependsOn    []string `yaml:"depends_on,omitempty"`
		Tags         []string `yaml:"tags,omitempty"`
		Category     string   `yaml:"category,omitempty"`
		Description  string   `yaml:"description,omitempty"`
	}

	dump := make(map[string]taskDump, len(proj.Tasks))
	for name, t := range proj.Tasks {
		dump[name] = taskDump{
			Kind:         string(t.Kind),
			Script:       t.Script,
			Cmd:          t.Cmd,
			Args:         t.Args,
			Dependencies: t.Dependencies,
			DependsOn:    t.DependsOn,
			Tags:         t.Tags,
			Category:     t.Category,
			Description:  t.Description,
		}
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(map[string]any{
		"profile": proj.Profile,
		"tasks":   dump,
	})
}
