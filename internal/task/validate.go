package task

import (
	"regexp"

	pterrors "github.com/pt-run/pt/internal/errors"
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	tagPattern        = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	pythonVerPattern  = regexp.MustCompile(`^(>=|<=|==|~=|>|<)?\d+(\.\d+){0,2}$`)
)

// validateProjectFile runs the C1 field-level validators across a
// decoded project file. Script/cmd mutual exclusion (I3) is deliberately
// not checked here — spec §4.1 requires it be enforced after
// inheritance, not at parse time, since a child task may complete a
// parent that sets neither.
func validateProjectFile(pf *ProjectFile, file string) error {
	for name, t := range pf.Tasks {
		if err := validateTaskIdentifier(name); err != nil {
			return err
		}
		if err := validateRawTask(name, t); err != nil {
			return err
		}
	}

	if pf.Project.OnErrorTask != nil {
		if _, ok := pf.Tasks[*pf.Project.OnErrorTask]; !ok {
			return pterrors.ConfigInvariant("I6", "on_error_task \""+*pf.Project.OnErrorTask+"\" does not name an existing task")
		}
	}

	if pf.Project.Python != nil && !pythonVerPattern.MatchString(*pf.Project.Python) {
		return pterrors.ConfigInvalidValue("project.python", "must match a version specifier such as \">=3.10\" or \"3.11\"")
	}

	return nil
}

func validateTaskIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return pterrors.ConfigInvalidValue("tasks."+name, "task names must match [A-Za-z0-9_-]+")
	}
	return nil
}

func validateRawTask(name string, t RawTask) error {
	if t.Timeout != nil && *t.Timeout <= 0 {
		return pterrors.ConfigInvariant("I7", "task \""+name+"\": timeout must be > 0")
	}
	if t.Python != nil && !pythonVerPattern.MatchString(*t.Python) {
		return pterrors.ConfigInvalidValue("tasks."+name+".python", "must match a version specifier such as \">=3.10\" or \"3.11\"")
	}
	for _, tag := range t.Tags {
		if err := validateTagString("I5", name, tag); err != nil {
			return err
		}
	}
	if t.Category != nil {
		if err := validateTagString("I5", name, *t.Category); err != nil {
			return err
		}
	}
	for _, alias := range t.Aliases {
		if !identifierPattern.MatchString(alias) {
			return pterrors.ConfigInvalidValue("tasks."+name+".aliases", "alias \""+alias+"\" must match [A-Za-z0-9_-]+")
		}
	}
	return nil
}

func validateTagString(invariant, taskName, tag string) error {
	if tag == "" || !tagPattern.MatchString(tag) {
		return pterrors.ConfigInvariant(invariant, "task \""+taskName+"\": tag/category \""+tag+"\" must match [A-Za-z0-9_-]+ and be non-empty")
	}
	return nil
}

// IsPrivate reports whether a task name marks it private (I-rule: name
// starts with an underscore).
func IsPrivate(name string) bool {
	return len(name) > 0 && name[0] == '_'
}
