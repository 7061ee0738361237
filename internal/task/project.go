package task

import (
	"path/filepath"
	"sort"

	pterrors "github.com/pt-run/pt/internal/errors"
)

// Project is a fully resolved project: every task's extend chain
// flattened, a chosen profile layered in, and aliases indexed for
// lookup. This is what cmd/pt loads once per invocation and passes to
// the command builder, condition evaluator, and scheduler.
type Project struct {
	File        *ProjectFile
	ConfigFile  string
	Root        string
	Profile     string
	Tasks       map[string]*Task
	Environment *Environment
	aliases     map[string]string // alias -> canonical task name
}

// LoadProject reads and fully resolves the project rooted at root,
// whose config file is configFile (pt.toml or a pyproject.toml
// carrying [tool.pt]). profileFlag/profileEnv feed SelectProfile.
func LoadProject(configFile, root, profileFlag, profileEnv string) (*Project, error) {
	isPyProject := filepath.Base(configFile) == PyProjectFileName
	pf, err := Load(configFile, isPyProject)
	if err != nil {
		return nil, err
	}

	tasks, err := ResolveAll(pf)
	if err != nil {
		return nil, err
	}

	profile := SelectProfile(profileFlag, profileEnv, pf)
	resolvePath := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}
	env, err := ComputeEnvironment(pf, profile, resolvePath)
	if err != nil {
		return nil, err
	}

	p := &Project{
		File:        pf,
		ConfigFile:  configFile,
		Root:        root,
		Profile:     profile,
		Tasks:       tasks,
		Environment: env,
		aliases:     make(map[string]string),
	}
	for name, t := range tasks {
		for _, alias := range t.Aliases {
			p.aliases[alias] = name
		}
	}
	return p, nil
}

// Resolve looks up a task by canonical name or alias.
func (p *Project) Resolve(nameOrAlias string) (*Task, error) {
	if t, ok := p.Tasks[nameOrAlias]; ok {
		return t, nil
	}
	if canonical, ok := p.aliases[nameOrAlias]; ok {
		return p.Tasks[canonical], nil
	}
	return nil, pterrors.TaskNotFound(nameOrAlias)
}

// Names returns every non-private task name, sorted.
func (p *Project) Names() []string {
	names := make([]string, 0, len(p.Tasks))
	for name, t := range p.Tasks {
		if t.Private {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByTag returns every non-private task carrying tag, sorted by name.
func (p *Project) ByTag(tag string) []*Task {
	var out []*Task
	for _, name := range p.Names() {
		t := p.Tasks[name]
		for _, tg := range t.Tags {
			if tg == tag {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
