package task

import (
	"sort"

	pterrors "github.com/pt-run/pt/internal/errors"
)

// resolver walks the extend graph of a task set, caching resolved tasks
// and detecting cycles via a currently-resolving set — the same
// enter/exit-on-the-stack idea as the donor's internal/workflow/loader.go
// LoadContext, specialized to a single project's flat task map instead
// of a multi-file module loader's cross-file references.
type resolver struct {
	raw       map[string]RawTask
	resolved  map[string]*Task
	resolving map[string]bool
}

// ResolveAll resolves every task in pf's namespace, applying the I1
// uniqueness check, extend-chain merge (§4.4), and the I3 script/cmd
// exclusivity check post-merge.
func ResolveAll(pf *ProjectFile) (map[string]*Task, error) {
	if err := checkNamespaceUniqueness(pf.Tasks); err != nil {
		return nil, err
	}

	r := &resolver{
		raw:       pf.Tasks,
		resolved:  make(map[string]*Task, len(pf.Tasks)),
		resolving: make(map[string]bool),
	}

	for name := range pf.Tasks {
		if _, err := r.resolve(name, nil); err != nil {
			return nil, err
		}
	}

	return r.resolved, nil
}

func (r *resolver) resolve(name string, stack []string) (*Task, error) {
	if t, ok := r.resolved[name]; ok {
		return t, nil
	}
	if r.resolving[name] {
		chain := append(append([]string{}, stack...), name)
		return nil, pterrors.CycleExtend(chain)
	}

	raw, ok := r.raw[name]
	if !ok {
		return nil, pterrors.TaskNotFound(name)
	}

	r.resolving[name] = true
	defer delete(r.resolving, name)

	var parent *Task
	if raw.Extend != nil {
		p, err := r.resolve(*raw.Extend, append(stack, name))
		if err != nil {
			return nil, err
		}
		parent = p
	}

	effective, err := mergeTask(name, parent, raw)
	if err != nil {
		return nil, err
	}

	r.resolved[name] = effective
	return effective, nil
}

// mergeTask applies the field-specific merge rules of spec §4.4 in
// ancestor → descendant order (parent already carries its own
// ancestors' merges, so a single application against the immediate
// parent is sufficient).
func mergeTask(name string, parent *Task, raw RawTask) (*Task, error) {
	t := &Task{Name: name, Private: IsPrivate(name)}

	// Override-when-set fields.
	t.Script = overrideString(parentString(parent, func(p *Task) string { return p.Script }), raw.Script)
	t.Cmd = overrideString(parentString(parent, func(p *Task) string { return p.Cmd }), raw.Cmd)
	t.Cwd = overrideString(parentString(parent, func(p *Task) string { return p.Cwd }), raw.Cwd)
	t.Python = overrideString(parentString(parent, func(p *Task) string { return p.Python }), raw.Python)
	t.Description = overrideString(parentString(parent, func(p *Task) string { return p.Description }), raw.Description)
	t.Category = overrideString(parentString(parent, func(p *Task) string { return p.Category }), raw.Category)
	t.ConditionScript = overrideString(parentString(parent, func(p *Task) string { return p.ConditionScript }), raw.ConditionScript)

	t.Timeout = overrideInt(parentInt(parent, func(p *Task) int { return p.Timeout }), raw.Timeout)
	t.IgnoreErrors = overrideBool(parentBool(parent, func(p *Task) bool { return p.IgnoreErrors }), raw.IgnoreErrors)
	t.Parallel = overrideBool(parentBool(parent, func(p *Task) bool { return p.Parallel }), raw.Parallel)

	if raw.Condition != nil {
		t.Condition = raw.Condition
	} else if parent != nil {
		t.Condition = parent.Condition
	}

	t.Hooks.BeforeTask = overrideString(parentString(parent, func(p *Task) string { return p.Hooks.BeforeTask }), raw.BeforeTask)
	t.Hooks.AfterSuccess = overrideString(parentString(parent, func(p *Task) string { return p.Hooks.AfterSuccess }), raw.AfterSuccess)
	t.Hooks.AfterFailure = overrideString(parentString(parent, func(p *Task) string { return p.Hooks.AfterFailure }), raw.AfterFailure)
	t.Hooks.AfterTask = overrideString(parentString(parent, func(p *Task) string { return p.Hooks.AfterTask }), raw.AfterTask)

	// Union fields, first-occurrence order.
	t.Dependencies = unionPreserveOrder(parentSlice(parent, func(p *Task) []string { return p.Dependencies }), raw.Dependencies)
	t.PythonPath = unionPreserveOrder(parentSlice(parent, func(p *Task) []string { return p.PythonPath }), raw.PythonPath)
	t.DependsOn = unionPreserveOrder(parentSlice(parent, func(p *Task) []string { return p.DependsOn }), raw.DependsOn)
	t.Aliases = unionPreserveOrder(parentSlice(parent, func(p *Task) []string { return p.Aliases }), raw.Aliases)

	// Tags: union, then sorted lexicographically.
	tags := unionPreserveOrder(parentSlice(parent, func(p *Task) []string { return p.Tags }), raw.Tags)
	sort.Strings(tags)
	t.Tags = tags

	// Args: concatenation, parent first.
	var parentArgs []string
	if parent != nil {
		parentArgs = parent.Args
	}
	t.Args = append(append([]string{}, parentArgs...), raw.Args...)

	// Env: mapping union, child wins per key.
	env := map[string]string{}
	if parent != nil {
		for k, v := range parent.Env {
			env[k] = v
		}
	}
	for k, v := range raw.Env {
		env[k] = v
	}
	t.Env = env

	if err := finalizeKind(t); err != nil {
		return nil, err
	}

	return t, nil
}

func finalizeKind(t *Task) error {
	hasScript := t.Script != ""
	hasCmd := t.Cmd != ""
	switch {
	case hasScript && hasCmd:
		return pterrors.ConfigInvariant("I3", "task \""+t.Name+"\" sets both script and cmd")
	case hasScript:
		t.Kind = KindScript
	case hasCmd:
		t.Kind = KindCmd
	default:
		return pterrors.ConfigInvariant("I3", "task \""+t.Name+"\" sets neither script nor cmd")
	}
	return nil
}

func checkNamespaceUniqueness(tasks map[string]RawTask) error {
	seen := map[string]string{} // name/alias -> owning task
	for name := range tasks {
		if owner, ok := seen[name]; ok {
			return pterrors.ConfigInvariant("I1", "name \""+name+"\" used by both \""+owner+"\" and \""+name+"\"")
		}
		seen[name] = name
	}
	for name, t := range tasks {
		for _, alias := range t.Aliases {
			if owner, ok := seen[alias]; ok && owner != name {
				return pterrors.ConfigInvariant("I1", "alias \""+alias+"\" on task \""+name+"\" collides with \""+owner+"\"")
			}
			seen[alias] = name
		}
	}
	return nil
}

func overrideString(inherited string, set *string) string {
	if set != nil {
		return *set
	}
	return inherited
}

func overrideInt(inherited int, set *int) int {
	if set != nil {
		return *set
	}
	return inherited
}

func overrideBool(inherited bool, set *bool) bool {
	if set != nil {
		return *set
	}
	return inherited
}

func parentString(parent *Task, get func(*Task) string) string {
	if parent == nil {
		return ""
	}
	return get(parent)
}

func parentInt(parent *Task, get func(*Task) int) int {
	if parent == nil {
		return 0
	}
	return get(parent)
}

func parentBool(parent *Task, get func(*Task) bool) bool {
	if parent == nil {
		return false
	}
	return get(parent)
}

func parentSlice(parent *Task, get func(*Task) []string) []string {
	if parent == nil {
		return nil
	}
	return get(parent)
}

// unionPreserveOrder appends elements of b not already present
// (including duplicates within a or b) after a, preserving the
// first-occurrence order spec §4.4 requires for dependencies,
// pythonpath, depends_on, aliases, and pre-sort tags.
func unionPreserveOrder(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
