package task

import (
	"github.com/pt-run/pt/internal/envfile"
	pterrors "github.com/pt-run/pt/internal/errors"
)

// Environment is the project- and profile-layered state computed once
// per invocation for the selected profile (spec §4.4 "Profile
// overlay"). A task's final environment is this, overlaid by the
// task's own env (already extend-merged into Task.Env), with built-ins
// applied last at lowest priority — see TaskEnv.
type Environment struct {
	Vars         map[string]string
	Python       string
	Dependencies map[string][]string
}

// SelectProfile resolves the profile name to use: CLI flag, then
// PT_PROFILE, then project default_profile, then none.
func SelectProfile(flagValue, envValue string, pf *ProjectFile) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue != "" {
		return envValue
	}
	if pf.Project.DefaultProfile != nil {
		return *pf.Project.DefaultProfile
	}
	return ""
}

// ComputeEnvironment builds the layered environment for profileName
// (empty string selects no profile), per spec §4.4 steps 1-4:
// global env_files, global [env], profile env_files, profile [env].
// resolvePath maps each declared env-file path to the path to read.
func ComputeEnvironment(pf *ProjectFile, profileName string, resolvePath func(string) string) (*Environment, error) {
	env := map[string]string{}

	for _, f := range pf.Project.EnvFiles {
		if err := mergeEnvFile(env, resolvePath(f)); err != nil {
			return nil, err
		}
	}
	for k, v := range pf.Env {
		env[k] = v
	}

	var profile *RawProfile
	if profileName != "" {
		p, ok := pf.Profiles[profileName]
		if !ok {
			return nil, pterrors.ConfigInvalidValue("profile", "unknown profile \""+profileName+"\"")
		}
		profile = &p
	}

	if profile != nil {
		for _, f := range profile.EnvFiles {
			if err := mergeEnvFile(env, resolvePath(f)); err != nil {
				return nil, err
			}
		}
		for k, v := range profile.Env {
			env[k] = v
		}
	}

	python := ""
	if pf.Project.Python != nil {
		python = *pf.Project.Python
	}
	if profile != nil && profile.Python != nil {
		python = *profile.Python
	}

	deps := make(map[string][]string, len(pf.Dependencies))
	for k, v := range pf.Dependencies {
		deps[k] = v
	}
	if profile != nil {
		for k, v := range profile.Dependencies {
			deps[k] = v
		}
	}

	return &Environment{Vars: env, Python: python, Dependencies: deps}, nil
}

func mergeEnvFile(into map[string]string, path string) error {
	parsed, err := envfile.Parse(path)
	if err != nil {
		return err
	}
	for k, v := range parsed {
		into[k] = v
	}
	return nil
}

// TaskEnv computes t's final environment: the layered Environment
// overlaid by t's own env (task env wins per key, per §4.4 step 5),
// then builtins applied only for keys not already present, per §6
// ("injected at lowest priority").
func TaskEnv(t *Task, env *Environment, builtins map[string]string) map[string]string {
	result := make(map[string]string, len(env.Vars)+len(t.Env)+len(builtins))
	for k, v := range env.Vars {
		result[k] = v
	}
	for k, v := range t.Env {
		result[k] = v
	}
	for k, v := range builtins {
		if _, exists := result[k]; !exists {
			result[k] = v
		}
	}
	return result
}

// EffectivePython resolves python: task.python -> environment.python ->
// unset.
func EffectivePython(t *Task, env *Environment) string {
	if t.Python != "" {
		return t.Python
	}
	return env.Python
}

// ResolveDependencies expands t.Dependencies against the effective
// group map: per the spec's resolved open question on group/package
// name collision, a group name wins over reading the same string as a
// literal package specifier.
func ResolveDependencies(t *Task, env *Environment) []string {
	seen := make(map[string]bool)
	var out []string
	for _, dep := range t.Dependencies {
		if group, ok := env.Dependencies[dep]; ok {
			for _, pkg := range group {
				if !seen[pkg] {
					seen[pkg] = true
					out = append(out, pkg)
				}
			}
			continue
		}
		if !seen[dep] {
			seen[dep] = true
			out = append(out, dep)
		}
	}
	return out
}
