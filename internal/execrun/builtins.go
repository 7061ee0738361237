package execrun

import (
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/pt-run/pt/internal/task"
)

// gitInfo is captured once per invocation, mirroring the "config is
// read once and treated as immutable" rule extended to the other
// static-per-run facts pt injects into every task's environment.
type gitInfo struct {
	branch string
	commit string
}

func detectGitInfo(root string) gitInfo {
	return gitInfo{
		branch: gitOutput(root, "rev-parse", "--abbrev-ref", "HEAD"),
		commit: gitOutput(root, "rev-parse", "HEAD"),
	}
}

func gitOutput(dir string, args ...string) string {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func detectCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "CIRCLECI", "JENKINS_URL", "TRAVIS"} {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// runBuiltins returns pt's injected-at-lowest-priority env vars for t.
func (r *Runner) runBuiltins(t *task.Task) map[string]string {
	tags := append([]string{}, t.Tags...)
	sort.Strings(tags)

	ci := "false"
	if detectCI() {
		ci = "true"
	}

	return map[string]string{
		"PT_TASK_NAME":      t.Name,
		"PT_PROJECT_ROOT":   r.Project.Root,
		"PT_CONFIG_FILE":    r.Project.ConfigFile,
		"PT_PROFILE":        r.Project.Profile,
		"PT_PYTHON_VERSION": task.EffectivePython(t, r.Project.Environment),
		"PT_CATEGORY":       t.Category,
		"PT_TAGS":           strings.Join(tags, ","),
		"PT_CI":             ci,
		"PT_GIT_BRANCH":     r.git.branch,
		"PT_GIT_COMMIT":     r.git.commit,
	}
}

func envSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}
