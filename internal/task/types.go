// Package task defines pt's config schema (C1) and the task-inheritance
// resolver (the inheritance half of C4): raw, as-decoded task/profile
// records and their effective, post-resolution form.
//
// Field shapes are grounded on the donor's internal/workflow/module.go
// Workflow/Step structs (tagged TOML fields, pointer fields for
// tri-state optionality so "unset" is distinguishable from "set to the
// zero value" during inheritance merge).
package task

// Kind identifies which of script/cmd a resolved task carries.
type Kind string

const (
	KindScript Kind = "script"
	KindCmd    Kind = "cmd"
)

// RawCondition is the declarative gate record from C9, shared verbatim
// between the raw (as-parsed) and effective task forms — conditions are
// not merged during inheritance beyond plain override, so one type
// serves both.
type RawCondition struct {
	Platforms     []string          `toml:"platforms"`
	EnvSet        []string          `toml:"env_set"`
	EnvNotSet     []string          `toml:"env_not_set"`
	EnvTrue       []string          `toml:"env_true"`
	EnvEquals     map[string]string `toml:"env_equals"`
	FilesExist    []string          `toml:"files_exist"`
	FilesNotExist []string          `toml:"files_not_exist"`
}

// RawTask is a task exactly as decoded from TOML, before inheritance
// and profile resolution. Optional scalar fields are pointers so the
// extend-chain merge (internal/task/extend.go) can tell "not set by
// this task" from "explicitly set to the zero value".
type RawTask struct {
	Extend *string `toml:"extend"`

	Script *string `toml:"script"`
	Cmd    *string `toml:"cmd"`

	Args         []string          `toml:"args"`
	Dependencies []string          `toml:"dependencies"`
	Env          map[string]string `toml:"env"`
	PythonPath   []string          `toml:"pythonpath"`
	DependsOn    []string          `toml:"depends_on"`

	Parallel *bool   `toml:"parallel"`
	Python   *string `toml:"python"`
	Cwd      *string `toml:"cwd"`
	Timeout  *int    `toml:"timeout"`

	IgnoreErrors    *bool         `toml:"ignore_errors"`
	Condition       *RawCondition `toml:"condition"`
	ConditionScript *string       `toml:"condition_script"`

	Aliases  []string `toml:"aliases"`
	Tags     []string `toml:"tags"`
	Category *string  `toml:"category"`

	BeforeTask   *string `toml:"before_task"`
	AfterSuccess *string `toml:"after_success"`
	AfterFailure *string `toml:"after_failure"`
	AfterTask    *string `toml:"after_task"`

	Description *string `toml:"description"`
}

// Hooks are the four optional lifecycle scripts attached to a task.
type Hooks struct {
	BeforeTask   string
	AfterSuccess string
	AfterFailure string
	AfterTask    string
}

// Task is a task's effective form: the result of walking its extend
// chain and merging fields per the rules in spec §4.4. It carries no
// Extend field — by construction a Task is always fully resolved.
type Task struct {
	Name string

	Kind   Kind
	Script string
	Cmd    string

	Args         []string
	Dependencies []string // package specifiers or dependency-group names; groups are expanded by ResolveDependencies
	Env          map[string]string
	PythonPath   []string
	DependsOn    []string
	Parallel     bool

	Python  string
	Cwd     string
	Timeout int

	IgnoreErrors    bool
	Condition       *RawCondition
	ConditionScript string

	Aliases  []string
	Tags     []string
	Category string

	Hooks Hooks

	Description string
	Private     bool
}

// RawProfile is a named environment/dependency overlay as decoded from
// TOML (spec §3 Profile).
type RawProfile struct {
	Env          map[string]string   `toml:"env"`
	EnvFiles     []string            `toml:"env_files"`
	Python       *string             `toml:"python"`
	Dependencies map[string][]string `toml:"dependencies"`
}

// RawStage is one stage of a pipeline: a set of task names dispatched
// together under the stage's own parallel flag.
type RawStage struct {
	Tasks    []string `toml:"tasks"`
	Parallel bool     `toml:"parallel"`
}

// OnFailureMode is the scheduler's failure-handling policy (C8).
type OnFailureMode string

const (
	OnFailureFailFast OnFailureMode = "fail-fast"
	OnFailureWait     OnFailureMode = "wait"
	OnFailureContinue OnFailureMode = "continue"
)

// OutputMode controls whether a scheduled task set's output is grouped
// per task after completion, or streamed live with line prefixes.
type OutputMode string

const (
	OutputBuffered    OutputMode = "buffered"
	OutputInterleaved OutputMode = "interleaved"
)

// RawPipeline is an ordered sequence of stages (spec §3 Pipeline).
type RawPipeline struct {
	Stages    []RawStage    `toml:"stages"`
	OnFailure OnFailureMode `toml:"on_failure"`
	Output    OutputMode    `toml:"output"`
}

// ProjectSection is the top-level [project] table.
type ProjectSection struct {
	Name           string   `toml:"name"`
	Python         *string  `toml:"python"`
	DefaultProfile *string  `toml:"default_profile"`
	OnErrorTask    *string  `toml:"on_error_task"`
	EnvFiles       []string `toml:"env_files"`
}

// ProjectFile is the whole decoded pt.toml / [tool.pt] document (C1).
type ProjectFile struct {
	Project      ProjectSection         `toml:"project"`
	Env          map[string]string      `toml:"env"`
	Dependencies map[string][]string    `toml:"dependencies"`
	Tasks        map[string]RawTask     `toml:"tasks"`
	Profiles     map[string]RawProfile  `toml:"profiles"`
	Pipelines    map[string]RawPipeline `toml:"pipelines"`
}
