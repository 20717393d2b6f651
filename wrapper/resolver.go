package wrapper

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// GeneratorCommand is the external configuration generator invoked in check
// mode during resource resolution.
const GeneratorCommand = "esm_runscripts"

// DefaultExpID is used when the caller does not name an experiment.
const DefaultExpID = "test"

// Task phases understood by esm_runscripts.
const (
	TaskPrepcompute = "prepcompute"
	TaskCompute     = "compute"
	TaskTidy        = "tidy"
	TaskPost        = "post"
)

var validTasks = map[string]bool{
	TaskPrepcompute: true,
	TaskCompute:     true,
	TaskTidy:        true,
	TaskPost:        true,
}

// IsValidTask returns true if the given phase name is a recognized task.
func IsValidTask(task string) bool {
	return validTasks[task]
}

// ValidTaskNames returns the recognized task phases in lifecycle order.
func ValidTaskNames() []string {
	return []string{TaskPrepcompute, TaskCompute, TaskTidy, TaskPost}
}

// ResolveOptions parameterizes one resource resolution. Zero values get
// explicit defaults in GetResources; there is no package-level mutable
// default state.
type ResolveOptions struct {
	Runscript    string            // path to the ESM runscript YAML (required)
	Task         string            // phase to resolve for (required)
	ExpID        string            // experiment id (default "test")
	ModifyConfig string            // optional override-config path, passed as -m
	BaseDir      string            // experiment base directory (default: cwd)
	Extra        map[string]string // additional flags passed through verbatim

	Runner CommandRunner  // nil = run esm_runscripts via os/exec
	Loader DocumentLoader // nil = PlainLoader
}

// Resources is the normalized resource request consumed by the workflow
// engine's scheduler. Numeric fields are always nodes/count/MB/minutes
// regardless of the units in the source artifact.
type Resources struct {
	Nodes     int    `yaml:"nodes"`
	Tasks     int    `yaml:"tasks"`
	MemMB     int    `yaml:"mem_mb"`
	Runtime   int    `yaml:"runtime"`
	Partition string `yaml:"partition,omitempty"`
	Account   string `yaml:"account,omitempty"`
}

// Map returns the flat engine-facing mapping. Partition and account appear
// only when set: an absent key and an empty string mean different things to
// the downstream scheduler.
func (r Resources) Map() map[string]any {
	m := map[string]any{
		"nodes":   r.Nodes,
		"tasks":   r.Tasks,
		"mem_mb":  r.MemMB,
		"runtime": r.Runtime,
	}
	if r.Partition != "" {
		m["partition"] = r.Partition
	}
	if r.Account != "" {
		m["account"] = r.Account
	}
	return m
}

// GetResources runs esm_runscripts in check mode, locates the generated
// finished-config artifact, and reduces it to a normalized Resources record.
// This is the one entry point the workflow engine calls before scheduling.
//
// Every call re-runs the generator; regeneration is idempotent given the same
// inputs. Callers that want to reuse a previously resolved configuration skip
// calling GetResources entirely.
func GetResources(opts ResolveOptions) (Resources, error) {
	if opts.ExpID == "" {
		opts.ExpID = DefaultExpID
	}
	if opts.Runner == nil {
		opts.Runner = execRunner{}
	}
	if opts.Loader == nil {
		opts.Loader = PlainLoader{}
	}

	if !IsValidTask(opts.Task) {
		return Resources{}, fmt.Errorf("unknown task %q; valid: %s",
			opts.Task, strings.Join(ValidTaskNames(), ", "))
	}

	runscript, err := filepath.Abs(opts.Runscript)
	if err != nil {
		return Resources{}, fmt.Errorf("resolving runscript path: %w", err)
	}
	if _, err := os.Stat(runscript); err != nil {
		return Resources{}, &MissingInputError{Path: opts.Runscript}
	}

	if opts.BaseDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Resources{}, fmt.Errorf("determining working directory: %w", err)
		}
		opts.BaseDir = cwd
	}
	info, err := os.Stat(opts.BaseDir)
	if err != nil {
		return Resources{}, &MissingInputError{Path: opts.BaseDir}
	}
	if !info.IsDir() {
		return Resources{}, fmt.Errorf("base directory is not a directory: %s", opts.BaseDir)
	}

	args := generatorArgs(runscript, opts)
	logrus.Infof("extracting resources: %s %s", GeneratorCommand, strings.Join(args, " "))

	result, err := opts.Runner.Run(GeneratorCommand, args, opts.BaseDir)
	if err != nil {
		return Resources{}, &ExternalToolError{Cmd: GeneratorCommand, ExitCode: -1, Stderr: result.Stderr, Err: err}
	}
	if result.ExitCode != 0 {
		return Resources{}, &ExternalToolError{Cmd: GeneratorCommand, ExitCode: result.ExitCode, Stderr: result.Stderr}
	}

	configPath, err := FindFinishedConfig(opts.ExpID, opts.BaseDir)
	if err != nil {
		return Resources{}, err
	}

	doc, err := opts.Loader.Load(configPath)
	if err != nil {
		return Resources{}, err
	}

	resources, err := extractResources(doc)
	if err != nil {
		return Resources{}, err
	}

	logrus.Infof("extracted resources: %v", resources.Map())
	return resources, nil
}

// generatorArgs builds the esm_runscripts check-mode argument list. Extra
// flags are appended in sorted key order so repeated resolutions spawn
// identical commands.
func generatorArgs(runscript string, opts ResolveOptions) []string {
	args := []string{"--check", runscript, "-t", opts.Task, "-e", opts.ExpID}
	if opts.ModifyConfig != "" {
		args = append(args, "-m", opts.ModifyConfig)
	}

	keys := make([]string, 0, len(opts.Extra))
	for k := range opts.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--"+k, opts.Extra[k])
	}
	return args
}

// extractResources reduces the finished-config mapping to a Resources record.
// Canonical sources: general.resubmit_nodes, general.resubmit_tasks,
// computer.memory_per_task, general.run_time, computer.partition,
// computer.account. Missing numeric fields take conservative defaults
// (nodes=1, tasks=1, mem_mb=0, runtime=0); missing partition/account stay
// absent.
func extractResources(doc map[string]any) (Resources, error) {
	general := section(doc, "general")
	computer := section(doc, "computer")

	resources := Resources{Nodes: 1, Tasks: 1}

	if v, ok := general["resubmit_nodes"]; ok {
		n, err := asInt(v)
		if err != nil {
			return Resources{}, fmt.Errorf("general.resubmit_nodes: %w", err)
		}
		resources.Nodes = n
	}
	if v, ok := general["resubmit_tasks"]; ok {
		n, err := asInt(v)
		if err != nil {
			return Resources{}, fmt.Errorf("general.resubmit_tasks: %w", err)
		}
		resources.Tasks = n
	}
	if v, ok := computer["memory_per_task"]; ok {
		mb, err := ParseMemoryMB(v)
		if err != nil {
			return Resources{}, err
		}
		resources.MemMB = mb
	}
	if v, ok := general["run_time"]; ok {
		minutes, err := ParseRuntimeMinutes(v)
		if err != nil {
			return Resources{}, err
		}
		resources.Runtime = minutes
	}
	if v, ok := computer["partition"]; ok {
		resources.Partition = fmt.Sprintf("%v", v)
	}
	if v, ok := computer["account"]; ok {
		resources.Account = fmt.Sprintf("%v", v)
	}

	return resources, nil
}

// section returns a named top-level mapping, or an empty mapping when the
// section is absent or not a mapping.
func section(doc map[string]any, key string) map[string]any {
	if m, ok := doc[key].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", n)
		}
		return parsed, nil
	}
	return 0, fmt.Errorf("not an integer: %v", v)
}
