package wrapper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records the invocation and optionally drops an artifact into the
// experiment config directory, standing in for esm_runscripts --check.
type fakeRunner struct {
	name string
	args []string
	dir  string
	runs int

	result   CommandResult
	err      error
	artifact string // finished-config YAML written on each run, if set
	expID    string
}

func (r *fakeRunner) Run(name string, args []string, dir string) (CommandResult, error) {
	r.name, r.args, r.dir = name, args, dir
	r.runs++
	if r.artifact != "" {
		configDir := filepath.Join(dir, r.expID, "config")
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			return CommandResult{}, err
		}
		path := filepath.Join(configDir, r.expID+"_finished_config.yaml")
		if err := os.WriteFile(path, []byte(r.artifact), 0o644); err != nil {
			return CommandResult{}, err
		}
	}
	return r.result, r.err
}

const sampleConfig = `general:
  resubmit_nodes: 10
  resubmit_tasks: 240
  run_time: "12:00:00"
computer:
  memory_per_task: "180G"
  partition: compute
  account: ab0123
`

func writeRunscript(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "awicm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("general: {}\n"), 0o644))
	return path
}

func TestGetResources_EndToEnd(t *testing.T) {
	base := t.TempDir()
	runscript := writeRunscript(t, base)
	runner := &fakeRunner{artifact: sampleConfig, expID: "exp001"}

	got, err := GetResources(ResolveOptions{
		Runscript: runscript,
		Task:      TaskCompute,
		ExpID:     "exp001",
		BaseDir:   base,
		Runner:    runner,
	})
	require.NoError(t, err)

	want := Resources{
		Nodes:     10,
		Tasks:     240,
		MemMB:     180 * 1024,
		Runtime:   720,
		Partition: "compute",
		Account:   "ab0123",
	}
	assert.Equal(t, want, got)
	assert.Equal(t, map[string]any{
		"nodes": 10, "tasks": 240, "mem_mb": 180 * 1024, "runtime": 720,
		"partition": "compute", "account": "ab0123",
	}, got.Map())
}

func TestGetResources_GeneratorInvocation(t *testing.T) {
	base := t.TempDir()
	runscript := writeRunscript(t, base)
	runner := &fakeRunner{artifact: sampleConfig, expID: "exp001"}

	_, err := GetResources(ResolveOptions{
		Runscript:    runscript,
		Task:         TaskPrepcompute,
		ExpID:        "exp001",
		ModifyConfig: "overrides.yaml",
		BaseDir:      base,
		Extra:        map[string]string{"verbose": "1", "contained-run": "true"},
		Runner:       runner,
	})
	require.NoError(t, err)

	assert.Equal(t, GeneratorCommand, runner.name)
	assert.Equal(t, base, runner.dir)
	assert.Equal(t, []string{
		"--check", runscript,
		"-t", "prepcompute",
		"-e", "exp001",
		"-m", "overrides.yaml",
		"--contained-run", "true",
		"--verbose", "1",
	}, runner.args)
}

func TestGetResources_DefaultExpID(t *testing.T) {
	base := t.TempDir()
	runscript := writeRunscript(t, base)
	runner := &fakeRunner{artifact: sampleConfig, expID: "test"}

	_, err := GetResources(ResolveOptions{
		Runscript: runscript,
		Task:      TaskCompute,
		BaseDir:   base,
		Runner:    runner,
	})
	require.NoError(t, err)
	assert.Contains(t, runner.args, "test")
}

func TestGetResources_MissingRunscriptFailsBeforeGenerator(t *testing.T) {
	base := t.TempDir()
	runner := &fakeRunner{}

	_, err := GetResources(ResolveOptions{
		Runscript: filepath.Join(base, "nope.yaml"),
		Task:      TaskCompute,
		BaseDir:   base,
		Runner:    runner,
	})
	var missing *MissingInputError
	require.ErrorAs(t, err, &missing)
	assert.Zero(t, runner.runs, "generator must not run for a missing runscript")
}

func TestGetResources_UnknownTask(t *testing.T) {
	base := t.TempDir()
	runscript := writeRunscript(t, base)

	_, err := GetResources(ResolveOptions{
		Runscript: runscript,
		Task:      "simulate",
		BaseDir:   base,
		Runner:    &fakeRunner{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prepcompute, compute, tidy, post")
}

func TestGetResources_GeneratorFailureCarriesStderr(t *testing.T) {
	base := t.TempDir()
	runscript := writeRunscript(t, base)
	runner := &fakeRunner{result: CommandResult{ExitCode: 2, Stderr: "namelist error in echam"}}

	_, err := GetResources(ResolveOptions{
		Runscript: runscript,
		Task:      TaskCompute,
		BaseDir:   base,
		Runner:    runner,
	})
	var toolErr *ExternalToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, 2, toolErr.ExitCode)
	assert.Equal(t, "namelist error in echam", toolErr.Stderr)
	assert.Contains(t, err.Error(), "namelist error in echam")
}

func TestGetResources_ArtifactMissingAfterGenerator(t *testing.T) {
	base := t.TempDir()
	runscript := writeRunscript(t, base)
	runner := &fakeRunner{} // succeeds but writes nothing

	_, err := GetResources(ResolveOptions{
		Runscript: runscript,
		Task:      TaskCompute,
		ExpID:     "exp001",
		BaseDir:   base,
		Runner:    runner,
	})
	var notFound *ArtifactNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Len(t, notFound.Searched, 3)
}

func TestGetResources_MalformedArtifact(t *testing.T) {
	base := t.TempDir()
	runscript := writeRunscript(t, base)
	runner := &fakeRunner{artifact: "general: [unclosed\n", expID: "exp001"}

	_, err := GetResources(ResolveOptions{
		Runscript: runscript,
		Task:      TaskCompute,
		ExpID:     "exp001",
		BaseDir:   base,
		Runner:    runner,
	})
	var parseErr *ArtifactParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestGetResources_MissingFieldsUseDefaults(t *testing.T) {
	base := t.TempDir()
	runscript := writeRunscript(t, base)
	runner := &fakeRunner{artifact: "general: {}\ncomputer: {}\n", expID: "exp001"}

	got, err := GetResources(ResolveOptions{
		Runscript: runscript,
		Task:      TaskCompute,
		ExpID:     "exp001",
		BaseDir:   base,
		Runner:    runner,
	})
	require.NoError(t, err)
	assert.Equal(t, Resources{Nodes: 1, Tasks: 1}, got)

	m := got.Map()
	assert.NotContains(t, m, "partition", "absent partition must stay absent, not become empty")
	assert.NotContains(t, m, "account")
	assert.Equal(t, 0, m["mem_mb"])
	assert.Equal(t, 0, m["runtime"])
}

func TestGetResources_Idempotent(t *testing.T) {
	base := t.TempDir()
	runscript := writeRunscript(t, base)
	runner := &fakeRunner{artifact: sampleConfig, expID: "exp001"}
	opts := ResolveOptions{
		Runscript: runscript,
		Task:      TaskCompute,
		ExpID:     "exp001",
		BaseDir:   base,
		Runner:    runner,
	}

	first, err := GetResources(opts)
	require.NoError(t, err)
	second, err := GetResources(opts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, runner.runs, "every resolution re-runs the generator")
}

func TestGetResources_BadMemoryLiteralSurfacesUnitError(t *testing.T) {
	base := t.TempDir()
	runscript := writeRunscript(t, base)
	runner := &fakeRunner{
		artifact: "computer:\n  memory_per_task: \"200Q\"\n",
		expID:    "exp001",
	}

	_, err := GetResources(ResolveOptions{
		Runscript: runscript,
		Task:      TaskCompute,
		ExpID:     "exp001",
		BaseDir:   base,
		Runner:    runner,
	})
	var unitErr *UnitParseError
	require.ErrorAs(t, err, &unitErr)
	assert.Equal(t, "200Q", unitErr.Literal)
}

func TestGetResources_ProvenanceLoaderInterchangeable(t *testing.T) {
	base := t.TempDir()
	runscript := writeRunscript(t, base)

	plain, err := GetResources(ResolveOptions{
		Runscript: runscript, Task: TaskCompute, ExpID: "exp001", BaseDir: base,
		Runner: &fakeRunner{artifact: sampleConfig, expID: "exp001"},
		Loader: PlainLoader{},
	})
	require.NoError(t, err)

	withProv, err := GetResources(ResolveOptions{
		Runscript: runscript, Task: TaskCompute, ExpID: "exp001", BaseDir: base,
		Runner: &fakeRunner{artifact: sampleConfig, expID: "exp001"},
		Loader: NewProvenanceLoader(),
	})
	require.NoError(t, err)

	assert.Equal(t, plain, withProv)
}
