package wrapper

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Stage is one step of the payload-extraction lifecycle.
type Stage int

const (
	StageNotStarted Stage = iota
	StageConfigResolved
	StageScriptLocated
	StageContentExtracted
	StageMaterialized
)

var stageNames = map[Stage]string{
	StageNotStarted:       "not-started",
	StageConfigResolved:   "config-resolved",
	StageScriptLocated:    "script-located",
	StageContentExtracted: "content-extracted",
	StageMaterialized:     "materialized",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Execution tracks the per-task lifecycle. Each stage's precondition is the
// prior stage's postcondition; advance rejects skipped stages. There is no
// retry stage: any failure terminates the sequence and surfaces to the
// caller.
type Execution struct {
	stage Stage
}

// Stage returns the current lifecycle stage.
func (e *Execution) Stage() Stage { return e.stage }

func (e *Execution) advance(next Stage) error {
	if next != e.stage+1 {
		return fmt.Errorf("cannot advance from %s to %s", e.stage, next)
	}
	e.stage = next
	return nil
}

// PayloadOptions parameterizes one payload extraction.
type PayloadOptions struct {
	ExpID   string      // experiment id (default "test")
	BaseDir string      // experiment base directory (default: cwd)
	Hints   ScriptHints // optional cluster/date narrowing for the script search
}

// RunPayload drives the execution-time half of the bridge: verify the
// resolved configuration exists, locate the batch script, extract its
// executable content, and materialize the fragment. Returns the fragment
// path for the caller to execute.
func RunPayload(opts PayloadOptions) (string, error) {
	if opts.ExpID == "" {
		opts.ExpID = DefaultExpID
	}
	if opts.BaseDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("determining working directory: %w", err)
		}
		opts.BaseDir = cwd
	}

	var lifecycle Execution

	// The resolution phase must have produced a finished config for this
	// experiment; a missing artifact means the allocation was granted
	// without resolution ever running.
	configPath, err := FindFinishedConfig(opts.ExpID, opts.BaseDir)
	if err != nil {
		return "", err
	}
	if err := lifecycle.advance(StageConfigResolved); err != nil {
		return "", err
	}
	logrus.Debugf("resolved config present at %s", configPath)

	scriptPath, err := LocateBatchScript(opts.ExpID, opts.BaseDir, opts.Hints)
	if err != nil {
		return "", err
	}
	if err := lifecycle.advance(StageScriptLocated); err != nil {
		return "", err
	}
	logrus.Infof("located batch script %s", scriptPath)

	content, err := ExtractExecutable(scriptPath)
	if err != nil {
		return "", err
	}
	if err := lifecycle.advance(StageContentExtracted); err != nil {
		return "", err
	}

	fragmentPath := FragmentPath(scriptPath)
	if err := WriteExecutable(content, fragmentPath); err != nil {
		return "", err
	}
	if err := lifecycle.advance(StageMaterialized); err != nil {
		return "", err
	}
	logrus.Infof("materialized executable fragment %s", fragmentPath)

	return fragmentPath, nil
}
