package wrapper

import (
	"fmt"
	"strings"
)

// MissingInputError reports a required input file or directory that does not
// exist. It is raised before any external process is invoked so that a bad
// runscript path never turns into an ambiguous generator failure.
type MissingInputError struct {
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("input not found: %s", e.Path)
}

// ExternalToolError reports a failed esm_runscripts invocation. Stderr is
// captured in full; the error is never retried here (retries belong to the
// scheduler driving this wrapper).
type ExternalToolError struct {
	Cmd      string
	ExitCode int
	Stderr   string
	Err      error // spawn-level failure (command not found etc.), if any
}

func (e *ExternalToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("running %q: %v", e.Cmd, e.Err)
	}
	msg := fmt.Sprintf("%q exited with status %d", e.Cmd, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\nstderr:\n" + s
	}
	return msg
}

func (e *ExternalToolError) Unwrap() error { return e.Err }

// ArtifactNotFoundError reports that no finished-config artifact was found
// for an experiment after exhausting every candidate directory.
type ArtifactNotFoundError struct {
	ExpID    string
	Searched []string
}

func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("no finished config found for expid=%s; searched:\n  %s",
		e.ExpID, strings.Join(e.Searched, "\n  "))
}

// ScriptNotFoundError reports that no generated batch script was found for an
// experiment after exhausting every candidate directory.
type ScriptNotFoundError struct {
	ExpID    string
	Searched []string
}

func (e *ScriptNotFoundError) Error() string {
	return fmt.Sprintf("no batch script found for expid=%s; searched:\n  %s",
		e.ExpID, strings.Join(e.Searched, "\n  "))
}

// ArtifactParseError reports a finished-config artifact that exists but is
// not valid YAML.
type ArtifactParseError struct {
	Path string
	Err  error
}

func (e *ArtifactParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ArtifactParseError) Unwrap() error { return e.Err }

// UnitParseError reports a memory or time literal outside the recognized
// grammar. Literal carries the offending value verbatim.
type UnitParseError struct {
	Kind    string // "memory" or "time"
	Literal string
}

func (e *UnitParseError) Error() string {
	return fmt.Sprintf("cannot parse %s value %q", e.Kind, e.Literal)
}
