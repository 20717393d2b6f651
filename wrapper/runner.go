package wrapper

import (
	"bytes"
	"errors"
	"os/exec"
)

// CommandResult is the structured outcome of one external process run.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandRunner executes one external command synchronously in a working
// directory. Implementations must capture stdout and stderr in full and
// report a non-zero exit through CommandResult, reserving the error return
// for spawn-level failures (binary not found, permission denied). Callers
// inspect ExitCode and raise the typed error themselves.
type CommandRunner interface {
	Run(name string, args []string, dir string) (CommandResult, error)
}

// execRunner is the production CommandRunner backed by os/exec. It blocks
// until the process exits; any timeout must be imposed by the caller.
type execRunner struct{}

func (execRunner) Run(name string, args []string, dir string) (CommandResult, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return result, err
}
