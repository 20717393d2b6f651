package wrapper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// slurmDirectivePrefix marks SLURM scheduler directives. The check is
	// case-sensitive: lowercase "#sbatch" is an ordinary comment.
	slurmDirectivePrefix = "#SBATCH"
	// sgeDirectivePrefix marks SGE/PBS directives, stripped for the same
	// reason.
	sgeDirectivePrefix = "#$"
	// submitCommand is the batch submission binary. A line invoking it is
	// dropped so the extracted fragment never recursively submits.
	submitCommand = "sbatch"

	runScriptExt   = ".run"
	fragmentSuffix = "_exec.sh"
)

// scriptSearchDirs returns the candidate directories for the generated batch
// script, most specific first.
func scriptSearchDirs(expID, baseDir string) []string {
	return []string{
		filepath.Join(baseDir, expID, "scripts"),
		filepath.Join(baseDir, "scripts"),
		baseDir,
	}
}

// ScriptHints optionally narrow the batch-script search to the cluster and
// date tokens embedded in the generated name. Empty fields match anything.
type ScriptHints struct {
	Cluster string
	Date    string
}

func (h ScriptHints) pattern(expID string) string {
	cluster, date := h.Cluster, h.Date
	if cluster == "" {
		cluster = "*"
	}
	if date == "" {
		date = "*"
	}
	if h.Cluster == "" && h.Date == "" {
		// Unhinted names may carry any number of tokens after the expid.
		return expID + "_*" + runScriptExt
	}
	return expID + "_" + cluster + "_" + date + runScriptExt
}

// LocateBatchScript finds the batch script esm_runscripts generated for an
// experiment. Script names embed cluster and date tokens
// ({expid}_{cluster}_{date}.run); among matches in a directory the most
// recently modified wins, since the latest generation is authoritative.
func LocateBatchScript(expID, baseDir string, hints ScriptHints) (string, error) {
	dirs := scriptSearchDirs(expID, baseDir)
	pattern := hints.pattern(expID)

	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil || len(matches) == 0 {
			continue
		}
		return mostRecent(matches), nil
	}

	return "", &ScriptNotFoundError{ExpID: expID, Searched: dirs}
}

// ExtractExecutable rewrites a batch script into a fragment runnable inside
// an already-granted allocation. Scheduler directives and submission commands
// are dropped; every other line (shebang, module loads, exports, directory
// changes, payload commands, blanks, comments) is preserved verbatim in its
// original order, since later commands may depend on environment state set up
// by earlier ones.
func ExtractExecutable(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading batch script: %w", err)
	}

	var kept []string
	for _, line := range strings.SplitAfter(string(data), "\n") {
		if dropLine(line) {
			continue
		}
		kept = append(kept, line)
	}

	content := strings.Join(kept, "")
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("no executable content in %s", path)
	}
	return content, nil
}

// dropLine classifies one batch-script line. Directives and submission
// invocations are dropped; everything else is payload.
func dropLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, slurmDirectivePrefix) {
		return true
	}
	if strings.HasPrefix(trimmed, sgeDirectivePrefix) {
		return true
	}
	fields := strings.Fields(trimmed)
	return len(fields) > 0 && fields[0] == submitCommand
}

// FragmentPath derives the deterministic sibling path for the executable
// fragment: {expid}_{cluster}_{date}_exec.sh next to the batch script.
// Re-runs for the same script land on the same path.
func FragmentPath(scriptPath string) string {
	return strings.TrimSuffix(scriptPath, runScriptExt) + fragmentSuffix
}

// WriteExecutable materializes the fragment with execute permission. The
// caller's own process-execution facility runs it; this package never
// launches the payload.
func WriteExecutable(content, path string) error {
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		return fmt.Errorf("writing executable fragment: %w", err)
	}
	return nil
}
