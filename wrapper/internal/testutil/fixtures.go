// Package testutil provides shared on-disk fixtures for wrapper tests:
// experiment directory trees with finished-config artifacts and generated
// batch scripts laid out the way esm_runscripts produces them.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteFinishedConfig creates dir/{expid}_finished_config.yaml with the given
// YAML content and returns its path.
func WriteFinishedConfig(t *testing.T, dir, expID, content string) string {
	t.Helper()
	return writeFile(t, dir, expID+"_finished_config.yaml", content)
}

// WriteRunScript creates dir/{name}.run with the given content and returns
// its path. Name should follow the {expid}_{cluster}_{date} convention.
func WriteRunScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	return writeFile(t, dir, name+".run", content)
}

// Touch sets a file's modification time, for last-writer-wins tests.
func Touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("setting mtime on %s: %v", path, err)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("creating %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}
