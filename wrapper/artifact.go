package wrapper

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const finishedConfigSuffix = "_finished_config.yaml"

// configSearchDirs returns the candidate directories for the finished-config
// artifact, most specific first: the experiment-scoped config directory, a
// flat config directory, then the base directory itself.
func configSearchDirs(expID, baseDir string) []string {
	return []string{
		filepath.Join(baseDir, expID, "config"),
		filepath.Join(baseDir, "config"),
		baseDir,
	}
}

// FindFinishedConfig locates the finished-config artifact generated by
// esm_runscripts for an experiment. Within each candidate directory the exact
// name {expid}_finished_config.yaml is tried first, then the coupled-model
// pattern {expid}_*finished_config.yaml; among pattern matches the most
// recently modified wins. The first directory with a match wins overall.
func FindFinishedConfig(expID, baseDir string) (string, error) {
	dirs := configSearchDirs(expID, baseDir)

	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}

		exact := filepath.Join(dir, expID+finishedConfigSuffix)
		if _, err := os.Stat(exact); err == nil {
			return exact, nil
		}

		matches, err := filepath.Glob(filepath.Join(dir, expID+"_*finished_config.yaml"))
		if err != nil || len(matches) == 0 {
			continue
		}
		if len(matches) > 1 {
			logrus.Warnf("found %d finished configs for expid=%s in %s; using the most recently modified",
				len(matches), expID, dir)
		}
		return mostRecent(matches), nil
	}

	return "", &ArtifactNotFoundError{ExpID: expID, Searched: dirs}
}

// mostRecent returns the path with the newest modification time. Paths that
// fail to stat sort oldest.
func mostRecent(paths []string) string {
	best := paths[0]
	bestInfo, _ := os.Stat(best)
	for _, p := range paths[1:] {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if bestInfo == nil || info.ModTime().After(bestInfo.ModTime()) {
			best, bestInfo = p, info
		}
	}
	return best
}
