package store

import (
	"os"
	"path/filepath"
)

const workspaceDirName = ".cadence"

// DiscoverDir walks upward from start looking for an existing workspace
// directory.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, workspaceDirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultDir resolves the workspace directory for the current working
// directory: a discovered ancestor workspace, or a fresh one here.
func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, workspaceDirName), nil
}
