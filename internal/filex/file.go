// Package filex contains filesystem helpers for the client data directory.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates dir (and parents) with owner-only permissions and
// returns its absolute path. Relative paths are resolved against the
// working directory.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// ProfileDir returns the directory holding one profile's state:
// <dataDir>/profiles/<profile>. The directory is created if missing.
func ProfileDir(dataDir, profile string) (string, error) {
	if profile == "" {
		profile = "default"
	}
	return EnsureDir(filepath.Join(dataDir, "profiles", profile))
}
