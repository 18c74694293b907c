// Package hashstore persists transposition-table entries to a local
// BadgerDB database, grounded on the teacher's internal/storage
// package. Edax's hash table itself is always the in-memory structure
// of spec.md §3; this package only backs up and restores its content
// across process restarts, and supplies the durable store a book
// client writes "hash_feed" seed records into (spec.md §4.3).
package hashstore

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "edax"

// DataDir returns the platform-specific data directory for the
// engine, matching the teacher's storage.GetDataDir layout.
func DataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(home, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(home, "AppData", "Roaming")
		}

	default:
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(home, ".local", "share")
		}
	}

	dir := filepath.Join(baseDir, appName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// HashDBDir returns the directory for the BadgerDB hash snapshot
// database.
func HashDBDir() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(dataDir, "hashdb")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
