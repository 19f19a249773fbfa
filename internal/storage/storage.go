// Package storage provides the persistent engines behind the settings store.
//
// A [Backend] is a flat key/value map with an atomic subtree replace. The
// [Engine] adds scoped array access on top of any backend:
//
//   - memory: process-local map, used by tests and --ephemeral
//   - toml, json: a document in ~/.settle, nested by "/" segments
//   - sqlite: one row per key with its scalar kind
package storage

import (
	"os"
	"path/filepath"
)

// Dir returns the path to ~/.settle/, creating it if needed
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".settle")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	return dir, nil
}

// WriteAtomic writes data to path through a temp file and a rename, so
// readers see either the old or the new content.
// It ensures the parent directory exists.
func WriteAtomic(path string, data []byte) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}
