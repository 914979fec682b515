// Package testutil provides shared utilities for testing Go entity parsing
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// CreateTempGoFile creates a temporary Go file with the given content for testing
func CreateTempGoFile(t *testing.T, content string) string {
	t.Helper()

	tempDir := t.TempDir()
	tempFile := filepath.Join(tempDir, "entities.go")

	err := os.WriteFile(tempFile, []byte(content), 0600)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	return tempFile
}

// CreateTempGoDir writes the files (relative path to content) below a fresh
// temporary directory and returns the directory.
func CreateTempGoDir(t *testing.T, files map[string]string) string {
	t.Helper()

	tempDir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(tempDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("Failed to create temp file %s: %v", name, err)
		}
	}

	return tempDir
}
