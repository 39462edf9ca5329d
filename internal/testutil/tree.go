package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates a file under dir with the given relative path and
// content, creating parent directories as needed.
func WriteFile(t *testing.T, dir, rel, content string) string {
	t.Helper()

	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent directories: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
	return path
}

// MkDir creates a directory under dir with the given relative path.
func MkDir(t *testing.T, dir, rel string) string {
	t.Helper()

	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("failed to create %s: %v", rel, err)
	}
	return path
}

// ReadFile returns the content of the file at path as a string.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
