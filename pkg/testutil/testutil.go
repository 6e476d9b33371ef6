// Package testutil provides filesystem helpers for develdirs tests.
// Tests operate on real temporary directories so symlink resolution
// and directory probing behave exactly as they do in production.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// CreateDir creates a directory (and parents) under parent and returns
// its path. It fails the test if the directory cannot be created.
func CreateDir(t *testing.T, parent, name string) string {
	t.Helper()

	path := filepath.Join(parent, name)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", path, err)
	}
	return path
}

// CreateFile creates a file with the given content in the specified
// directory. It fails the test if the file cannot be created.
func CreateFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}
	return path
}

// CreateSymlink creates a symlink at linkPath pointing to target.
// It fails the test if the link cannot be created.
func CreateSymlink(t *testing.T, target, linkPath string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(linkPath), 0755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", linkPath, err)
	}
	if err := os.Symlink(target, linkPath); err != nil {
		t.Fatalf("Failed to create symlink %s -> %s: %v", linkPath, target, err)
	}
	return linkPath
}

// Chdir switches the working directory for the duration of the test.
func Chdir(t *testing.T, dir string) {
	t.Helper()

	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("Failed to restore working directory: %v", err)
		}
	})
}
