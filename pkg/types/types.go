package types

import (
	"io/fs"
)

// FS is the filesystem interface required for develdirs operations.
// Resolution only ever stats directories; the mutating operations exist
// for the cache file.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Rename(oldpath, newpath string) error
	Remove(name string) error

	// For testing, Lstat can fall back to Stat
	Lstat(name string) (fs.FileInfo, error)
}

// IsDir reports whether path exists and is a directory on fsys.
func IsDir(fsys FS, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && info.IsDir()
}
