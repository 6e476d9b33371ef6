package paths

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/develdirs/pkg/errors"
)

// Directory is an absolute, separator-terminated path together with its
// lazily computed symlink-resolved form. Containment and prefix checks
// always consider both forms, so a path reported through a symlink alias
// still matches its real target and vice versa.
type Directory struct {
	path     string
	resolved string
}

// NewDirectory creates a Directory from path. Relative paths are made
// absolute against the current working directory.
func NewDirectory(path string) *Directory {
	abs, err := filepath.Abs(path)
	if err != nil {
		// filepath.Abs only fails when the working directory is gone;
		// keep the input rather than losing the path entirely.
		abs = filepath.Clean(path)
	}
	return &Directory{path: terminate(abs)}
}

// Path returns the literal absolute path, separator-terminated.
func (d *Directory) Path() string {
	return d.path
}

// Resolved returns the symlink-resolved path, separator-terminated.
// It is computed at most once per Directory instance.
func (d *Directory) Resolved() string {
	if d.resolved == "" {
		d.resolved = terminate(resolveSymlinks(d.path))
	}
	return d.resolved
}

// IsSubdirectoryOf reports whether d lives under other, comparing every
// combination of literal and resolved forms on both sides.
func (d *Directory) IsSubdirectoryOf(other *Directory) bool {
	if strings.HasPrefix(d.path, other.path) || strings.HasPrefix(d.Resolved(), other.path) {
		return true
	}
	if strings.HasPrefix(d.path, other.Resolved()) || strings.HasPrefix(d.Resolved(), other.Resolved()) {
		return true
	}
	return false
}

// TryReplacePrefix returns d with the prefix text replaced by replacement,
// trying the same literal/resolved combinations as IsSubdirectoryOf. The
// second return value is false when d is not a descendant of prefix in any
// combination.
func (d *Directory) TryReplacePrefix(prefix *Directory, replacement string) (string, bool) {
	for _, src := range []string{d.path, d.Resolved()} {
		for _, pre := range []string{prefix.path, prefix.Resolved()} {
			if strings.HasPrefix(src, pre) {
				return replacement + src[len(pre):], true
			}
		}
	}
	return "", false
}

// ReplacePrefix is TryReplacePrefix where a missing match is an error,
// used where descendance was already established.
func (d *Directory) ReplacePrefix(prefix *Directory, replacement string) (string, error) {
	result, ok := d.TryReplacePrefix(prefix, replacement)
	if !ok {
		return "", errors.Newf(errors.ErrInternal,
			"could not replace prefix %s with %q in %s", prefix, replacement, d)
	}
	return result, nil
}

func (d *Directory) String() string {
	return d.path
}

// terminate ensures a trailing separator
func terminate(p string) string {
	sep := string(filepath.Separator)
	if !strings.HasSuffix(p, sep) {
		p += sep
	}
	return p
}

// resolveSymlinks resolves path like filepath.EvalSymlinks, but tolerates
// components that do not exist: the longest existing prefix is resolved and
// the remainder is joined back on unchanged.
func resolveSymlinks(path string) string {
	p := filepath.Clean(path)
	remainder := ""
	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			return filepath.Join(resolved, remainder)
		}
		parent := filepath.Dir(p)
		if parent == p {
			return filepath.Join(p, remainder)
		}
		remainder = filepath.Join(filepath.Base(p), remainder)
		p = parent
	}
}
