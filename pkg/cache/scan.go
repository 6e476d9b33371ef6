package cache

import (
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/develdirs/pkg/types"
)

// Version-control marker names. A .gitrepo file identifies a nested
// git-subrepo checkout (libunwind/libcxx style trees) and is treated
// exactly like a .git entry.
const (
	MarkerGit     = ".git"
	MarkerSubrepo = ".gitrepo"
)

// DefaultScanDepth is how many directory levels below a root are
// searched for projects when no depth is given.
const DefaultScanDepth = 2

// findMarkers returns the version-control markers found up to depth
// directory levels below dir. Entries directly inside dir are at level 1,
// matching find's -maxdepth semantics. Unreadable directories are
// skipped, not fatal.
func findMarkers(fsys types.FS, dir string, depth int, logger zerolog.Logger) []string {
	if depth < 1 {
		return nil
	}
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("could not scan directory")
		return nil
	}

	var markers []string
	for _, entry := range entries {
		name := entry.Name()
		full := filepath.Join(dir, name)
		if name == MarkerGit || name == MarkerSubrepo {
			logger.Debug().Str("marker", full).Msg("found project marker")
			markers = append(markers, full)
			continue
		}
		if entry.IsDir() {
			markers = append(markers, findMarkers(fsys, full, depth-1, logger)...)
		}
	}
	return markers
}
