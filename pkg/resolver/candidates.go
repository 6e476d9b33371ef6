package resolver

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/develdirs/pkg/config"
	"github.com/arthur-debert/develdirs/pkg/paths"
	"github.com/arthur-debert/develdirs/pkg/types"
)

// splitSegments splits a relative path into its non-empty segments. An
// empty relative path becomes a single synthetic segment so the root
// itself is probed.
func splitSegments(rel string) []string {
	var parts []string
	for _, s := range strings.Split(rel, string(filepath.Separator)) {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		parts = []string{""}
	}
	return parts
}

// buildCandidates probes buildRoot for directories matching relPath with
// a suffix appended to exactly one segment (the empty suffix is implicit,
// so the literal path is probed too).
//
// Directories that exist with the full modified path go into the exact
// set. When the full path is missing but the prefix up through the
// modified segment exists, that prefix goes into the root set: a build
// tree is there, it just does not mirror the deeper source layout.
func buildCandidates(fsys types.FS, relPath string, buildRoot *paths.Directory, suffixes []string, logger zerolog.Logger) (exact, roots map[string]struct{}) {
	exact = make(map[string]struct{})
	roots = make(map[string]struct{})

	parts := splitSegments(relPath)
	logger.Debug().Str("relative", relPath).Strs("parts", parts).Msg("searching build candidates")

	for _, suffix := range append(append([]string{}, suffixes...), "") {
		for i := range parts {
			modified := make([]string, len(parts))
			copy(modified, parts)
			modified[i] = parts[i] + suffix

			dir := filepath.Join(append([]string{buildRoot.Path()}, modified...)...)
			if types.IsDir(fsys, dir) {
				logger.Trace().Str("dir", dir).Msg("candidate exists")
				exact[dir] = struct{}{}
				continue
			}
			logger.Trace().Str("dir", dir).Msg("not a directory")

			// the build tree may exist without mirroring the deeper
			// source layout past the suffixed segment
			possibleRoot := filepath.Join(append([]string{buildRoot.Path()}, modified[:i+1]...)...)
			if types.IsDir(fsys, possibleRoot) {
				logger.Trace().Str("dir", possibleRoot).Msg("found potential root dir")
				roots[possibleRoot] = struct{}{}
			}
		}
	}
	return exact, roots
}

// splitRoot decomposes a root directory into its parent and final
// segment so the root's own name can participate in suffix search.
// ok is false for the filesystem root, which has no final segment.
func splitRoot(d *paths.Directory) (parent *paths.Directory, base string, ok bool) {
	clean := filepath.Clean(d.Path())
	parentPath := filepath.Dir(clean)
	if parentPath == clean {
		return nil, "", false
	}
	return paths.NewDirectory(parentPath), filepath.Base(clean), true
}

// suffixedRoots returns buildDir plus its suffixed sibling variants
// (build=/build/llvm, suffix=-debug also matches under /build/llvm-debug).
func suffixedRoots(buildDir *paths.Directory, suffixes []string) []*paths.Directory {
	roots := []*paths.Directory{buildDir}
	parent, base, ok := splitRoot(buildDir)
	if !ok {
		return roots
	}
	for _, suffix := range suffixes {
		if suffix == "" {
			continue
		}
		roots = append(roots, paths.NewDirectory(filepath.Join(parent.Path(), base+suffix)))
	}
	return roots
}

// sourceCandidates finds source directories for path under mapping by
// replacing a build-root prefix (or a suffixed variant of the build
// root) and stripping a suffix from exactly one segment, only where
// the segment actually carries that suffix.
func sourceCandidates(fsys types.FS, path *paths.Directory, mapping *config.DirMapping, logger zerolog.Logger) map[string]struct{} {
	candidates := make(map[string]struct{})

	for _, buildDir := range mapping.BuildDirs {
		for _, root := range suffixedRoots(buildDir, mapping.Suffixes) {
			rel, ok := path.TryReplacePrefix(root, "")
			if !ok {
				continue
			}
			logger.Debug().Stringer("mapping", mapping).Str("relative", rel).Msg("path is under build root")

			defaultResult := filepath.Join(mapping.Source.Path(), rel)
			if types.IsDir(fsys, defaultResult) {
				logger.Trace().Str("dir", defaultResult).Msg("source candidate exists")
				candidates[defaultResult] = struct{}{}
			}
			if len(mapping.Suffixes) == 0 {
				continue
			}

			parts := splitSegments(rel)
			for i, name := range parts {
				for _, suffix := range mapping.Suffixes {
					if suffix == "" || !strings.HasSuffix(name, suffix) {
						continue
					}
					modified := make([]string, len(parts))
					copy(modified, parts)
					modified[i] = strings.TrimSuffix(name, suffix)

					dir := filepath.Join(append([]string{mapping.Source.Path()}, modified...)...)
					if types.IsDir(fsys, dir) {
						logger.Trace().Str("dir", dir).Msg("source candidate exists")
						candidates[dir] = struct{}{}
					} else {
						logger.Trace().Str("dir", dir).Msg("not a directory")
					}
				}
			}
		}
	}
	return candidates
}

func toSorted(set map[string]struct{}) []string {
	result := make([]string, 0, len(set))
	for s := range set {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}
