// Package resolver answers "build dir for X" and "source dir for X"
// using the configured mapping table, the repository cache, and a
// suffix-aware candidate search against the filesystem.
package resolver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/develdirs/pkg/cache"
	"github.com/arthur-debert/develdirs/pkg/config"
	"github.com/arthur-debert/develdirs/pkg/errors"
	"github.com/arthur-debert/develdirs/pkg/logging"
	"github.com/arthur-debert/develdirs/pkg/paths"
	"github.com/arthur-debert/develdirs/pkg/prompt"
	"github.com/arthur-debert/develdirs/pkg/types"
)

// Resolver orchestrates the mapping table, candidate search, repository
// cache and disambiguation prompt for one invocation. It is constructed
// once per run; there is no shared mutable state beyond the cache it
// was handed.
type Resolver struct {
	// Diag receives user-facing notices ("Already in build dir.", guesses)
	Diag io.Writer

	cfg     *config.Config
	cache   *cache.RepoCache
	fsys    types.FS
	chooser prompt.Chooser
	logger  zerolog.Logger
}

// New creates a Resolver.
func New(cfg *config.Config, repoCache *cache.RepoCache, fsys types.FS, chooser prompt.Chooser) *Resolver {
	return &Resolver{
		Diag:    os.Stderr,
		cfg:     cfg,
		cache:   repoCache,
		fsys:    fsys,
		chooser: chooser,
		logger:  logging.GetLogger("resolver"),
	}
}

// ResolveBuild returns the build directory for the named repository, or
// for the current working directory when repoName is empty.
func (r *Resolver) ResolveBuild(repoName string) (string, error) {
	var ref *paths.Directory
	if repoName != "" {
		dir, err := r.repoDir(repoName)
		if err != nil {
			return "", err
		}
		ref = dir
	} else {
		ref = paths.NewDirectory(paths.Resolve(paths.SafeGetwd()))
	}
	r.logger.Debug().Stringer("path", ref).Msg("finding build dir")

	// already resolved: the reference path is inside a build root
	for _, mapping := range r.cfg.Directories {
		for _, buildDir := range mapping.BuildDirs {
			if ref.IsSubdirectoryOf(buildDir) {
				fmt.Fprintln(r.Diag, "Already in build dir.")
				return filepath.Clean(ref.Path()), nil
			}
		}
	}

	for _, mapping := range r.mappingOrder() {
		result, found, err := r.tryBuildMapping(mapping, ref)
		if err != nil {
			return "", err
		}
		if found {
			return result, nil
		}
	}

	// not under any source root: fall back to the first build root
	first := r.cfg.Directories[0]
	if len(first.BuildDirs) == 0 {
		return "", errors.Newf(errors.ErrNoBuildRoot,
			"no build directory defined for source root %s", first.Source)
	}
	r.logger.Debug().Stringer("path", ref).Msg("no mapping matched, using default build root")
	return filepath.Clean(first.BuildDirs[0].Path()), nil
}

// tryBuildMapping runs the candidate search for one mapping. Candidate
// sets from the mapping's build roots are unioned; exact candidates are
// preferred over root candidates. found is false when the mapping does
// not apply or yielded nothing, so the caller moves on.
func (r *Resolver) tryBuildMapping(mapping *config.DirMapping, ref *paths.Directory) (result string, found bool, err error) {
	if !ref.IsSubdirectoryOf(mapping.Source) {
		r.logger.Debug().Stringer("mapping", mapping).Msg("skipping mapping, not a subdirectory of its source")
		return "", false, nil
	}

	rel := mapping.Basename
	if rel == "" {
		var ok bool
		rel, ok = ref.TryReplacePrefix(mapping.Source, "")
		if !ok {
			return "", false, nil
		}
	}

	if len(mapping.BuildDirs) == 0 {
		return "", false, errors.Newf(errors.ErrNoBuildRoot,
			"no build directory defined for source root %s", mapping.Source)
	}

	exact := make(map[string]struct{})
	rootCandidates := make(map[string]struct{})
	for _, buildDir := range mapping.BuildDirs {
		e, roots := buildCandidates(r.fsys, rel, buildDir, mapping.Suffixes, r.logger)
		for c := range e {
			exact[c] = struct{}{}
		}
		for c := range roots {
			rootCandidates[c] = struct{}{}
		}
		// The build root's own name may carry the suffix (build=/b/llvm,
		// tree at /b/llvm-debug). Probe each suffixed variant of the root
		// with the relative path unchanged.
		for _, variant := range suffixedRoots(buildDir, mapping.Suffixes) {
			if variant == buildDir {
				continue
			}
			full := filepath.Join(variant.Path(), rel)
			if types.IsDir(r.fsys, full) {
				exact[full] = struct{}{}
			} else if types.IsDir(r.fsys, filepath.Clean(variant.Path())) {
				rootCandidates[filepath.Clean(variant.Path())] = struct{}{}
			}
		}
	}
	r.logger.Debug().
		Strs("candidates", toSorted(exact)).
		Strs("rootCandidates", toSorted(rootCandidates)).
		Stringer("mapping", mapping).
		Msg("candidate search finished")

	switch {
	case len(exact) > 0:
		chosen, err := r.chooser.Choose("Multiple build directories found", toSorted(exact))
		return chosen, err == nil, err
	case len(rootCandidates) > 0:
		chosen, err := r.chooser.Choose("Multiple build root directories found", toSorted(rootCandidates))
		return chosen, err == nil, err
	}
	return "", false, nil
}

// ResolveSource returns the source directory for the named repository,
// or for the current working directory when repoName is empty.
func (r *Resolver) ResolveSource(repoName string) (string, error) {
	if repoName != "" {
		return r.sourceForRepo(repoName)
	}

	cwd := paths.NewDirectory(paths.SafeGetwd())
	r.logger.Debug().Stringer("path", cwd).Msg("finding source dir")

	// Already in a source dir. Build roots may legitimately sit below a
	// source root (src=~/x/llvm, build=~/x/build/llvm), so being inside
	// one of this mapping's build roots disqualifies the short circuit.
	for _, mapping := range r.cfg.Directories {
		inBuild := false
		for _, buildDir := range mapping.BuildDirs {
			if cwd.IsSubdirectoryOf(buildDir) {
				inBuild = true
				break
			}
		}
		if !inBuild && cwd.IsSubdirectoryOf(mapping.Source) {
			fmt.Fprintln(r.Diag, "Already in source dir.")
			return filepath.Clean(cwd.Path()), nil
		}
	}

	for _, mapping := range r.mappingOrder() {
		candidates := sourceCandidates(r.fsys, cwd, mapping, r.logger)
		if len(candidates) == 0 {
			continue
		}
		chosen, err := r.chooser.Choose("Multiple source directories found", toSorted(candidates))
		if err != nil {
			return "", err
		}
		return r.checkSourceResult(chosen)
	}

	// not under any build root: fall back to the first source root
	r.logger.Debug().Stringer("path", cwd).Msg("no mapping matched, using default source root")
	return filepath.Clean(r.cfg.Directories[0].Source.Path()), nil
}

// sourceForRepo resolves a repository name through the cache, falling
// back to probing <source root>/<name> under every mapping.
func (r *Resolver) sourceForRepo(name string) (string, error) {
	dirs, err := r.cache.Lookup(name)
	if err != nil {
		return "", err
	}
	if dirs != nil {
		chosen, err := r.chooser.Choose("Multiple source directories found for name "+name, dirs)
		if err != nil {
			return "", err
		}
		return r.checkSourceResult(chosen)
	}

	fmt.Fprintln(r.Diag, "Could not find repository", name)
	for _, mapping := range append(append([]*config.DirMapping{}, r.cfg.Directories...), r.cfg.Overrides...) {
		candidate := filepath.Join(mapping.Source.Path(), name)
		r.logger.Debug().Str("dir", candidate).Msg("probing source root")
		if !types.IsDir(r.fsys, candidate) {
			continue
		}
		fmt.Fprintln(r.Diag, "Source directory for", name, "guessed as", candidate)
		update, err := r.chooser.Confirm("Update the repository cache for " + mapping.Source.Path() + " now?")
		if err != nil {
			return "", err
		}
		if update {
			r.cache.Update(filepath.Clean(mapping.Source.Path()), cache.DefaultScanDepth, r.cfg.IgnoredDirs)
			if err := r.cache.Save(); err != nil {
				return "", err
			}
		}
		return candidate, nil
	}
	return "", errors.Newf(errors.ErrNotFound, "cannot find repository %s", name)
}

// checkSourceResult warns when a chosen source directory has vanished
// and offers to clean up the cache before returning it anyway.
func (r *Resolver) checkSourceResult(result string) (string, error) {
	if !types.IsDir(r.fsys, result) {
		fmt.Fprintln(r.Diag, "Chosen project no longer exists:", result)
		cleanup, err := r.chooser.Confirm("Clean up the repository cache now?")
		if err != nil {
			return "", err
		}
		if cleanup && r.cache.Cleanup(r.cfg.IgnoredDirs) {
			if err := r.cache.Save(); err != nil {
				return "", err
			}
		}
	}
	return filepath.Clean(result), nil
}

// repoDir resolves a repository name to a Directory via the cache,
// prompting when the name maps to several checkouts.
func (r *Resolver) repoDir(name string) (*paths.Directory, error) {
	dirs, err := r.cache.Lookup(name)
	if err != nil {
		return nil, err
	}
	if dirs == nil {
		return nil, errors.Newf(errors.ErrNotFound, "cannot find repository %s", name)
	}
	chosen, err := r.chooser.Choose("Multiple source directories found for name "+name, dirs)
	if err != nil {
		return nil, err
	}
	return paths.NewDirectory(chosen), nil
}

// mappingOrder returns overrides followed by the generic mappings. The
// first mapping that yields any candidate wins; candidates are never
// merged across mappings.
func (r *Resolver) mappingOrder() []*config.DirMapping {
	order := make([]*config.DirMapping, 0, len(r.cfg.Overrides)+len(r.cfg.Directories))
	order = append(order, r.cfg.Overrides...)
	order = append(order, r.cfg.Directories...)
	return order
}
