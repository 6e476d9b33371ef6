// Package cache maintains the persistent repository-name index: a JSON
// mapping from repository name to the source directories known for it,
// built by scanning configured roots for version-control markers.
package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/develdirs/pkg/errors"
	"github.com/arthur-debert/develdirs/pkg/logging"
	"github.com/arthur-debert/develdirs/pkg/paths"
	"github.com/arthur-debert/develdirs/pkg/types"
)

// RepoCache is the name -> source directories index. Names are not
// unique: several checkouts of the same project under different roots
// are expected and normal. The cache file is read lazily on first
// access and persisted only by an explicit Save.
type RepoCache struct {
	// Diag receives user-facing progress and warning messages
	Diag io.Writer

	fsys   types.FS
	path   string
	logger zerolog.Logger

	entries map[string][]string
	loaded  bool
}

// New creates a RepoCache backed by the cache file at path.
func New(fsys types.FS, path string) *RepoCache {
	return &RepoCache{
		Diag:   os.Stderr,
		fsys:   fsys,
		path:   path,
		logger: logging.GetLogger("cache"),
	}
}

// Path returns the cache file location.
func (c *RepoCache) Path() string {
	return c.path
}

// load reads the cache file. A missing or unparseable file is not an
// error: the cache starts empty.
func (c *RepoCache) load() {
	if c.loaded {
		return
	}
	c.loaded = true
	c.entries = make(map[string][]string)

	data, err := c.fsys.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Debug().Str("path", c.path).Msg("no cache file yet")
		} else {
			fmt.Fprintln(c.Diag, "Cache data was invalid, assuming empty!")
		}
		return
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		fmt.Fprintln(c.Diag, "Cache data was invalid, assuming empty!")
		c.entries = make(map[string][]string)
	}
}

// Lookup returns the known source directories for name. A missing name
// returns nil with no error so callers can fall back to heuristics; an
// entry with zero paths is a corrupted cache and fatal.
func (c *RepoCache) Lookup(name string) ([]string, error) {
	c.load()
	dirs, ok := c.entries[name]
	if !ok {
		return nil, nil
	}
	if len(dirs) == 0 {
		return nil, errors.Newf(errors.ErrCacheCorrupt, "corrupted cache file: %s is empty", name)
	}
	result := make([]string, len(dirs))
	copy(result, dirs)
	return result, nil
}

// LookupPrefix returns all cached names starting with prefix, sorted.
// An empty prefix returns every name.
func (c *RepoCache) LookupPrefix(prefix string) []string {
	c.load()
	var names []string
	for name := range c.entries {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Len returns the number of cached names.
func (c *RepoCache) Len() int {
	c.load()
	return len(c.entries)
}

// Update scans root for version-control markers up to depth directory
// levels and records every discovered project directory under its
// basename. Scanning twice is idempotent: exact paths are never
// duplicated under a name.
func (c *RepoCache) Update(root string, depth int, ignored []string) {
	c.load()
	fmt.Fprintln(c.Diag, "Checking", root, "for projects")

	markers := findMarkers(c.fsys, root, depth, c.logger)
	for _, marker := range markers {
		project := paths.Resolve(filepath.Dir(marker))
		if prefix, ok := underIgnored(project, ignored); ok {
			fmt.Fprintln(c.Diag, "Not adding repo", project, "since it is below ignored dir", prefix)
			continue
		}
		c.add(project)
	}
}

func (c *RepoCache) add(project string) {
	name := filepath.Base(project)
	dirs, ok := c.entries[name]
	if !ok {
		fmt.Fprintln(c.Diag, "Adding repo", project, "as", name)
		c.entries[name] = []string{project}
		return
	}
	for _, d := range dirs {
		if d == project {
			c.logger.Debug().Str("path", project).Msg("repo already in cache")
			return
		}
	}
	fmt.Fprintln(c.Diag, "Adding", project, "as another repo for", name)
	c.entries[name] = append(dirs, project)
}

// Cleanup removes every cached path that no longer exists as a directory
// or lies under an ignored prefix, deleting a name once its last path is
// gone. It reports whether anything changed.
func (c *RepoCache) Cleanup(ignored []string) bool {
	c.load()
	if len(c.entries) == 0 {
		fmt.Fprintln(c.Diag, "Cache is empty")
		return false
	}

	changed := false
	for name, dirs := range c.entries {
		kept := make([]string, 0, len(dirs))
		for _, path := range dirs {
			_, isIgnored := underIgnored(paths.Resolve(path), ignored)
			if !isIgnored && types.IsDir(c.fsys, path) {
				kept = append(kept, path)
				continue
			}
			changed = true
			reason := "no longer exists"
			if isIgnored {
				reason = "is below an ignored directory"
			}
			fmt.Fprintln(c.Diag, "Removed", path, "from cache for", name, "as it", reason)
		}
		if len(kept) == 0 {
			delete(c.entries, name)
		} else {
			c.entries[name] = kept
		}
	}

	if !changed {
		fmt.Fprintln(c.Diag, "All entries in cache are valid.")
	}
	return changed
}

// Save persists the cache, pretty-printed, via a temporary file and
// rename so a killed process never leaves a truncated cache behind.
// Cross-process locking is deliberately absent: concurrent writers race
// and the last one wins.
func (c *RepoCache) Save() error {
	c.load()
	data, err := json.MarshalIndent(c.entries, "", "    ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCacheWrite, "could not encode cache")
	}
	if err := c.fsys.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrCacheWrite, "could not create cache directory for %s", c.path)
	}
	tmp := c.path + ".tmp"
	if err := c.fsys.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrCacheWrite, "could not write cache file %s", tmp)
	}
	if err := c.fsys.Rename(tmp, c.path); err != nil {
		return errors.Wrapf(err, errors.ErrCacheWrite, "could not replace cache file %s", c.path)
	}
	c.logger.Debug().Str("path", c.path).Int("names", len(c.entries)).Msg("cache saved")
	return nil
}

// Dump writes the cache, pretty-printed, to w. Used by pretend runs.
func (c *RepoCache) Dump(w io.Writer) error {
	c.load()
	data, err := json.MarshalIndent(c.entries, "", "    ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCacheWrite, "could not encode cache")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// underIgnored reports whether dir falls under one of the ignored
// prefixes, which are absolute and separator-terminated.
func underIgnored(dir string, ignored []string) (string, bool) {
	sep := string(filepath.Separator)
	terminated := dir
	if !strings.HasSuffix(terminated, sep) {
		terminated += sep
	}
	for _, prefix := range ignored {
		if strings.HasPrefix(terminated, prefix) {
			return prefix, true
		}
	}
	return "", false
}
