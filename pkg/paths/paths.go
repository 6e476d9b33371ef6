// Package paths provides centralized path handling for develdirs.
// It implements XDG Base Directory compliance for the config and cache
// file locations and the Directory value used throughout resolution.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/develdirs/pkg/errors"
	"github.com/arthur-debert/develdirs/pkg/types"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for develdirs
	EnvConfigDir = "DEVELDIRS_CONFIG_DIR"

	// EnvCacheDir overrides the XDG cache directory for develdirs
	EnvCacheDir = "DEVELDIRS_CACHE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name for develdirs-specific files
	AppDirName = "develdirs"

	// CacheFileName is the name of the repository cache file
	CacheFileName = "devel-dirs.cache"

	// LegacyConfigFile is the pre-rename config file name, probed
	// directly under the XDG config home for existing setups.
	LegacyConfigFile = "devel_dirs.json"
)

// ConfigFileNames lists recognized config file names in probe order.
var ConfigFileNames = []string{"develdirs.toml", "develdirs.yaml", "devel_dirs.json"}

// Paths provides the config and cache file locations for a run
type Paths struct {
	// configDir is the directory searched for the config file
	configDir string

	// cacheDir is the directory holding the repository cache file
	cacheDir string
}

// New creates a Paths instance, respecting environment overrides.
func New() *Paths {
	p := &Paths{}

	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.configDir = ExpandHome(configDir)
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	if cacheDir := os.Getenv(EnvCacheDir); cacheDir != "" {
		p.cacheDir = ExpandHome(cacheDir)
	} else {
		p.cacheDir = filepath.Join(xdg.CacheHome, AppDirName)
	}

	return p
}

// ConfigDir returns the config directory for develdirs
func (p *Paths) ConfigDir() string {
	return p.configDir
}

// CacheDir returns the cache directory for develdirs
func (p *Paths) CacheDir() string {
	return p.cacheDir
}

// CacheFilePath returns the path of the repository cache file
func (p *Paths) CacheFilePath() string {
	return filepath.Join(p.cacheDir, CacheFileName)
}

// FindConfigFile probes the recognized config file names under the config
// directory, plus the legacy devel_dirs.json directly in the XDG config
// home, and returns the first one that exists.
func (p *Paths) FindConfigFile(fsys types.FS) (string, error) {
	candidates := make([]string, 0, len(ConfigFileNames)+1)
	for _, name := range ConfigFileNames {
		candidates = append(candidates, filepath.Join(p.configDir, name))
	}
	candidates = append(candidates, filepath.Join(filepath.Dir(p.configDir), LegacyConfigFile))

	for _, path := range candidates {
		if info, err := fsys.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errors.Newf(errors.ErrConfigLoad,
		"could not find config file (searched %s)", p.configDir)
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to HOME env var
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				// Can't expand, return as-is
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}

// Expand performs environment-variable and home expansion on a config
// path string.
func Expand(path string) string {
	return ExpandHome(os.ExpandEnv(path))
}

// Resolve returns the symlink-resolved form of path, tolerating
// components that do not exist. The result is clean, without a trailing
// separator.
func Resolve(path string) string {
	return resolveSymlinks(path)
}

// SafeGetwd returns the current working directory, falling back to the
// filesystem root when the working directory has been deleted.
func SafeGetwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return string(filepath.Separator)
	}
	return cwd
}
