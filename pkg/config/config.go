// Package config loads the develdirs mapping table: the ordered list of
// source/build root pairs, override mappings, suffix rules and ignored
// prefixes that drive resolution.
package config

import (
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/develdirs/pkg/errors"
	"github.com/arthur-debert/develdirs/pkg/paths"
	"github.com/arthur-debert/develdirs/pkg/types"
)

// DirMapping is one source root with its build roots and suffix rules.
type DirMapping struct {
	// Source is the source root of this mapping
	Source *paths.Directory

	// BuildDirs are the build roots, in configured order. A mapping used
	// for build resolution must have at least one.
	BuildDirs []*paths.Directory

	// Suffixes are the per-segment build suffixes tried during candidate
	// search (falls back to the config-wide default when empty in the file)
	Suffixes []string

	// Basename, when set, overrides the computed relative path
	Basename string
}

func (m *DirMapping) String() string {
	builds := make([]string, len(m.BuildDirs))
	for i, b := range m.BuildDirs {
		builds[i] = b.Path()
	}
	return m.Source.Path() + " -> [" + strings.Join(builds, ", ") + "]"
}

// Config is the full mapping table, immutable for the run.
type Config struct {
	// Directories is the generic mapping list, in routing and scanning order
	Directories []*DirMapping

	// Overrides are checked strictly before Directories
	Overrides []*DirMapping

	// DefaultSuffixes apply to mappings that specify none
	DefaultSuffixes []string

	// IgnoredDirs are absolute, separator-terminated prefixes excluded
	// from the repository cache
	IgnoredDirs []string
}

// rawConfig mirrors the on-disk config shape. The toml tags are used by
// sample-config generation, which must round-trip through the same keys.
type rawConfig struct {
	Directories        []rawMapping `koanf:"directories" toml:"directories"`
	Overrides          []rawMapping `koanf:"overrides" toml:"overrides,omitempty"`
	BuildSuffixes      []string     `koanf:"build-suffixes" toml:"build-suffixes,omitempty"`
	IgnoredDirectories []string     `koanf:"ignored_directories" toml:"ignored_directories,omitempty"`
}

// rawMapping mirrors one mapping entry. Build accepts a single string or
// a list in the file; weakly typed decoding normalizes both to a slice.
type rawMapping struct {
	Source        string   `koanf:"source" toml:"source"`
	Build         []string `koanf:"build" toml:"build"`
	BuildSuffixes []string `koanf:"build-suffixes" toml:"build-suffixes,omitempty"`
	Basename      string   `koanf:"basename" toml:"basename,omitempty"`
}

// Load reads and validates the config file at path. The parser is chosen
// by file extension (TOML, YAML, or the legacy JSON format).
func Load(path string) (*Config, error) {
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "could not parse config file %s", path)
	}

	var raw rawConfig
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &raw,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &raw, unmarshalConf); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "could not decode config file %s", path)
	}

	return buildConfig(&raw)
}

// LoadDefault locates the config file via p and loads it.
func LoadDefault(p *paths.Paths, fsys types.FS) (*Config, error) {
	path, err := p.FindConfigFile(fsys)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

func parserFor(path string) (koanf.Parser, error) {
	switch filepath.Ext(path) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return kjson.Parser(), nil
	}
	return nil, errors.Newf(errors.ErrConfigLoad, "unrecognized config file format: %s", path)
}

func buildConfig(raw *rawConfig) (*Config, error) {
	cfg := &Config{
		DefaultSuffixes: raw.BuildSuffixes,
	}

	if len(raw.Directories) == 0 {
		return nil, errors.New(errors.ErrConfigValid, "config defines no directory mappings")
	}

	var err error
	if cfg.Directories, err = buildMappings(raw.Directories, raw.BuildSuffixes); err != nil {
		return nil, err
	}
	if cfg.Overrides, err = buildMappings(raw.Overrides, raw.BuildSuffixes); err != nil {
		return nil, err
	}

	for _, dir := range raw.IgnoredDirectories {
		expanded := paths.Expand(dir)
		if !filepath.IsAbs(expanded) {
			return nil, errors.Newf(errors.ErrConfigValid, "ignored directory %q is not absolute", dir)
		}
		cfg.IgnoredDirs = append(cfg.IgnoredDirs, terminate(filepath.Clean(expanded)))
	}

	return cfg, nil
}

func buildMappings(raws []rawMapping, defaultSuffixes []string) ([]*DirMapping, error) {
	mappings := make([]*DirMapping, 0, len(raws))
	for _, r := range raws {
		if r.Source == "" {
			return nil, errors.New(errors.ErrConfigValid, "mapping without a source root")
		}
		m := &DirMapping{
			Source:   paths.NewDirectory(paths.Expand(r.Source)),
			Suffixes: r.BuildSuffixes,
			Basename: r.Basename,
		}
		if m.Suffixes == nil {
			m.Suffixes = defaultSuffixes
		}
		for _, b := range r.Build {
			if b == "" {
				continue
			}
			m.BuildDirs = append(m.BuildDirs, paths.NewDirectory(paths.Expand(b)))
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}

func terminate(p string) string {
	sep := string(filepath.Separator)
	if !strings.HasSuffix(p, sep) {
		p += sep
	}
	return p
}
