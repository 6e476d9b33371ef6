package config

import (
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/develdirs/pkg/errors"
)

const sampleHeader = `# develdirs configuration
#
# Each [[directories]] entry pairs a source root with one or more build
# roots. build-suffixes are tried on every path segment when probing for
# a configuration-specific build tree (e.g. llvm -> llvm-debug).
# [[overrides]] entries have the same shape and are checked first.
# Path values may use environment variables and a leading ~.

`

// GenerateSample renders a commented sample config file in TOML format.
func GenerateSample() (string, error) {
	sample := rawConfig{
		BuildSuffixes:      []string{"-build"},
		IgnoredDirectories: []string{"$HOME/.cache/"},
		Directories: []rawMapping{
			{
				Source:        "$HOME/devel",
				Build:         []string{"/build"},
				BuildSuffixes: []string{"-debug", "-release"},
			},
		},
		Overrides: []rawMapping{
			{
				Source:   "$HOME/devel/llvm-project",
				Build:    []string{"/build/llvm"},
				Basename: "llvm",
			},
		},
	}

	data, err := gotoml.Marshal(sample)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "could not render sample config")
	}
	return sampleHeader + string(data), nil
}
