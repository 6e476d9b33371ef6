package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/develdirs/pkg/cache"
	"github.com/arthur-debert/develdirs/pkg/config"
	"github.com/arthur-debert/develdirs/pkg/errors"
	"github.com/arthur-debert/develdirs/pkg/filesystem"
	"github.com/arthur-debert/develdirs/pkg/paths"
	"github.com/arthur-debert/develdirs/pkg/prompt"
	"github.com/arthur-debert/develdirs/pkg/resolver"
	"github.com/arthur-debert/develdirs/pkg/types"
)

// runtime bundles the process-scoped collaborators built once per
// invocation: config, cache, filesystem and the interactive chooser.
type runtime struct {
	cfg     *config.Config
	cache   *cache.RepoCache
	fsys    types.FS
	console *prompt.Console
	paths   *paths.Paths
}

func newRuntime() (*runtime, error) {
	fsys := filesystem.NewOS()
	p := paths.New()
	cfg, err := config.LoadDefault(p, fsys)
	if err != nil {
		return nil, err
	}
	return &runtime{
		cfg:     cfg,
		cache:   cache.New(fsys, p.CacheFilePath()),
		fsys:    fsys,
		console: prompt.NewConsole(),
		paths:   p,
	}, nil
}

func (rt *runtime) resolver() *resolver.Resolver {
	return resolver.New(rt.cfg, rt.cache, rt.fsys, rt.console)
}

// completeRepoNames completes the repository argument from cached names
func completeRepoNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	rt, err := newRuntime()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return rt.cache.LookupPrefix(toComplete), cobra.ShellCompDirectiveNoFileComp
}

func newSourceCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "source [repository]",
		Short:             MsgSourceShort,
		Long:              MsgSourceLong,
		GroupID:           "resolve",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRepoNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			result, err := rt.resolver().ResolveSource(name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "build [repository]",
		Short:             MsgBuildShort,
		Long:              MsgBuildLong,
		GroupID:           "resolve",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRepoNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			result, err := rt.resolver().ResolveBuild(name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func newCacheLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "cache-lookup [prefix]",
		Short:   MsgCacheLookupShort,
		GroupID: "cache",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) > 0 {
				prefix = args[0]
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(rt.cache.LookupPrefix(prefix), " "))
			return nil
		},
	}
}

func newUpdateCacheCmd() *cobra.Command {
	var pretend bool

	cmd := &cobra.Command{
		Use:     "update-cache [path] [depth]",
		Short:   MsgUpdateCacheShort,
		Long:    MsgUpdateCacheLong,
		GroupID: "cache",
		Args:    cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}

			var roots []string
			if len(args) > 0 {
				roots = []string{filepath.Clean(paths.Expand(args[0]))}
			} else {
				for _, mapping := range rt.cfg.Directories {
					roots = append(roots, filepath.Clean(mapping.Source.Path()))
				}
			}
			if len(roots) == 0 {
				return errors.New(errors.ErrConfigValid, "could not find any paths to update, is your config valid?")
			}

			depth, err := scanDepth(rt.console, args)
			if err != nil {
				return err
			}

			if !pretend {
				fmt.Fprintln(cmd.ErrOrStderr(), "saving to", rt.cache.Path())
			}
			for _, root := range roots {
				rt.cache.Update(root, depth, rt.cfg.IgnoredDirs)
			}
			if pretend {
				return rt.cache.Dump(cmd.OutOrStdout())
			}
			return rt.cache.Save()
		},
	}

	cmd.Flags().BoolVarP(&pretend, "pretend", "p", false, MsgFlagPretend)
	return cmd
}

// scanDepth determines the scan depth: the second positional argument
// when given, otherwise a prompt on interactive runs, otherwise the
// default.
func scanDepth(console *prompt.Console, args []string) (int, error) {
	raw := ""
	if len(args) > 1 {
		raw = args[1]
	} else if prompt.IsInteractive() {
		answer, err := console.Ask(
			fmt.Sprintf("How many levels below the root would you like to search for projects? [Default=%d]", cache.DefaultScanDepth),
			strconv.Itoa(cache.DefaultScanDepth))
		if err != nil {
			return 0, err
		}
		raw = answer
	} else {
		return cache.DefaultScanDepth, nil
	}

	depth, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Newf(errors.ErrInvalidInput, "could not convert %q to an integer value", raw)
	}
	if depth < 1 {
		return 0, errors.Newf(errors.ErrInvalidInput, "invalid depth: %d", depth)
	}
	return depth, nil
}

func newCleanupCacheCmd() *cobra.Command {
	var pretend bool

	cmd := &cobra.Command{
		Use:     "cleanup-cache",
		Short:   MsgCleanupCacheShort,
		GroupID: "cache",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			changed := rt.cache.Cleanup(rt.cfg.IgnoredDirs)
			if pretend {
				return rt.cache.Dump(cmd.OutOrStdout())
			}
			if changed {
				return rt.cache.Save()
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&pretend, "pretend", "p", false, MsgFlagPretend)
	return cmd
}

func newGenConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen-config",
		Short: MsgGenConfigShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, err := config.GenerateSample()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), sample)
			return nil
		},
	}
}
