package resolver_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/develdirs/pkg/cache"
	"github.com/arthur-debert/develdirs/pkg/config"
	"github.com/arthur-debert/develdirs/pkg/errors"
	"github.com/arthur-debert/develdirs/pkg/filesystem"
	"github.com/arthur-debert/develdirs/pkg/paths"
	"github.com/arthur-debert/develdirs/pkg/prompt"
	"github.com/arthur-debert/develdirs/pkg/resolver"
	"github.com/arthur-debert/develdirs/pkg/testutil"
)

func mapping(source string, builds []string, suffixes []string) *config.DirMapping {
	m := &config.DirMapping{
		Source:   paths.NewDirectory(source),
		Suffixes: suffixes,
	}
	for _, b := range builds {
		m.BuildDirs = append(m.BuildDirs, paths.NewDirectory(b))
	}
	return m
}

// newResolver wires a resolver with scripted prompt input and captured
// diagnostics. cacheContent seeds the cache file when non-empty.
func newResolver(t *testing.T, cfg *config.Config, cacheContent, input string) (*resolver.Resolver, *cache.RepoCache, *bytes.Buffer) {
	t.Helper()

	fsys := filesystem.NewOS()
	cacheFile := filepath.Join(t.TempDir(), "devel-dirs.cache")
	if cacheContent != "" {
		testutil.CreateFile(t, filepath.Dir(cacheFile), filepath.Base(cacheFile), cacheContent)
	}
	repoCache := cache.New(fsys, cacheFile)

	diag := &bytes.Buffer{}
	repoCache.Diag = diag
	r := resolver.New(cfg, repoCache, fsys, &prompt.Console{In: strings.NewReader(input), Err: diag})
	r.Diag = diag
	return r, repoCache, diag
}

func TestResolveBuild_RoundTrip(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")
	testutil.CreateDir(t, src, filepath.Join("x", "y"))
	want := testutil.CreateDir(t, bld, filepath.Join("x", "y"))

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, nil)}}
	r, _, _ := newResolver(t, cfg, "", "")

	testutil.Chdir(t, filepath.Join(src, "x", "y"))
	got, err := r.ResolveBuild("")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveBuild_AlreadyInBuild(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")
	inside := testutil.CreateDir(t, bld, filepath.Join("x", "y"))

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, nil)}}
	r, _, diag := newResolver(t, cfg, "", "")

	testutil.Chdir(t, inside)
	got, err := r.ResolveBuild("")
	require.NoError(t, err)
	assert.Equal(t, inside, got)
	assert.Contains(t, diag.String(), "Already in build dir.")
}

func TestResolveBuild_SegmentSuffix(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")
	cwd := testutil.CreateDir(t, src, filepath.Join("llvm", "tools"))
	want := testutil.CreateDir(t, bld, filepath.Join("llvm-debug", "tools"))

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, []string{"-debug"})}}
	r, _, _ := newResolver(t, cfg, "", "")

	testutil.Chdir(t, cwd)
	got, err := r.ResolveBuild("")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveBuild_SuffixedBuildRoot(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, filepath.Join("src", "llvm"))
	bld := filepath.Join(tmp, "build", "llvm")
	cwd := testutil.CreateDir(t, src, filepath.Join("tools", "clang"))
	want := testutil.CreateDir(t, tmp, filepath.Join("build", "llvm-debug", "tools", "clang"))

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, []string{"-debug"})}}
	r, _, _ := newResolver(t, cfg, "", "")

	testutil.Chdir(t, cwd)
	got, err := r.ResolveBuild("")
	require.NoError(t, err)
	assert.Equal(t, want, got, "the build root's own name may carry the suffix")
}

func TestResolveBuild_RootCandidate(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")
	cwd := testutil.CreateDir(t, src, filepath.Join("x", "y"))
	top := testutil.CreateDir(t, bld, "x")

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, nil)}}
	r, _, _ := newResolver(t, cfg, "", "")

	testutil.Chdir(t, cwd)
	got, err := r.ResolveBuild("")
	require.NoError(t, err)
	assert.Equal(t, top, got, "an existing build tree wins over nothing even without the full path")
}

func TestResolveBuild_ExactBeatsRoot(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")
	cwd := testutil.CreateDir(t, src, filepath.Join("x", "y"))
	want := testutil.CreateDir(t, bld, filepath.Join("x", "y"))
	testutil.CreateDir(t, bld, "x-debug")

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, []string{"-debug"})}}
	r, _, diag := newResolver(t, cfg, "", "")

	testutil.Chdir(t, cwd)
	got, err := r.ResolveBuild("")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NotContains(t, diag.String(), "Which one did you mean?",
		"root candidates are not offered when an exact match exists")
}

func TestResolveBuild_PromptsOnMultipleMatches(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")
	cwd := testutil.CreateDir(t, src, filepath.Join("x", "y"))
	debug := testutil.CreateDir(t, bld, filepath.Join("x-debug", "y"))
	release := testutil.CreateDir(t, bld, filepath.Join("x-release", "y"))

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, []string{"-debug", "-release"})}}
	r, _, diag := newResolver(t, cfg, "", "2\n")

	testutil.Chdir(t, cwd)
	got, err := r.ResolveBuild("")
	require.NoError(t, err)
	assert.Equal(t, release, got)

	out := diag.String()
	assert.Contains(t, out, "Multiple build directories found")
	assert.Contains(t, out, debug)
}

func TestResolveBuild_BadChoiceIsFatal(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")
	cwd := testutil.CreateDir(t, src, "x")
	testutil.CreateDir(t, bld, "x-debug")
	testutil.CreateDir(t, bld, "x-release")

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, []string{"-debug", "-release"})}}
	r, _, _ := newResolver(t, cfg, "", "7\n")

	testutil.Chdir(t, cwd)
	_, err := r.ResolveBuild("")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidChoice))
}

func TestResolveBuild_NextMappingWhenEmpty(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld2 := testutil.CreateDir(t, tmp, "b2")
	cwd := testutil.CreateDir(t, src, "x")
	want := testutil.CreateDir(t, bld2, filepath.Join("src", "x"))

	cfg := &config.Config{Directories: []*config.DirMapping{
		mapping(src, []string{filepath.Join(tmp, "missing")}, nil),
		mapping(tmp, []string{bld2}, nil),
	}}
	r, _, _ := newResolver(t, cfg, "", "")

	testutil.Chdir(t, cwd)
	got, err := r.ResolveBuild("")
	require.NoError(t, err)
	assert.Equal(t, want, got, "a mapping with no candidates yields to the next one")
}

func TestResolveBuild_OverrideWins(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	llvm := testutil.CreateDir(t, src, "llvm")
	bld := testutil.CreateDir(t, tmp, "build")
	bldOverride := testutil.CreateDir(t, tmp, "override-build")
	cwd := testutil.CreateDir(t, llvm, "tools")
	testutil.CreateDir(t, bld, filepath.Join("llvm", "tools"))
	want := testutil.CreateDir(t, bldOverride, "tools")

	cfg := &config.Config{
		Directories: []*config.DirMapping{mapping(src, []string{bld}, nil)},
		Overrides:   []*config.DirMapping{mapping(llvm, []string{bldOverride}, nil)},
	}
	r, _, _ := newResolver(t, cfg, "", "")

	testutil.Chdir(t, cwd)
	got, err := r.ResolveBuild("")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveBuild_BasenameOverride(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	checkout := testutil.CreateDir(t, tmp, "llvm-project")
	bld := testutil.CreateDir(t, tmp, "build")
	want := testutil.CreateDir(t, bld, "llvm")

	m := mapping(checkout, []string{bld}, nil)
	m.Basename = "llvm"
	cfg := &config.Config{Directories: []*config.DirMapping{m}}
	r, _, _ := newResolver(t, cfg, "", "")

	testutil.Chdir(t, checkout)
	got, err := r.ResolveBuild("")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveBuild_FallbackToFirstBuildRoot(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")
	elsewhere := testutil.CreateDir(t, tmp, "elsewhere")

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, nil)}}
	r, _, _ := newResolver(t, cfg, "", "")

	testutil.Chdir(t, elsewhere)
	got, err := r.ResolveBuild("")
	require.NoError(t, err)
	assert.Equal(t, bld, got)
}

func TestResolveBuild_NoBuildRoot(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	cwd := testutil.CreateDir(t, src, "x")

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, nil, nil)}}
	r, _, _ := newResolver(t, cfg, "", "")

	testutil.Chdir(t, cwd)
	_, err := r.ResolveBuild("")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNoBuildRoot))
}

func TestResolveBuild_NamedRepo(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")
	foo := testutil.CreateDir(t, src, "foo")
	want := testutil.CreateDir(t, bld, "foo")
	elsewhere := testutil.CreateDir(t, tmp, "elsewhere")

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, nil)}}
	r, _, _ := newResolver(t, cfg, `{"foo": ["`+foo+`"]}`, "")

	testutil.Chdir(t, elsewhere)
	got, err := r.ResolveBuild("foo")
	require.NoError(t, err)
	assert.Equal(t, want, got, "a repository name replaces the working directory as reference")
}

func TestResolveBuild_NamedRepoUnknown(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, nil)}}
	r, _, _ := newResolver(t, cfg, "", "")

	_, err := r.ResolveBuild("nope")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestResolveSource_AlreadyInSource(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")
	cwd := testutil.CreateDir(t, src, "x")

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, nil)}}
	r, _, diag := newResolver(t, cfg, "", "")

	testutil.Chdir(t, cwd)
	got, err := r.ResolveSource("")
	require.NoError(t, err)
	assert.Equal(t, cwd, got)
	assert.Contains(t, diag.String(), "Already in source dir.")
}

func TestResolveSource_BuildRootNestedInSource(t *testing.T) {
	// src=~/x, build=~/x/build: being inside the build root must not
	// trigger the already-in-source short circuit.
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, src, "build")
	cwd := testutil.CreateDir(t, bld, "x")
	want := testutil.CreateDir(t, src, "x")

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, nil)}}
	r, _, diag := newResolver(t, cfg, "", "")

	testutil.Chdir(t, cwd)
	got, err := r.ResolveSource("")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NotContains(t, diag.String(), "Already in source dir.")
}

func TestResolveSource_StripsSuffix(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")
	cwd := testutil.CreateDir(t, bld, filepath.Join("llvm-debug", "tools"))
	want := testutil.CreateDir(t, src, filepath.Join("llvm", "tools"))

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, []string{"-debug"})}}
	r, _, _ := newResolver(t, cfg, "", "")

	testutil.Chdir(t, cwd)
	got, err := r.ResolveSource("")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveSource_SuffixedBuildRoot(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, filepath.Join("src", "llvm"))
	bld := filepath.Join(tmp, "build", "llvm")
	cwd := testutil.CreateDir(t, tmp, filepath.Join("build", "llvm-debug", "tools"))
	want := testutil.CreateDir(t, src, "tools")

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, []string{"-debug"})}}
	r, _, _ := newResolver(t, cfg, "", "")

	testutil.Chdir(t, cwd)
	got, err := r.ResolveSource("")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveSource_FallbackToFirstSourceRoot(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")
	elsewhere := testutil.CreateDir(t, tmp, "elsewhere")

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, nil)}}
	r, _, _ := newResolver(t, cfg, "", "")

	testutil.Chdir(t, elsewhere)
	got, err := r.ResolveSource("")
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestResolveSource_NamedFromCache(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")
	foo := testutil.CreateDir(t, src, "foo")

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, nil)}}
	r, _, _ := newResolver(t, cfg, `{"foo": ["`+foo+`"]}`, "")

	got, err := r.ResolveSource("foo")
	require.NoError(t, err)
	assert.Equal(t, foo, got)
}

func TestResolveSource_NamedMultipleCheckouts(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")
	first := testutil.CreateDir(t, src, filepath.Join("a", "foo"))
	second := testutil.CreateDir(t, src, filepath.Join("b", "foo"))

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, nil)}}
	r, _, diag := newResolver(t, cfg, `{"foo": ["`+first+`", "`+second+`"]}`, "2\n")

	got, err := r.ResolveSource("foo")
	require.NoError(t, err)
	assert.Equal(t, second, got)
	assert.Contains(t, diag.String(), "Multiple source directories found for name foo")
}

func TestResolveSource_VanishedCheckoutOffersCleanup(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")
	gone := filepath.Join(src, "foo")

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, nil)}}
	r, repoCache, diag := newResolver(t, cfg, `{"foo": ["`+gone+`"]}`, "y\n")

	got, err := r.ResolveSource("foo")
	require.NoError(t, err)
	assert.Equal(t, gone, got, "the stale path is still returned after the warning")
	assert.Contains(t, diag.String(), "Chosen project no longer exists: "+gone)

	// cleanup was confirmed, so the saved cache has lost the entry
	fresh := cache.New(filesystem.NewOS(), repoCache.Path())
	fresh.Diag = &bytes.Buffer{}
	dirs, err := fresh.Lookup("foo")
	require.NoError(t, err)
	assert.Nil(t, dirs)
}

func TestResolveSource_GuessesUncachedRepo(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")
	foo := testutil.CreateDir(t, src, "foo")
	testutil.CreateDir(t, foo, ".git")

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, nil)}}

	t.Run("declining the cache update", func(t *testing.T) {
		r, repoCache, diag := newResolver(t, cfg, "", "n\n")

		got, err := r.ResolveSource("foo")
		require.NoError(t, err)
		assert.Equal(t, foo, got)

		out := diag.String()
		assert.Contains(t, out, "Could not find repository foo")
		assert.Contains(t, out, "guessed as "+foo)

		fresh := cache.New(filesystem.NewOS(), repoCache.Path())
		fresh.Diag = &bytes.Buffer{}
		assert.Equal(t, 0, fresh.Len())
	})

	t.Run("accepting the cache update", func(t *testing.T) {
		r, repoCache, _ := newResolver(t, cfg, "", "y\n")

		got, err := r.ResolveSource("foo")
		require.NoError(t, err)
		assert.Equal(t, foo, got)

		fresh := cache.New(filesystem.NewOS(), repoCache.Path())
		fresh.Diag = &bytes.Buffer{}
		dirs, err := fresh.Lookup("foo")
		require.NoError(t, err)
		assert.Equal(t, []string{foo}, dirs)
	})
}

func TestResolveSource_NamedNotFound(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, nil)}}
	r, _, _ := newResolver(t, cfg, "", "")

	_, err := r.ResolveSource("nope")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestResolveSource_CorruptCacheEntryIsFatal(t *testing.T) {
	tmp := paths.Resolve(t.TempDir())
	src := testutil.CreateDir(t, tmp, "src")
	bld := testutil.CreateDir(t, tmp, "build")

	cfg := &config.Config{Directories: []*config.DirMapping{mapping(src, []string{bld}, nil)}}
	r, _, _ := newResolver(t, cfg, `{"foo": []}`, "")

	_, err := r.ResolveSource("foo")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCacheCorrupt))
}
