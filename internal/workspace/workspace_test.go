package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/sassdef/internal/symbol"
)

// writeTree creates files (relative path -> content) under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func relPaths(t *testing.T, root string, files []symbol.FileHandle) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f.Path)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestDiscover_WalkDefaults(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b/main.scss":                 "",
		"a/_vars.scss":                "",
		"a/legacy.sass":               "",
		"a/readme.md":                 "",
		"node_modules/lib/_lib.scss":  "",
		".cache/_hidden.scss":         "",
		"deep/nested/dir/_mixin.scss": "",
	})

	files, err := Discover(context.Background(), root, Options{NoGit: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"a/_vars.scss",
		"a/legacy.sass",
		"b/main.scss",
		"deep/nested/dir/_mixin.scss",
	}, relPaths(t, root, files))
}

func TestDiscover_CustomPatterns(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/_vars.scss":     "",
		"src/vendor/x.scss":  "",
		"docs/example.scss":  "",
		"src/theme/dark.css": "",
	})

	files, err := Discover(context.Background(), root, Options{
		Include: []string{"src/**/*.scss"},
		Exclude: []string{"**/vendor/**"},
		NoGit:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/_vars.scss"}, relPaths(t, root, files))
}

func TestDiscover_InvalidPattern(t *testing.T) {
	t.Parallel()
	_, err := Discover(context.Background(), t.TempDir(), Options{Include: []string{"[a-"}, NoGit: true})
	require.Error(t, err)
}

func TestDiscover_IsDeterministic(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"z/_a.scss": "", "a/_z.scss": "", "m/m.scss": "",
	})
	first, err := Discover(context.Background(), root, Options{NoGit: true})
	require.NoError(t, err)
	second, err := Discover(context.Background(), root, Options{NoGit: true})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMatches(t *testing.T) {
	t.Parallel()
	assert.True(t, Matches("a/_vars.scss", DefaultInclude, DefaultExclude))
	assert.True(t, Matches("top.sass", DefaultInclude, DefaultExclude))
	assert.False(t, Matches("a/b.css", DefaultInclude, DefaultExclude))
	assert.False(t, Matches("node_modules/x/_y.scss", DefaultInclude, DefaultExclude))
	assert.False(t, Matches("pkg/node_modules/x/_y.scss", DefaultInclude, DefaultExclude))
}

func TestSkipDir(t *testing.T) {
	t.Parallel()
	assert.True(t, SkipDir("node_modules"))
	assert.True(t, SkipDir(".sassdef"))
	assert.True(t, SkipDir(".cache"))
	assert.False(t, SkipDir("styles"))
	assert.False(t, SkipDir("_partials"))
}

func TestFSReader_ReadText(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a/_vars.scss": "$color: red;"})
	r := NewFSReader(root)

	text, err := r.ReadText(context.Background(), symbol.NewFile(filepath.Join(root, "a/_vars.scss")))
	require.NoError(t, err)
	assert.Equal(t, "$color: red;", text)

	text, err = r.ReadText(context.Background(), symbol.FileHandle{Path: "a/_vars.scss"})
	require.NoError(t, err)
	assert.Equal(t, "$color: red;", text)
}

func TestFSReader_RejectsPathsOutsideRoot(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	r := NewFSReader(root)
	_, err := r.ReadText(context.Background(), symbol.FileHandle{Path: "../etc/passwd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside project root")
}

func TestFSReader_MissingFile(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	r := NewFSReader(root)
	_, err := r.ReadText(context.Background(), symbol.NewFile(filepath.Join(root, "gone.scss")))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindRoot(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	deep := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	assert.Equal(t, root, FindRoot(deep))

	plain := t.TempDir()
	assert.Equal(t, plain, FindRoot(plain))
}
