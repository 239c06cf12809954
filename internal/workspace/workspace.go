// Package workspace discovers stylesheet files under a project root and reads
// their text.
package workspace

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/jward/sassdef/internal/symbol"
)

// Default discovery patterns, matched against slash-separated paths relative
// to the project root.
var (
	DefaultInclude = []string{"**/*.{scss,sass}"}
	DefaultExclude = []string{"**/node_modules/**", "**/.git/**"}
)

// skipDirs are never descended into by the filesystem walk.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".sassdef":     true,
}

// Options controls which files Discover returns.
type Options struct {
	Include []string
	Exclude []string
	// NoGit forces the filesystem walk even inside a git work tree.
	NoGit bool
}

func (o Options) withDefaults() Options {
	if len(o.Include) == 0 {
		o.Include = DefaultInclude
	}
	if o.Exclude == nil {
		o.Exclude = DefaultExclude
	}
	return o
}

// Discover lists the files under root that match opts, sorted by path.
// Inside a git work tree it uses git ls-files so .gitignore is respected,
// otherwise it walks the filesystem.
func Discover(ctx context.Context, root string, opts Options) ([]symbol.FileHandle, error) {
	opts = opts.withDefaults()
	for _, p := range append(append([]string{}, opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}

	var (
		rels []string
		err  error
	)
	if !opts.NoGit {
		rels, err = gitListFiles(ctx, root)
	}
	if opts.NoGit || err != nil {
		rels, err = walkListFiles(ctx, root)
		if err != nil {
			return nil, err
		}
	}

	var files []symbol.FileHandle
	for _, rel := range rels {
		slashed := filepath.ToSlash(rel)
		if !Matches(slashed, opts.Include, opts.Exclude) {
			continue
		}
		files = append(files, symbol.NewFile(filepath.Join(root, rel)))
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Matches reports whether the slash-separated relative path rel is selected
// by include and not rejected by exclude.
func Matches(rel string, include, exclude []string) bool {
	for _, p := range exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return false
		}
	}
	for _, p := range include {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// gitListFiles returns tracked and untracked-but-not-ignored files under root,
// relative to root.
func gitListFiles(ctx context.Context, root string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var rels []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rels = append(rels, filepath.FromSlash(line))
	}
	return rels, nil
}

// walkListFiles walks root, skipping hidden directories and skipDirs.
func walkListFiles(ctx context.Context, root string) ([]string, error) {
	var rels []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rels = append(rels, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return rels, nil
}

// SkipDir reports whether a directory named name is left out of discovery:
// hidden directories and dependency or tool directories.
func SkipDir(name string) bool {
	return strings.HasPrefix(name, ".") || skipDirs[name]
}

// FindRoot walks up from startDir looking for a .git directory and returns
// the directory containing it, or startDir if there is none.
func FindRoot(startDir string) string {
	dir := startDir
	for {
		if ok, _ := isDir(filepath.Join(dir, ".git")); ok {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}
