package sassdef

import (
	"math"
	"path/filepath"
	"sort"
	"strings"
)

// RankedFileSet splits a corpus relative to an origin file. Near holds files
// sharing the origin's top-level directory under the root, Far holds the
// rest. Together they are a permutation of the corpus.
type RankedFileSet struct {
	Near []FileHandle
	Far  []FileHandle
}

// Len returns the number of files in both partitions.
func (s RankedFileSet) Len() int {
	return len(s.Near) + len(s.Far)
}

// RankOptions tunes Partition.
type RankOptions struct {
	// Legacy orders each partition by directory level outward from the
	// origin, partials first within a level.
	Legacy bool
	// PartialPrefix marks partial files for Legacy ordering.
	PartialPrefix string
}

// TopDir returns the first path segment of path relative to root. A file
// directly under the root is its own top directory; a path outside the root
// yields "..". A relative path is taken as relative to root.
func TopDir(root, path string) string {
	rel, err := filepath.Rel(root, anchor(root, path))
	if err != nil {
		return path
	}
	rel = filepath.ToSlash(rel)
	if first, _, ok := strings.Cut(rel, "/"); ok {
		return first
	}
	return rel
}

// Partition splits corpus into near and far sets for origin. Without Legacy
// ordering each partition keeps corpus order.
func Partition(root string, origin FileHandle, corpus []FileHandle, opts RankOptions) RankedFileSet {
	top := TopDir(root, origin.Path)
	var set RankedFileSet
	for _, f := range corpus {
		if TopDir(root, f.Path) == top {
			set.Near = append(set.Near, f)
		} else {
			set.Far = append(set.Far, f)
		}
	}
	if opts.Legacy {
		levels := newLevelRanker(root, origin, opts.PartialPrefix)
		levels.sort(set.Near)
		levels.sort(set.Far)
	}
	return set
}

// anchor joins a relative path onto an absolute root so both sides of
// filepath.Rel agree.
func anchor(root, path string) string {
	if filepath.IsAbs(root) && !filepath.IsAbs(path) {
		return filepath.Join(root, path)
	}
	return filepath.Clean(path)
}

type levelRanker struct {
	root   string
	origin string
	prefix string
}

func newLevelRanker(root string, origin FileHandle, prefix string) levelRanker {
	return levelRanker{
		root:   filepath.Clean(root),
		origin: filepath.Dir(anchor(root, origin.Path)),
		prefix: prefix,
	}
}

// level is the number of directories walked up from the origin's directory
// before reaching one that contains path.
func (r levelRanker) level(path string) int {
	path = anchor(r.root, path)
	dir := r.origin
	for level := 0; ; level++ {
		if strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return level
		}
		parent := filepath.Dir(dir)
		if dir == r.root || parent == dir {
			return math.MaxInt
		}
		dir = parent
	}
}

func (r levelRanker) partial(path string) bool {
	return r.prefix != "" && strings.HasPrefix(filepath.Base(path), r.prefix)
}

func (r levelRanker) sort(files []FileHandle) {
	type ranked struct {
		level   int
		partial bool
	}
	keys := make(map[string]ranked, len(files))
	for _, f := range files {
		keys[f.Path] = ranked{level: r.level(f.Path), partial: r.partial(f.Path)}
	}
	sort.SliceStable(files, func(i, j int) bool {
		a, b := keys[files[i].Path], keys[files[j].Path]
		if a.level != b.level {
			return a.level < b.level
		}
		if a.partial != b.partial {
			return a.partial
		}
		return files[i].Path < files[j].Path
	})
}
