package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jward/sassdef"
	"github.com/jward/sassdef/internal/cache"
	"github.com/jward/sassdef/internal/workspace"
)

var (
	flagAll   bool
	flagFirst bool
)

// policy returns the resolution policy: --all and --first override
// show_all_references from the config.
func (e *env) policy() sassdef.Policy {
	switch {
	case flagAll:
		return sassdef.AllMatches
	case flagFirst:
		return sassdef.FirstMatch
	}
	return sassdef.PolicyFor(e.cfg.ShowAllReferences)
}

// newCache returns a content cache over the workspace files.
func (e *env) newCache() *cache.Cache {
	return cache.New(workspace.NewFSReader(e.root),
		cache.WithTTL(e.cfg.CacheTTL),
		cache.WithLogger(e.logger))
}

// newEngine builds an Engine from the configuration.
func (e *env) newEngine(source sassdef.ContentSource) (*sassdef.Engine, error) {
	return sassdef.New(e.root, source,
		sassdef.WithPolicy(e.policy()),
		sassdef.WithChunkSize(e.cfg.ChunkSize),
		sassdef.WithLegacyRanking(e.cfg.LegacyRanking),
		sassdef.WithPartialPrefix(e.cfg.PartialPrefix),
		sassdef.WithLogger(e.logger))
}

// loadCorpus returns the catalogued files when a non-empty catalog exists
// and falls back to discovering the workspace otherwise.
func (e *env) loadCorpus(ctx context.Context) ([]sassdef.FileHandle, error) {
	dbPath := resolveDBPath(e.root)
	if _, err := os.Stat(dbPath); err == nil {
		files, err := e.catalogCorpus(dbPath)
		if err != nil {
			e.logger.Warn("catalog unusable, discovering files", "catalog", dbPath, "error", err)
		} else if len(files) > 0 {
			e.logger.Debug("corpus from catalog", "catalog", dbPath, "files", len(files))
			return files, nil
		}
	}
	files, err := workspace.Discover(ctx, e.root, e.discoverOptions())
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	e.logger.Debug("corpus from discovery", "files", len(files))
	return files, nil
}

func (e *env) catalogCorpus(dbPath string) ([]sassdef.FileHandle, error) {
	catalog, err := sassdef.OpenCatalog(dbPath)
	if err != nil {
		return nil, err
	}
	defer catalog.Close()
	return sassdef.NewIndexer(catalog, workspace.NewFSReader(e.root), e.root).Corpus()
}

// resolveFilePath returns the absolute path of a stylesheet argument and
// checks that it names a regular file.
func resolveFilePath(arg string) (string, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", arg, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("file not found: %s", abs)
	}
	if info.IsDir() {
		return "", fmt.Errorf("not a file: %s", abs)
	}
	return abs, nil
}

// parseIntArg parses a non-negative integer positional argument.
func parseIntArg(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", name, value)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s %d: must not be negative", name, n)
	}
	return n, nil
}

// setup resolves the origin file and loads the environment of its project.
func setup(fileArg string) (sassdef.FileHandle, *env, error) {
	path, err := resolveFilePath(fileArg)
	if err != nil {
		return sassdef.FileHandle{}, nil, err
	}
	env, err := loadEnv(resolveRoot(filepath.Dir(path)))
	if err != nil {
		return sassdef.FileHandle{}, nil, err
	}
	return sassdef.NewFile(path), env, nil
}
