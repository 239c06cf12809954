package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/jward/sassdef"
	"github.com/jward/sassdef/internal/server"
	"github.com/jward/sassdef/internal/watch"
	"github.com/jward/sassdef/internal/workspace"
)

var flagNoWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve [path]",
	Short: "Serve definition lookups as MCP tools over stdio",
	Long: `Starts an MCP server on stdin/stdout with the find_definition and hover
tools. The catalog is synced on start and kept current by a file watcher,
which also invalidates cached file contents as stylesheets change.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&flagNoWatch, "no-watch", false, "do not watch the workspace for changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}
	root := resolveRoot(targetDir)
	env, err := loadEnv(root)
	if err != nil {
		return err
	}

	dbPath := resolveDBPath(root)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
	}
	catalog, err := sassdef.OpenCatalog(dbPath)
	if err != nil {
		return err
	}
	defer catalog.Close()

	contents := env.newCache()
	defer contents.Close()

	ix := sassdef.NewIndexer(catalog, workspace.NewFSReader(root), root,
		sassdef.WithNotifier(contents),
		sassdef.WithIndexLogger(env.logger),
		sassdef.WithIndexPartialPrefix(env.cfg.PartialPrefix))

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	files, err := workspace.Discover(ctx, root, env.discoverOptions())
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if _, err := ix.Sync(ctx, files); err != nil {
		return fmt.Errorf("syncing catalog: %w", err)
	}

	if !flagNoWatch {
		w, err := watch.New(root, env.discoverOptions(), ix, env.logger)
		if err != nil {
			return err
		}
		defer w.Close()
		go func() {
			if err := w.Run(ctx); err != nil {
				env.logger.Error("watcher stopped", "error", err)
			}
		}()
		env.logger.Info("watching", "root", root, "dirs", len(w.Dirs()))
	}

	engine, err := env.newEngine(contents)
	if err != nil {
		return err
	}
	h := server.NewHandler(engine, func(context.Context) ([]sassdef.FileHandle, error) {
		return ix.Corpus()
	}, env.logger)

	fmt.Fprintf(os.Stderr, "sassdef MCP server serving %s (%d stylesheets)\n", root, len(files))
	if err := mcpserver.ServeStdio(server.New(h, version)); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
