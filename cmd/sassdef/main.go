package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jward/sassdef"
	"github.com/jward/sassdef/internal/config"
	"github.com/jward/sassdef/internal/logging"
	"github.com/jward/sassdef/internal/workspace"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	flagDB        string
	flagFormat    string
	flagRoot      string
	flagLogLevel  string
	flagLogFormat string
	flagNoColor   bool
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

// cliLogger is replaced by loadEnv once the configuration is known.
var cliLogger = logging.Discard()

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", userMessage(err))
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "sassdef",
	Short:         "Go to definition for SCSS and Sass symbols",
	Long:          "sassdef finds where SCSS/Sass variables, mixins and functions are declared, ranking files near the referencing file first.",
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagNoColor {
			color.NoColor = true
		}
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "catalog path (default: .sassdef/catalog.db relative to the project root)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text|yaml")
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "project root (default: nearest directory containing .git)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error|off (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(definitionCmd)
	rootCmd.AddCommand(hoverCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(serveCmd)
}

var flagForce bool

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Catalog the stylesheets of a project",
	Long:  "Discovers stylesheets, records their content hashes in the SQLite catalog, and reports what was added, changed or removed since the last run.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagForce, "force", false, "delete the catalog and rebuild it from scratch")
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return outputError("index", err)
	}
	root := resolveRoot(targetDir)
	env, err := loadEnv(root)
	if err != nil {
		return outputError("index", err)
	}

	dbPath := resolveDBPath(root)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return outputError("index", fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err))
	}
	if flagForce {
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return outputError("index", fmt.Errorf("removing catalog for --force: %w", err))
		}
		fmt.Fprintf(os.Stderr, "Cleared catalog: %s\n", dbPath)
	}

	catalog, err := sassdef.OpenCatalog(dbPath)
	if err != nil {
		return outputError("index", err)
	}
	defer catalog.Close()

	ctx := commandContext(cmd)
	files, err := workspace.Discover(ctx, root, env.discoverOptions())
	if err != nil {
		return outputError("index", fmt.Errorf("discovering files: %w", err))
	}

	ix := sassdef.NewIndexer(catalog, workspace.NewFSReader(root), root,
		sassdef.WithIndexLogger(env.logger),
		sassdef.WithIndexPartialPrefix(env.cfg.PartialPrefix))
	stats, err := ix.Sync(ctx, files)
	if err != nil {
		return outputError("index", fmt.Errorf("syncing catalog: %w", err))
	}

	catalogued, err := catalog.FileCount()
	if err != nil {
		return outputError("index", err)
	}

	fmt.Fprintf(os.Stderr, "Indexed %d stylesheets under %s in %s\n",
		len(files), root, time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "Catalog: %s\n", dbPath)

	return outputResult(CLIResult{
		Command: "index",
		Results: CLIIndexStats{
			Root:      root,
			Catalog:   dbPath,
			Files:     catalogued,
			Added:     stats.Added,
			Changed:   stats.Changed,
			Deleted:   stats.Deleted,
			Unchanged: stats.Unchanged,
			Skipped:   stats.Skipped,
		},
	})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// env is the per-invocation configuration shared by the commands.
type env struct {
	root   string
	cfg    *config.Config
	logger *slog.Logger
}

// loadEnv reads the project configuration and applies the log flags.
func loadEnv(root string) (*env, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.Log.Format = flagLogFormat
	}
	logger := logging.New(os.Stderr, logging.LevelFromString(cfg.Log.Level), logging.ParseFormat(cfg.Log.Format))
	cliLogger = logger
	return &env{root: root, cfg: cfg, logger: logger}, nil
}

func (e *env) discoverOptions() workspace.Options {
	return workspace.Options{Include: e.cfg.Include, Exclude: e.cfg.Exclude}
}

// resolveTargetDir returns the absolute path of the directory to work on.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// resolveRoot returns the --root flag when set, otherwise the repository
// root containing startDir.
func resolveRoot(startDir string) string {
	if flagRoot != "" {
		if abs, err := filepath.Abs(flagRoot); err == nil {
			return abs
		}
		return flagRoot
	}
	return workspace.FindRoot(startDir)
}

// resolveDBPath returns the catalog path from the --db flag or the default.
func resolveDBPath(root string) string {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB
		}
		return filepath.Join(root, flagDB)
	}
	return filepath.Join(root, ".sassdef", "catalog.db")
}
