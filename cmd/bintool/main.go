package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/schaermu/bintool/internal/config"
	"github.com/schaermu/bintool/internal/manifest"
	"github.com/schaermu/bintool/internal/sync"
	"github.com/spf13/cobra"
)

var (
	// Set by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	manifestFile string
	logLevel     string
	logFormat    string
	dryRun       bool
	recursive    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bintool",
	Short: "Manage binary targets in a project manifest",
	Long: `bintool keeps the binary-target list of a project manifest in sync with
the source files on disk.

Use "new" to scaffold an entry-point source file and register it, and
"tidy" to reconcile the manifest against the source directory.`,
	SilenceUsage: true,
}

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Scaffold a new binary target and register it in the manifest",
	Long: `New creates a minimal entry-point source file in the source directory and
appends a matching record to the manifest's binary-target list.

The name may already carry the source-file extension; it is appended
otherwise. Existing files are never overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

var tidyCmd = &cobra.Command{
	Use:   "tidy",
	Short: "Reconcile the manifest's binary targets with the source directory",
	Long: `Tidy scans the source directory for files defining an entry point and
updates the manifest to match: missing records are added, records whose
file is gone or no longer defines an entry point are removed, and
still-valid records are left untouched.`,
	RunE: runTidy,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bintool %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&manifestFile, "manifest", "", "manifest file (default is project.yaml found upward from the working directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	// Tidy command flags
	tidyCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be done without making changes")
	tidyCmd.Flags().BoolVar(&recursive, "recursive", false, "scan the source directory recursively")

	// Add commands
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(tidyCmd)
	rootCmd.AddCommand(versionCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	engine, err := newEngine(cmd, logger, false)
	if err != nil {
		logger.Error("new failed", "error", err)
		return err
	}

	if err := engine.NewBin(args[0]); err != nil {
		logger.Error("new failed", "error", err)
		return err
	}
	return nil
}

func runTidy(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	engine, err := newEngine(cmd, logger, dryRun)
	if err != nil {
		logger.Error("tidy failed", "error", err)
		return err
	}

	if err := engine.Tidy(); err != nil {
		logger.Error("tidy failed", "error", err)
		return err
	}
	return nil
}

func setupLogger() *slog.Logger {
	// Parse log level
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Create handler based on format
	var handler slog.Handler
	if logFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:   level,
			NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
		})
	}

	return slog.New(handler)
}

func newEngine(cmd *cobra.Command, logger *slog.Logger, dryRun bool) (*sync.Engine, error) {
	// Determine manifest path
	path := manifestFile
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path, err = manifest.Find(wd)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("using manifest", "path", path)

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	// The flag overrides the manifest setting only when given.
	if cmd.Flags().Changed("recursive") {
		cfg.Tidy.Recursive = recursive
	}

	logger.Debug("settings loaded",
		"language", cfg.Language,
		"source_dir", cfg.SourceDir,
		"recursive", cfg.Tidy.Recursive)

	return sync.NewEngine(cfg, path, logger, dryRun)
}
