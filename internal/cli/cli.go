// Package cli implements the augment command-line interface.
//
// # Commands
//
//   - apply: augment one image and its box
//   - box: trace a box through operations without any image
//   - batch: augment a directory of images described by a boxes.toml sidecar
//   - serve: run the HTTP API
//   - cache: inspect or clear the artifact cache
//   - records: list and show stored annotation records
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// routes pipeline and cache events to the log. --log-file copies the log
// into a size-rotated file.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matzehuels/augment/pkg/buildinfo"
	"github.com/matzehuels/augment/pkg/cache"
	"github.com/matzehuels/augment/pkg/observability"
	"github.com/matzehuels/augment/pkg/pipeline"
	"github.com/matzehuels/augment/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "augment"

	// Log file rotation limits.
	logFileMaxSizeMB  = 10
	logFileMaxBackups = 3
	logFileMaxAgeDays = 28
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out     io.Writer
	logFile *lumberjack.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetVerbose switches to debug logging and routes observability events
// to the logger.
func (c *CLI) SetVerbose(verbose bool) {
	if !verbose {
		c.SetLogLevel(LogInfo)
		return
	}
	c.SetLogLevel(LogDebug)
	observability.NewLogHooks(c.Logger).Register()
}

// SetLogFile copies log output into path, rotating it by size.
func (c *CLI) SetLogFile(path string) {
	c.logFile = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    logFileMaxSizeMB,
		MaxBackups: logFileMaxBackups,
		MaxAge:     logFileMaxAgeDays,
	}
	c.Logger.SetOutput(io.MultiWriter(c.out, c.logFile))
}

// Close flushes and closes the log file, if any.
func (c *CLI) Close() error {
	if c.logFile == nil {
		return nil
	}
	return c.logFile.Close()
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var logFile string

	root := &cobra.Command{
		Use:          appName,
		Short:        "augment transforms images and their bounding boxes together",
		Long:         `augment applies geometric augmentations (crop, rotate, scale, shear, translate) to images and recomputes the bounding box of the labelled object so the annotation stays valid.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logFile != "" {
				c.SetLogFile(logFile)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file (rotated at 10 MB)")

	// Register all subcommands
	root.AddCommand(c.applyCommand())
	root.AddCommand(c.boxCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.recordsCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// runnerOptions selects the local backends of a CLI runner.
type runnerOptions struct {
	noCache  bool
	noRecord bool
}

// newRunner creates a pipeline runner backed by the local file cache and
// record store.
func (c *CLI) newRunner(opts runnerOptions) (*pipeline.Runner, error) {
	cc, err := newCache(opts.noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(cc, nil, c.Logger)
	if !opts.noRecord {
		st, err := newRecordStore()
		if err != nil {
			return nil, err
		}
		runner.Store = st
	}
	return runner, nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

func newRecordStore() (*store.FileStore, error) {
	dir, err := recordsDir()
	if err != nil {
		return nil, err
	}
	return store.NewFileStore(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/augment/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// recordsDir returns where records are kept (~/.local/share/augment/records/).
func recordsDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName, "records"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName, "records"), nil
}

// getEnv returns the environment variable key, or def when it is unset.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
