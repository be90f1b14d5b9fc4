// Package cli implements the relboard command-line interface.
//
// The main commands are:
//   - show: Run the pipeline once and print the release board
//   - watch: Live board that refreshes on an interval
//   - serve: HTTP server exposing the board as HTML and JSON
//   - cache: Manage the local release cache
//
// All commands support --verbose (-v) for debug-level logging and
// --config for an explicit config file path.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/relboard/pkg/buildinfo"
	"github.com/matzehuels/relboard/pkg/cache"
	"github.com/matzehuels/relboard/pkg/pipeline"
	"github.com/matzehuels/relboard/pkg/registry"
	"github.com/matzehuels/relboard/pkg/registry/github"
	"github.com/matzehuels/relboard/pkg/sink"
)

// appName is the application name used for directories and display.
const appName = "relboard"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag value; empty means the default
	// location with fallback to built-in defaults.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Relboard tracks the latest releases of your repositories",
		Long:         `Relboard is a release board: it fetches "latest release" metadata for a configured set of repositories, caches results locally to survive rate limits and outages, and displays normalized versions and download links.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/relboard/relboard.toml)")

	// Register all subcommands
	root.AddCommand(c.showCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config named by --config, or the default location.
func (c *CLI) loadConfig() (*pipeline.Config, error) {
	return pipeline.LoadConfig(c.configPath)
}

// =============================================================================
// Component Wiring
// =============================================================================

// components bundles the wired collaborators one command run needs.
type components struct {
	Config *pipeline.Config
	Board  *sink.Board
	Runner *pipeline.Runner

	backend cache.Cache
}

// Close releases the cache backend.
func (co *components) Close() {
	if co.backend != nil {
		_ = co.backend.Close()
	}
}

// newComponents loads the config and wires the cache backend, store,
// orchestrator, fetcher, board, and runner. With noCache the cache is
// replaced by a null backend, so every resolution goes to the network.
func (c *CLI) newComponents(ctx context.Context, noCache bool) (*components, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	backend, err := openCache(ctx, cfg, noCache)
	if err != nil {
		c.Logger.Warn("cache unavailable, running without it", "error", err)
		backend = cache.NewNullCache()
	}

	store := registry.NewStore(cache.NewScoped(backend, cfg.Cache.Prefix+":"))
	board := sink.NewBoard()
	runner := pipeline.NewRunner(
		registry.NewOrchestrator(store, cfg.Policy()),
		github.NewClient(cfg.APIBase, cfg.Timeout.Std()),
		board,
		c.Logger,
	)

	return &components{
		Config:  cfg,
		Board:   board,
		Runner:  runner,
		backend: backend,
	}, nil
}

// openCache creates the configured cache backend, defaulting the file
// backend's directory to the XDG cache dir.
func openCache(ctx context.Context, cfg *pipeline.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	settings := cfg.CacheSettings()
	if settings.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			return nil, err
		}
		settings.Dir = dir
	}
	return cache.Open(ctx, settings)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/relboard/).
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
