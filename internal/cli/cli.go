// Package cli implements the dashgrid command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dashgrid/internal/config"
	"github.com/matzehuels/dashgrid/pkg/buildinfo"
	"github.com/matzehuels/dashgrid/pkg/persist"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// defaultWidth and defaultHeight are the container size used when a
	// command needs pixels and none were given.
	defaultWidth  = 1200
	defaultHeight = 800

	// openTimeout bounds connecting to remote stores.
	openTimeout = 15 * time.Second
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

	logOut     io.Writer
	configPath string
	cfg        config.Config
	closeLog   func() error
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:   newLogger(w, level),
		logOut:   w,
		cfg:      config.Default(),
		closeLog: func() error { return nil },
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the loaded configuration.
func (c *CLI) Config() config.Config { return c.cfg }

// Close releases the log file, if one was opened.
func (c *CLI) Close() error { return c.closeLog() }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Dashgrid lays out, resizes and persists dashboard panels",
		Long: `Dashgrid compiles named panel topologies into CSS geometry, simulates and
drives divider drags, and persists the resulting proportions to a local cache
and a remote layout store.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.configure,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/dashgrid/config.toml)")

	// Register all subcommands
	root.AddCommand(c.topologyCommand())
	root.AddCommand(c.compileCommand())
	root.AddCommand(c.dragCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// configure loads the config file and applies its logging settings. A
// level set on the CLI before (e.g. by --verbose) is only ever lowered.
func (c *CLI) configure(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if lvl := cfg.Level(); lvl < c.Logger.GetLevel() {
		c.SetLogLevel(lvl)
	}
	if cfg.LogFile != "" {
		w, closer := newLogWriter(c.logOut, cfg.LogFile)
		level := c.Logger.GetLevel()
		c.Logger = newLogger(w, level)
		c.closeLog = closer
	}
	if c.Logger.GetLevel() <= log.DebugLevel {
		registerDebugHooks(c.Logger)
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Persistence
// =============================================================================

// openGateway connects the configured cache and store.
func (c *CLI) openGateway(ctx context.Context) (*persist.Gateway, error) {
	ctx, cancel := context.WithTimeout(ctx, openTimeout)
	defer cancel()

	spinner := c.startSpinner(ctx, fmt.Sprintf("Opening %s store...", c.cfg.Store.Backend))
	gw, err := c.cfg.OpenGateway(ctx, c.Logger)
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("Persistence ready", "store", c.cfg.Store.Backend, "cache", c.cfg.Cache.Backend)
	return gw, nil
}
