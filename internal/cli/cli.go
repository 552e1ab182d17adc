// Package cli implements the mtrack command-line interface.
//
// This package provides commands for running the requirements-merging demo,
// inspecting tracked runs, managing the local store, serving the tracking API,
// and rendering run lineage graphs. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - demo: Exercise the requirement-merging contract end to end
//   - runs: List, show, and browse tracked runs
//   - store: Inspect or clear the local store
//   - serve: Run the tracking HTTP API
//   - viz: Render a run's lineage as DOT or SVG
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mlfoundry/modeltrack/pkg/artifacts"
	"github.com/mlfoundry/modeltrack/pkg/buildinfo"
	"github.com/mlfoundry/modeltrack/pkg/config"
	"github.com/mlfoundry/modeltrack/pkg/errors"
	"github.com/mlfoundry/modeltrack/pkg/tracking"
	"github.com/mlfoundry/modeltrack/pkg/tracking/store"
)

// appName is the application name used for directories and display.
const appName = "mtrack"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

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
		Short:        "mtrack logs model artifacts with reproducible requirement manifests",
		Long:         `mtrack is a lightweight model-tracking tool. It records training runs, stores model artifacts with pip requirement and constraint manifests, and verifies that declared dependencies merge the way installers expect.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config file (default: $MTRACK_CONFIG or ~/.config/mtrack/config.toml)")

	// Register all subcommands
	root.AddCommand(c.demoCommand())
	root.AddCommand(c.runsCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.vizCommand())

	return root
}

// loadConfig reads the configuration selected by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// newTracker builds a tracker from the configuration, wiring the selected
// metadata backend to the filesystem artifact repository.
func (c *CLI) newTracker(ctx context.Context, cfg config.Config) (*tracking.Tracker, func() error, error) {
	st, err := newStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	repo, err := artifacts.NewFSRepository(cfg.StoreRoot)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	return tracking.New(st, repo), st.Close, nil
}

func newStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendRedis:
		return store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	case config.BackendMongo:
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
	case config.BackendFile:
		return store.NewFileStore(cfg.StoreRoot)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown backend %q", cfg.Backend)
	}
}
