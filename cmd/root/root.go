// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/config"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/container"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
)

// GlobalFlags are the persistent flags shared by every command.
type GlobalFlags struct {
	ConfigFile string
	LogLevel   string
	Store      string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.GetLogger()

	// App holds the wired components once PersistentPreRunE has run.
	App *container.Container

	// SharedFlags holds the persistent flag values.
	SharedFlags = GlobalFlags{}

	initOnce sync.Once

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "wealthwise",
		Short: "A personal finance tracker for GBP and AED bank accounts.",
		Long: `wealthwise imports bank CSV exports, categorizes transactions with
learned merchant mappings and reports summaries, breakdowns and trends
over configurable date ranges.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: teardown,
	}
)

// Init initializes the root command and all flags
func Init() {
	initOnce.Do(func() {
		Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default $HOME/.wealthwise/config.yaml)")
		Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Override the configured log level")
		Cmd.PersistentFlags().StringVar(&SharedFlags.Store, "store", "", "Override the store driver (memory, sqlite, postgres)")
	})
}

func setup(cmd *cobra.Command, _ []string) error {
	if loaded := config.LoadEnv(); loaded != "" {
		Log.WithField(logging.FieldFile, loaded).Debug("Loaded environment variables")
	}

	cfg, err := config.Load(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
	}
	if SharedFlags.Store != "" {
		cfg.Store.Driver = SharedFlags.Store
	}

	ctx := Context(cmd)
	app, err := container.NewContainer(ctx, cfg)
	if err != nil {
		return err
	}
	if err := app.Load(ctx); err != nil {
		_ = app.Close()
		return fmt.Errorf("failed to load data: %w", err)
	}

	App = app
	Log = app.GetLogger()
	return nil
}

func teardown(_ *cobra.Command, _ []string) {
	if App == nil {
		return
	}
	if err := App.Close(); err != nil {
		Log.WithError(err).Warn("Failed to close store")
	}
	App = nil
}

// Context returns the command's context, or a background context when the
// command was executed without one.
func Context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
