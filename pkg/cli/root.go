// Package cli wires the ppqsort command line.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fluxorio/ppqsort/pkg/config"
	"github.com/fluxorio/ppqsort/pkg/core"
)

// app is the state shared by every subcommand once the root has loaded settings
type app struct {
	configPath string
	logLevel   string
	settings   config.Settings
	logger     core.Logger
	stderr     io.Writer
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "ppqsort",
		Short:         "Parallel quicksort on a recursive-producer worker pool",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a YAML or JSON settings file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error, off)")

	rootCmd.AddCommand(newSortCommand(a))
	rootCmd.AddCommand(newConfigCommand(a))

	return rootCmd
}

// load resolves settings from file, environment and flags, then builds the logger
func (a *app) load(cmd *cobra.Command) error {
	settings, err := config.LoadSettings(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		settings.Log.Level = a.logLevel
	}
	level, err := core.ParseLevel(settings.Log.Level)
	if err != nil {
		return err
	}

	a.settings = settings
	a.stderr = cmd.ErrOrStderr()
	a.logger = core.NewLogger(a.stderr, level).WithFields(map[string]interface{}{"cmd": cmd.Name()})
	return nil
}
