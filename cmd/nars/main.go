package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"narsgo/internal/config"
	"narsgo/internal/logging"
)

// app holds what every command shares once flags are parsed.
type app struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "nars",
		Short: "narsgo - a non-axiomatic reasoning engine",
		Long: `narsgo reasons under insufficient knowledge and resources.

Judgments, questions and goals are fed from YAML task files; every belief
carries a frequency and a confidence, and inference runs for as many
working cycles as it is given.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "narsgo.yaml", "Config file (missing file means defaults)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging to stderr")

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newQueryCmd(a))
	rootCmd.AddCommand(newTraceCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	return rootCmd
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", a.configPath, err)
	}
	lc := cfg.Logging
	if a.verbose {
		lc.DebugMode = true
		lc.Level = "debug"
	}
	if err := logging.Initialize(logging.Config{
		DebugMode:  lc.DebugMode,
		Level:      lc.Level,
		Format:     lc.Format,
		OutputPath: lc.File,
		Categories: lc.Categories,
	}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	a.cfg = cfg
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
