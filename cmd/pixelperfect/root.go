package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Lihaila/pixelperfect/internal/config"
	"github.com/Lihaila/pixelperfect/internal/logger"
)

// app holds the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	logLevel   string

	cfg config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "pixelperfect",
		Short:         "pixelperfect - optimize images for size",
		Long:          "pixelperfect re-encodes images as JPEG, PNG or SVG-wrapped JPEG, optionally resizing them, and reports how many bytes were saved.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.SetHelpCommand(&cobra.Command{Hidden: true})

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warn|error")

	root.AddCommand(newOptimizeCmd(a), newInfoCmd(a), newVersionCmd())
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	a.log = logger.NewWithWriter(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	}, cmd.ErrOrStderr())
	return nil
}
