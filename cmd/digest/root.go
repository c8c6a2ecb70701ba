package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"caption-digest/internal/app"
	"caption-digest/internal/config"
	"caption-digest/internal/llm"
	"caption-digest/internal/logger"
)

// commandContext carries what subcommands share. newClient is swapped in tests.
type commandContext struct {
	logLevel  string
	newClient func(config.Config, *slog.Logger) (llm.Client, error)
}

func (c *commandContext) load(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg, err := app.LoadEnv()
	if err != nil {
		return config.Config{}, nil, err
	}
	level := cfg.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	return cfg, logger.NewWithWriter(level, cmd.ErrOrStderr()), nil
}

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "digest",
		Short:         "Summarize video captions into markdown notes",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newCleanCommand())

	return rootCmd
}
