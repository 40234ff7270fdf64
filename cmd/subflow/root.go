package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/subflow/internal/config"
	"github.com/nguyentantai21042004/subflow/internal/logger"
)

// commandContext carries the lazily loaded configuration to subcommands.
type commandContext struct {
	configPath string
	cfg        *config.Config
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", c.configPath, err)
	}
	c.cfg = cfg
	return cfg, nil
}

// newLogger builds the run logger, teeing into a log file when a log
// directory is configured.
func (c *commandContext) newLogger() (logger.Logger, io.Closer, error) {
	cfg := c.cfg
	if cfg.Logging.Dir != "" {
		return logger.NewWithFile(cfg.Logging.Level, cfg.Logging.Dir)
	}
	return logger.New(cfg.Logging.Level), nil, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "subflow",
		Short:         "Segment subtitle transcripts and summarize them with LLM providers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "config.yaml", "Configuration file path")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newModelsCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))

	return rootCmd
}
